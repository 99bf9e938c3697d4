package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind represents the severity class of a user-facing message.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

func (k Kind) String() string { return string(k) }

func (k Kind) IsValid() bool {
	switch k {
	case KindInfo, KindSuccess, KindWarning, KindError:
		return true
	}
	return false
}

func ParseKindFromString(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: invalid kind %q", ErrValidation, s)
	}
	return k, nil
}

// Maximum lengths for user-facing message fields (in characters).
const (
	MaxTitleLength   = 120
	MaxMessageLength = 500
)

// Notification is a durable user-facing message. Once created, only the
// Read flag may change.
type Notification struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Read      bool          `json:"read"`
	Link      string        `json:"link,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (n *Notification) Validate() error {
	if n == nil {
		return fmt.Errorf("%w: notification is required", ErrValidation)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !n.Kind.IsValid() {
		return fmt.Errorf("%w: invalid kind %q", ErrValidation, n.Kind)
	}
	if titleLen := len([]rune(n.Title)); titleLen > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters (got %d)", ErrValidation, MaxTitleLength, titleLen)
	}
	if msgLen := len([]rune(n.Message)); msgLen > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters (got %d)", ErrValidation, MaxMessageLength, msgLen)
	}
	return nil
}
