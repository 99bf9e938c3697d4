package domain

import (
	"fmt"
	"strings"
	"time"
)

// FaultCategory groups failures by the interaction that produced them.
type FaultCategory string

const (
	FaultConnection    FaultCategory = "CONNECTION"
	FaultNetworkSwitch FaultCategory = "NETWORK_SWITCH"
	FaultTransaction   FaultCategory = "TRANSACTION"
	FaultContract      FaultCategory = "CONTRACT_INTERACTION"
	FaultSignature     FaultCategory = "SIGNATURE"
	FaultUnknown       FaultCategory = "UNKNOWN"
)

func (c FaultCategory) String() string { return string(c) }

func (c FaultCategory) IsValid() bool {
	switch c {
	case FaultConnection, FaultNetworkSwitch, FaultTransaction, FaultContract, FaultSignature, FaultUnknown:
		return true
	}
	return false
}

func ParseFaultCategoryFromString(s string) (FaultCategory, error) {
	c := FaultCategory(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: invalid fault category %q", ErrValidation, s)
	}
	return c, nil
}

// Severity ranks how alarming a fault is for the user.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) String() string { return string(s) }

func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

func ParseSeverityFromString(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.IsValid() {
		return "", fmt.Errorf("%w: invalid severity %q", ErrValidation, s)
	}
	return sev, nil
}

// Fault is a structured diagnostic record. Faults live in a bounded
// in-memory ring and are never persisted across restarts.
type Fault struct {
	ID        string            `json:"id"`
	Category  FaultCategory     `json:"category"`
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	Cause     string            `json:"cause,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	Address   string            `json:"address,omitempty"`
	ChainID   uint64            `json:"chainId,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
