package domain

import "time"

// DefaultToastDuration applies when a toast is shown without an explicit
// display duration.
const DefaultToastDuration = 5 * time.Second

// ToastAction is an optional affordance attached to a toast, e.g. a retry
// or a block-explorer link.
type ToastAction struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
	// Invoke runs when the user activates the action. Nil for pure links.
	Invoke func() `json:"-"`
}

// Toast is an ephemeral user-facing message. Toasts are never persisted;
// they are garbage-collected once dismissed.
type Toast struct {
	ID        string        `json:"id"`
	EventKey  string        `json:"eventKey"`
	Kind      Kind          `json:"kind"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	Action    *ToastAction  `json:"action,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}
