package domain

import (
	"fmt"
	"strings"
)

// ConnState represents the wallet connection lifecycle.
type ConnState string

const (
	ConnStateDisconnected  ConnState = "DISCONNECTED"
	ConnStateConnecting    ConnState = "CONNECTING"
	ConnStateConnected     ConnState = "CONNECTED"
	ConnStateDisconnecting ConnState = "DISCONNECTING"
)

func (s ConnState) String() string { return string(s) }

func (s ConnState) IsValid() bool {
	switch s {
	case ConnStateDisconnected, ConnStateConnecting, ConnStateConnected, ConnStateDisconnecting:
		return true
	}
	return false
}

// WalletSession mirrors the connection state owned by the wallet provider.
// The gateway reacts to this state; it never originates the canonical truth.
//
// Invariant: Address is non-empty if and only if Connected is true.
type WalletSession struct {
	Address     string    `json:"address,omitempty"`
	Connected   bool      `json:"connected"`
	Connecting  bool      `json:"connecting"`
	ChainID     uint64    `json:"chainId,omitempty"`
	LastWallet  string    `json:"lastWallet,omitempty"`
	Remember    bool      `json:"remember"`
	LastError   string    `json:"lastError,omitempty"`
	State       ConnState `json:"state"`
	ModalOpen   bool      `json:"modalOpen"`
	ModalError  string    `json:"modalError,omitempty"`
	SelectedID  string    `json:"selectedConnector,omitempty"`
}

func (s *WalletSession) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: session is required", ErrValidation)
	}
	if !s.State.IsValid() {
		return fmt.Errorf("%w: invalid connection state %q", ErrValidation, s.State)
	}
	if s.Connected && strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("%w: connected session requires an address", ErrValidation)
	}
	if !s.Connected && s.Address != "" {
		return fmt.Errorf("%w: disconnected session must not carry an address", ErrValidation)
	}
	return nil
}
