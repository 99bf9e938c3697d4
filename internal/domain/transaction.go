package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// TxStatus represents the lifecycle state of a tracked transaction.
type TxStatus string

const (
	TxStatusPending   TxStatus = "PENDING"
	TxStatusSuccess   TxStatus = "SUCCESS"
	TxStatusError     TxStatus = "ERROR"
	TxStatusCancelled TxStatus = "CANCELLED"
)

func (s TxStatus) String() string { return string(s) }

func (s TxStatus) IsValid() bool {
	switch s {
	case TxStatusPending, TxStatusSuccess, TxStatusError, TxStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transitions are allowed.
func (s TxStatus) IsTerminal() bool {
	return s == TxStatusSuccess || s == TxStatusError || s == TxStatusCancelled
}

func ParseTxStatusFromString(s string) (TxStatus, error) {
	st := TxStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid transaction status %q", ErrValidation, s)
	}
	return st, nil
}

// TxReceipt is the confirmation summary kept on a tracked transaction once
// the chain reports one.
type TxReceipt struct {
	Status            uint64   `json:"status"`
	BlockNumber       *big.Int `json:"blockNumber,omitempty"`
	GasUsed           uint64   `json:"gasUsed"`
	EffectiveGasPrice *big.Int `json:"effectiveGasPrice,omitempty"`
}

// TrackedTransaction records a submitted on-chain call. The only legal
// transitions are PENDING -> SUCCESS and PENDING -> ERROR; CANCELLED is
// terminal and reachable only before a receipt is observed.
type TrackedTransaction struct {
	Hash        string     `json:"hash"`
	Description string     `json:"description"`
	Status      TxStatus   `json:"status"`
	GasEstimate *big.Int   `json:"gasEstimate,omitempty"`
	Receipt     *TxReceipt `json:"receipt,omitempty"`
	Error       string     `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submittedAt"`
}

func (t *TrackedTransaction) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: transaction is required", ErrValidation)
	}
	if strings.TrimSpace(t.Hash) == "" {
		return fmt.Errorf("%w: transaction hash is required", ErrValidation)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: invalid transaction status %q", ErrValidation, t.Status)
	}
	return nil
}
