package faults

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

// maxClassifiedMessage bounds how much of a raw provider error is allowed
// to reach the UI.
const maxClassifiedMessage = 150

// Classified is the normalized view of a raw wallet/provider/contract error.
type Classified struct {
	Message  string
	Category domain.FaultCategory
	Severity domain.Severity
	// InstallRequired is set when the failure means the wallet software is
	// absent and the user should be redirected to an install page.
	InstallRequired bool
	// Retryable is set for failures where a retry affordance makes sense.
	Retryable bool
}

// Classify maps an arbitrary failure from a wallet, provider, or contract
// call to a user-facing taxonomy. It is a pure mapping; logging is layered
// on top by callers.
func Classify(err error) Classified {
	if err == nil {
		return Classified{
			Message:  "unknown error",
			Category: domain.FaultUnknown,
			Severity: domain.SeverityError,
		}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "rejected"), strings.Contains(msg, "user denied"):
		// Expected user behaviour, not a technical failure.
		return Classified{
			Message:  "Request was cancelled in the wallet.",
			Category: domain.FaultConnection,
			Severity: domain.SeverityInfo,
		}
	case strings.Contains(msg, "already processing"):
		return Classified{
			Message:  "The wallet is already handling a request. Check the wallet window.",
			Category: domain.FaultConnection,
			Severity: domain.SeverityWarning,
		}
	case strings.Contains(msg, "not installed"), strings.Contains(msg, "not detected"):
		return Classified{
			Message:         "Wallet extension not found.",
			Category:        domain.FaultConnection,
			Severity:        domain.SeverityWarning,
			InstallRequired: true,
		}
	case strings.Contains(msg, "network"), strings.Contains(msg, "chain"):
		return Classified{
			Message:   truncate(err.Error()),
			Category:  domain.FaultNetworkSwitch,
			Severity:  domain.SeverityError,
			Retryable: true,
		}
	case strings.Contains(msg, "timeout"), isTimeout(err):
		return Classified{
			Message:   "The wallet did not respond in time.",
			Category:  domain.FaultConnection,
			Severity:  domain.SeverityError,
			Retryable: true,
		}
	}

	return Classified{
		Message:  truncate(err.Error()),
		Category: domain.FaultConnection,
		Severity: domain.SeverityError,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxClassifiedMessage {
		return s
	}
	return string(runes[:maxClassifiedMessage])
}
