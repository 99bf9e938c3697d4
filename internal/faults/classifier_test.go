package faults

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		wantCategory domain.FaultCategory
		wantSeverity domain.Severity
		wantInstall  bool
		wantRetry    bool
	}{
		{
			name:         "user denied",
			err:          errors.New("MetaMask Tx Signature: User denied transaction signature."),
			wantCategory: domain.FaultConnection,
			wantSeverity: domain.SeverityInfo,
		},
		{
			name:         "rejected request",
			err:          errors.New("request rejected by user"),
			wantCategory: domain.FaultConnection,
			wantSeverity: domain.SeverityInfo,
		},
		{
			name:         "already processing",
			err:          errors.New("Already processing eth_requestAccounts. Please wait."),
			wantCategory: domain.FaultConnection,
			wantSeverity: domain.SeverityWarning,
		},
		{
			name:         "extension not detected",
			err:          errors.New("provider not detected"),
			wantCategory: domain.FaultConnection,
			wantSeverity: domain.SeverityWarning,
			wantInstall:  true,
		},
		{
			name:         "wrong chain",
			err:          errors.New("unrecognized chain ID 0x89"),
			wantCategory: domain.FaultNetworkSwitch,
			wantSeverity: domain.SeverityError,
			wantRetry:    true,
		},
		{
			name:         "explicit timeout",
			err:          errors.New("request timeout after 30s"),
			wantCategory: domain.FaultConnection,
			wantSeverity: domain.SeverityError,
			wantRetry:    true,
		},
		{
			name:         "context deadline",
			err:          fmt.Errorf("connect: %w", context.DeadlineExceeded),
			wantCategory: domain.FaultConnection,
			wantSeverity: domain.SeverityError,
			wantRetry:    true,
		},
		{
			name:         "anything else",
			err:          errors.New("execution reverted"),
			wantCategory: domain.FaultConnection,
			wantSeverity: domain.SeverityError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tt.err)
			if got.Category != tt.wantCategory {
				t.Fatalf("category = %s, want %s", got.Category, tt.wantCategory)
			}
			if got.Severity != tt.wantSeverity {
				t.Fatalf("severity = %s, want %s", got.Severity, tt.wantSeverity)
			}
			if got.InstallRequired != tt.wantInstall {
				t.Fatalf("installRequired = %v, want %v", got.InstallRequired, tt.wantInstall)
			}
			if got.Retryable != tt.wantRetry {
				t.Fatalf("retryable = %v, want %v", got.Retryable, tt.wantRetry)
			}
			if got.Message == "" {
				t.Fatal("message must not be empty")
			}
		})
	}
}

func TestClassifyTruncatesLongMessages(t *testing.T) {
	t.Parallel()

	raw := strings.Repeat("x", 4000)
	got := Classify(errors.New(raw))

	if length := len([]rune(got.Message)); length != maxClassifiedMessage {
		t.Fatalf("message length = %d, want %d", length, maxClassifiedMessage)
	}
}

func TestClassifyNilError(t *testing.T) {
	t.Parallel()

	got := Classify(nil)
	if got.Category != domain.FaultUnknown {
		t.Fatalf("category = %s, want %s", got.Category, domain.FaultUnknown)
	}
}
