package contract

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

func TestToBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "whole number", input: "500", want: "500000000000000000000"},
		{name: "fractional", input: "1.25", want: "1250000000000000000"},
		{name: "leading dot", input: ".5", want: "500000000000000000"},
		{name: "full precision", input: "0.000000000000000001", want: "1"},
		{name: "whitespace", input: " 42 ", want: "42000000000000000000"},
		{name: "empty", input: "", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero with decimals", input: "0.000", wantErr: true},
		{name: "bare dot", input: ".", wantErr: true},
		{name: "trailing dot", input: "5.", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "too many decimals", input: "0.0000000000000000001", wantErr: true},
		{name: "letters", input: "12a", wantErr: true},
		{name: "double dot", input: "1.2.3", wantErr: true},
		{name: "hex", input: "0x10", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToBase(tt.input)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("ToBase(%q) error = %v, want ErrValidation", tt.input, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ToBase(%q) unexpected error = %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Fatalf("ToBase(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "whole number", input: "500000000000000000000", want: "500"},
		{name: "fractional", input: "1250000000000000000", want: "1.25"},
		{name: "smallest unit", input: "1", want: "0.000000000000000001"},
		{name: "zero", input: "0", want: "0"},
		{name: "trailing zeros trimmed", input: "1500000000000000000000", want: "1500"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			value, ok := new(big.Int).SetString(tt.input, 10)
			if !ok {
				t.Fatalf("bad fixture %q", tt.input)
			}
			if got := FromBase(value); got != tt.want {
				t.Fatalf("FromBase(%s) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}

	if got := FromBase(nil); got != "0" {
		t.Fatalf("FromBase(nil) = %s, want 0", got)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"500", "1.25", "0.000000000000000001", "987654321.123456789"} {
		base, err := ToBase(input)
		if err != nil {
			t.Fatalf("ToBase(%q) error = %v", input, err)
		}
		if got := FromBase(base); got != input {
			t.Fatalf("round trip %q = %q", input, got)
		}
	}
}
