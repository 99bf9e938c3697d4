package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/stakemesh/wallet-gateway/internal/domain"
)

// Decimals is the fixed-point scale used by the staking contract: every
// on-chain amount is an integer scaled by 10^18.
const Decimals = 18

var scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// ToBase converts a decimal user input ("500", "1.25") to the scaled
// integer form the contract expects. Malformed, zero, or negative input
// is rejected.
func ToBase(decimal string) (*big.Int, error) {
	trimmed := strings.TrimSpace(decimal)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: amount is required", domain.ErrValidation)
	}
	if strings.HasPrefix(trimmed, "-") {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	whole := trimmed
	frac := ""
	if idx := strings.IndexByte(trimmed, '.'); idx >= 0 {
		whole, frac = trimmed[:idx], trimmed[idx+1:]
		if frac == "" {
			return nil, fmt.Errorf("%w: malformed amount %q", domain.ErrValidation, decimal)
		}
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > Decimals {
		return nil, fmt.Errorf("%w: amount has more than %d decimal places", domain.ErrValidation, Decimals)
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("%w: malformed amount %q", domain.ErrValidation, decimal)
	}

	value, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("%w: malformed amount %q", domain.ErrValidation, decimal)
	}
	value.Mul(value, scale)

	if frac != "" {
		fracValue, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, fmt.Errorf("%w: malformed amount %q", domain.ErrValidation, decimal)
		}
		fracScale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(Decimals-len(frac))), nil)
		value.Add(value, fracValue.Mul(fracValue, fracScale))
	}

	if value.Sign() == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	return value, nil
}

// FromBase converts a scaled contract value to its decimal display form,
// trimming trailing zeros from the fractional part.
func FromBase(value *big.Int) string {
	if value == nil {
		return "0"
	}

	neg := value.Sign() < 0
	abs := new(big.Int).Abs(value)

	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(abs, scale, frac)

	out := whole.String()
	if frac.Sign() != 0 {
		digits := fmt.Sprintf("%0*s", Decimals, frac.String())
		digits = strings.TrimRight(digits, "0")
		out += "." + digits
	}
	if neg {
		out = "-" + out
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
