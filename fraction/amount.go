package fraction

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a transcribed price. Editorial brackets ("[1500]") are
// removed first, as are thousands separators.
func ParseAmount(s string) (*big.Rat, error) {
	s = strings.NewReplacer("[", "", "]", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d.Rat(), nil
}

// FormatAmount renders an amount for presentation, rounded half-up to two
// decimal places. Whole amounts carry no decimals.
func FormatAmount(r *big.Rat) string {
	if r == nil {
		return ""
	}
	if r.IsInt() {
		return r.Num().String()
	}
	num := decimal.NewFromBigInt(r.Num(), 0)
	den := decimal.NewFromBigInt(r.Denom(), 0)
	return num.DivRound(den, 2).StringFixed(2)
}

// ShareLabel renders an amount that came out of a split. A non-integral
// result keeps the exact fraction alongside the rounded value, e.g.
// "333.33 (1/3 of 1000)".
func ShareLabel(amount, frac, total *big.Rat) string {
	s := FormatAmount(amount)
	if IsIntegral(amount) {
		return s
	}
	return fmt.Sprintf("%s (%s of %s)", s, String(frac), FormatAmount(total))
}
