// Package fraction splits prices and ownership among co-owners using exact
// rational arithmetic.
//
// All fractions and amounts are *big.Rat values. Nothing is rounded until a
// value is formatted for a label (see FormatAmount), so the parts of a split
// always add back up to the whole.
package fraction

import (
	"fmt"
	"math/big"
	"strings"
)

// Share is a named holder's fraction of the whole.
type Share[T any] struct {
	Holder   T
	Fraction *big.Rat
}

// Part is one holder's slice of a split. Amount is nil when no total was given.
type Part[T any] struct {
	Holder   T
	Fraction *big.Rat
	Amount   *big.Rat
}

// Result holds the explicit parts of a split plus the residual that belongs
// to the default holder (the dealer).
type Result[T any] struct {
	Parts          []Part[T]
	Residual       *big.Rat
	ResidualAmount *big.Rat
	Total          *big.Rat
}

// HasAmounts reports whether the split was computed against a known total.
func (r *Result[T]) HasAmounts() bool {
	return r.Total != nil
}

// Split divides total among shares. The residual is 1 minus the sum of all
// shares. When total is nil only the fractions are computed.
func Split[T any](total *big.Rat, shares []Share[T]) (*Result[T], error) {
	one := big.NewRat(1, 1)
	sum := new(big.Rat)
	res := &Result[T]{Parts: make([]Part[T], 0, len(shares))}
	if total != nil {
		res.Total = new(big.Rat).Set(total)
	}

	for _, s := range shares {
		if s.Fraction == nil || s.Fraction.Sign() <= 0 {
			return nil, &InvalidShareError{
				Holder: fmt.Sprint(s.Holder),
				Share:  s.Fraction,
				Sum:    new(big.Rat).Set(sum),
				Reason: "share must be positive",
			}
		}
		sum.Add(sum, s.Fraction)
		if sum.Cmp(one) > 0 {
			return nil, &InvalidShareError{
				Holder: fmt.Sprint(s.Holder),
				Share:  s.Fraction,
				Sum:    new(big.Rat).Set(sum),
				Reason: "shares exceed the whole",
			}
		}

		p := Part[T]{Holder: s.Holder, Fraction: new(big.Rat).Set(s.Fraction)}
		if total != nil {
			p.Amount = new(big.Rat).Mul(s.Fraction, total)
		}
		res.Parts = append(res.Parts, p)
	}

	res.Residual = new(big.Rat).Sub(one, sum)
	if total != nil {
		res.ResidualAmount = new(big.Rat).Mul(res.Residual, total)
	}
	return res, nil
}

// ParseShare parses a share written as a fraction ("1/4"), a decimal ("0.25")
// or a percentage ("25%").
func ParseShare(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty share")
	}
	percent := strings.HasSuffix(s, "%")
	if percent {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid share %q", s)
	}
	if percent {
		r.Quo(r, big.NewRat(100, 1))
	}
	return r, nil
}

// Percent returns frac × 100 as an exact rational.
func Percent(frac *big.Rat) *big.Rat {
	return new(big.Rat).Mul(frac, big.NewRat(100, 1))
}

// IsIntegral reports whether r has no fractional part.
func IsIntegral(r *big.Rat) bool {
	return r != nil && r.IsInt()
}

// String renders a fraction the way labels expect it: "1/4", or "1" for a whole.
func String(r *big.Rat) string {
	if r == nil {
		return ""
	}
	if r.IsInt() {
		return r.Num().String()
	}
	return r.String()
}
