// Package coupon decides whether a code is valid and what discount it grants.
// The cart store trusts whatever amount it is handed, so validation lives here.
package coupon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCode     = errors.New("coupon code is empty")
	ErrUnknownCoupon = errors.New("coupon not found")
)

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

type Rule struct {
	Code string
	Kind Kind
	// Value is a percent for KindPercentage and a currency amount for KindFixed.
	Value decimal.Decimal
}

// Discount returns the amount the rule takes off subtotal. A fixed discount
// never exceeds the subtotal.
func (r Rule) Discount(subtotal decimal.Decimal) decimal.Decimal {
	switch r.Kind {
	case KindPercentage:
		return subtotal.Mul(r.Value).Div(decimal.NewFromInt(100))
	case KindFixed:
		return decimal.Min(r.Value, subtotal)
	default:
		return decimal.Zero
	}
}

type Validator struct {
	rules map[string]Rule
}

func DefaultRules() []Rule {
	return []Rule{
		{Code: "SAVE10", Kind: KindPercentage, Value: decimal.NewFromInt(10)},
	}
}

func NewValidator(rules ...Rule) (*Validator, error) {
	v := &Validator{rules: make(map[string]Rule, len(rules))}

	for _, r := range rules {
		code := strings.TrimSpace(r.Code)
		if code == "" {
			return nil, ErrEmptyCode
		}
		if r.Kind != KindPercentage && r.Kind != KindFixed {
			return nil, fmt.Errorf("coupon[%s]: unknown kind[%s]", code, r.Kind)
		}
		if r.Value.IsNegative() {
			return nil, fmt.Errorf("coupon[%s]: value is negative", code)
		}
		if _, ok := v.rules[code]; ok {
			return nil, fmt.Errorf("coupon[%s]: duplicate code", code)
		}

		r.Code = code
		v.rules[code] = r
	}

	return v, nil
}

// Validate returns the discount code grants on subtotal. Codes are case sensitive.
func (v *Validator) Validate(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, ErrEmptyCode
	}

	rule, ok := v.rules[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("coupon[%s]: %w", code, ErrUnknownCoupon)
	}

	return rule.Discount(subtotal), nil
}
