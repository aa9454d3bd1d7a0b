package domain

import "github.com/shopspring/decimal"

type PricingPolicy struct {
	// Shipping is free only when the subtotal is strictly greater than this.
	FreeShippingOver decimal.Decimal
	FlatShipping     decimal.Decimal
	TaxRate          decimal.Decimal
}

func DefaultPricing() PricingPolicy {
	return PricingPolicy{
		FreeShippingOver: decimal.NewFromInt(100),
		FlatShipping:     decimal.RequireFromString("9.99"),
		TaxRate:          decimal.RequireFromString("0.08"),
	}
}

type Totals struct {
	TotalItems   int
	TotalPrice   decimal.Decimal
	ShippingCost decimal.Decimal
	Tax          decimal.Decimal
}

// RecomputeTotals derives every total from the line items alone.
// Shipping is free only above FreeShippingOver, an empty cart included.
func RecomputeTotals(items []CartLineItem, policy PricingPolicy) Totals {
	var t Totals
	for _, item := range items {
		t.TotalItems += item.Quantity
		t.TotalPrice = t.TotalPrice.Add(item.LineTotal())
	}

	t.ShippingCost = policy.FlatShipping
	if t.TotalPrice.GreaterThan(policy.FreeShippingOver) {
		t.ShippingCost = decimal.Zero
	}

	t.Tax = t.TotalPrice.Mul(policy.TaxRate)

	return t
}
