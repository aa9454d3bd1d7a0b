package domain

import (
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// LineKey identifies a line item: one product in one size and color.
type LineKey struct {
	ProductID string
	Size      string
	Color     string
}

// NewLineItem is what a product page hands to the cart: a line item without a quantity.
type NewLineItem struct {
	ProductID   string
	Name        string
	Image       string
	Price       decimal.Decimal
	Size        string
	Color       string
	MaxQuantity int
}

func (n NewLineItem) Key() LineKey {
	return LineKey{ProductID: n.ProductID, Size: n.Size, Color: n.Color}
}

type CartLineItem struct {
	ProductID string
	Name      string
	Image     string
	// Price is the unit price at the time the item was added.
	Price       decimal.Decimal
	Size        string
	Color       string
	Quantity    int
	MaxQuantity int
}

func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	OwnerID  string
	Items    []CartLineItem
	Currency currency.Unit

	Totals

	Discount   decimal.Decimal
	CouponCode string
}

// FinalTotal is subtotal plus shipping and tax, minus the coupon discount.
// It is derived on every call and never stored.
func (c Cart) FinalTotal() decimal.Decimal {
	return c.TotalPrice.Add(c.ShippingCost).Add(c.Tax).Sub(c.Discount)
}

func (c Cart) HasCoupon() bool {
	return c.CouponCode != ""
}

func (c Cart) IndexOf(key LineKey) int {
	return slices.IndexFunc(c.Items, func(i CartLineItem) bool {
		return i.Key() == key
	})
}

func (c Cart) Clone() Cart {
	out := c
	out.Items = slices.Clone(c.Items)
	return out
}
