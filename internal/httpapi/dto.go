package httpapi

import (
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/shopspring/decimal"
)

type addItemRequest struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	MaxQuantity int             `json:"maxQuantity"`
}

type updateQuantityRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type couponRequest struct {
	Code string `json:"code"`
}

type checkoutRequest struct {
	Shipping domain.ShippingAddress `json:"shipping"`
	Payment  domain.OrderPayment    `json:"payment"`
}

type itemView struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"maxQuantity"`
}

type cartView struct {
	Items        []itemView      `json:"items"`
	TotalItems   int             `json:"totalItems"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Tax          decimal.Decimal `json:"tax"`
	Discount     decimal.Decimal `json:"discount"`
	CouponCode   *string         `json:"couponCode"`
	FinalTotal   decimal.Decimal `json:"finalTotal"`
	Currency     string          `json:"currency"`
}

type eventView struct {
	Outcome string `json:"outcome"`
	Kind    string `json:"kind"`
}

type cartResponse struct {
	Event *eventView `json:"event,omitempty"`
	Cart  cartView   `json:"cart"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func toCartView(c domain.Cart) cartView {
	items := make([]itemView, 0, len(c.Items))
	for _, i := range c.Items {
		items = append(items, itemView{
			ProductID:   i.ProductID,
			Name:        i.Name,
			Price:       i.Price,
			Image:       i.Image,
			Size:        i.Size,
			Color:       i.Color,
			Quantity:    i.Quantity,
			MaxQuantity: i.MaxQuantity,
		})
	}

	var coupon *string
	if c.HasCoupon() {
		code := c.CouponCode
		coupon = &code
	}

	return cartView{
		Items:        items,
		TotalItems:   c.TotalItems,
		TotalPrice:   c.TotalPrice,
		ShippingCost: c.ShippingCost,
		Tax:          c.Tax,
		Discount:     c.Discount,
		CouponCode:   coupon,
		FinalTotal:   c.FinalTotal(),
		Currency:     c.Currency.String(),
	}
}

func toCartResponse(ev domain.Event) cartResponse {
	return cartResponse{
		Event: &eventView{Outcome: ev.Outcome.String(), Kind: string(ev.Kind)},
		Cart:  toCartView(ev.Cart),
	}
}
