package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country,omitempty"`
}

type OrderItem struct {
	Product  string          `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
}

type OrderShipping struct {
	Address ShippingAddress `json:"address"`
	Method  string          `json:"method"`
	Cost    decimal.Decimal `json:"cost"`
}

type OrderPayment struct {
	Method string `json:"method"`
	Status string `json:"status"`
}

// OrderRequest is the order-creation payload built from a cart at checkout.
type OrderRequest struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     string          `json:"userId,omitempty"`
	Items       []OrderItem     `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	CouponCode  string          `json:"couponCode,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Shipping    OrderShipping   `json:"shipping"`
	Payment     OrderPayment    `json:"payment"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderConfirmation struct {
	OrderID     string `json:"_id"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
}
