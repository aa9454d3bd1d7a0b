package port

import (
	"context"
	"errors"

	"github.com/nikolayk812/cartstore/internal/domain"
)

// ErrMalformedRecord is returned by CartStorage.Load when the stored record cannot be decoded.
var ErrMalformedRecord = errors.New("malformed cart record")

// CartStorage persists the line items of one cart. Totals and coupon state are never stored.
type CartStorage interface {
	// Load returns nil items and no error when nothing was stored yet.
	Load(ctx context.Context) ([]domain.CartLineItem, error)
	Save(ctx context.Context, items []domain.CartLineItem) error
	Delete(ctx context.Context) error
}

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderConfirmation, error)
}
