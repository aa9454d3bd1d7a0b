package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartstore/internal/coupon"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	ShippingMethodStandard = "standard"
	PaymentStatusCompleted = "completed"
)

// Cart is the part of the cart store checkout drives.
type Cart interface {
	Snapshot() domain.Cart
	Clear(ctx context.Context) (domain.Event, error)
	ApplyCoupon(code string, discount decimal.Decimal) domain.Event
	RemoveCoupon() domain.Event
}

type Service struct {
	cart      Cart
	submitter port.OrderSubmitter
	coupons   *coupon.Validator
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(cart Cart, submitter port.OrderSubmitter, coupons *coupon.Validator, logger *zap.Logger) (*Service, error) {
	if cart == nil {
		return nil, fmt.Errorf("cart is nil")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submitter is nil")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupons is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cart:      cart,
		submitter: submitter,
		coupons:   coupons,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// ApplyCoupon validates code against the current subtotal and hands the
// resulting discount to the cart.
func (s *Service) ApplyCoupon(code string) (domain.Event, error) {
	snapshot := s.cart.Snapshot()

	discount, err := s.coupons.Validate(code, snapshot.TotalPrice)
	if err != nil {
		return domain.Event{}, fmt.Errorf("coupons.Validate: %w", err)
	}

	return s.cart.ApplyCoupon(code, discount), nil
}

func (s *Service) RemoveCoupon() domain.Event {
	return s.cart.RemoveCoupon()
}

// PlaceOrder submits the cart as an order. The cart is cleared only after the
// submitter accepted the order; on failure it is left untouched for a retry.
func (s *Service) PlaceOrder(ctx context.Context, address domain.ShippingAddress, payment domain.OrderPayment) (domain.OrderConfirmation, error) {
	snapshot := s.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		return domain.OrderConfirmation{}, ErrEmptyCart
	}

	req := BuildOrder(snapshot, address, payment, uuid.New(), s.now().UTC())

	confirmation, err := s.submitter.SubmitOrder(ctx, req)
	if err != nil {
		s.logger.Warn("order submission failed, cart kept",
			zap.String("owner_id", snapshot.OwnerID),
			zap.Stringer("order_id", req.ID),
			zap.Error(err))
		return domain.OrderConfirmation{}, fmt.Errorf("submitter.SubmitOrder: %w", err)
	}

	if _, err := s.cart.Clear(ctx); err != nil {
		// the order exists; a stale persisted record is the lesser problem
		s.logger.Error("failed to clear cart after order",
			zap.String("owner_id", snapshot.OwnerID),
			zap.Stringer("order_id", req.ID),
			zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.String("owner_id", snapshot.OwnerID),
		zap.Stringer("order_id", req.ID),
		zap.String("order_number", confirmation.OrderNumber),
		zap.String("total", domain.NewMoney(req.TotalAmount, snapshot.Currency).String()))

	return confirmation, nil
}

// BuildOrder packages a cart snapshot into an order-creation request.
// A discount larger than the cart total is capped so the order total never goes negative.
func BuildOrder(cart domain.Cart, address domain.ShippingAddress, payment domain.OrderPayment, id uuid.UUID, now time.Time) domain.OrderRequest {
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, domain.OrderItem{
			Product:  item.ProductID,
			Quantity: item.Quantity,
			Price:    item.Price,
			Size:     item.Size,
			Color:    item.Color,
		})
	}

	if payment.Status == "" {
		payment.Status = PaymentStatusCompleted
	}

	total, discount := cart.FinalTotal(), cart.Discount
	if total.IsNegative() {
		discount = discount.Add(total)
		total = decimal.Zero
	}

	return domain.OrderRequest{
		ID:          id,
		OwnerID:     cart.OwnerID,
		Items:       items,
		Subtotal:    cart.TotalPrice,
		Tax:         cart.Tax,
		Discount:    discount,
		CouponCode:  cart.CouponCode,
		TotalAmount: total,
		Currency:    cart.Currency.String(),
		Shipping: domain.OrderShipping{
			Address: address,
			Method:  ShippingMethodStandard,
			Cost:    cart.ShippingCost,
		},
		Payment:   payment,
		CreatedAt: now,
	}
}
