package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

// Store is the cart state container. Every mutation recomputes totals,
// persists the item list and notifies subscribers, in that order.
type Store struct {
	mu      sync.Mutex
	cart    domain.Cart
	storage port.CartStorage
	policy  domain.PricingPolicy
	logger  *zap.Logger

	subsMu  sync.Mutex
	subs    map[int]func(domain.Event)
	nextSub int
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithPricing(policy domain.PricingPolicy) Option {
	return func(s *Store) {
		s.policy = policy
	}
}

func WithCurrency(unit currency.Unit) Option {
	return func(s *Store) {
		s.cart.Currency = unit
	}
}

func WithOwner(ownerID string) Option {
	return func(s *Store) {
		s.cart.OwnerID = ownerID
	}
}

// New rehydrates a store from storage. A missing or malformed record yields an empty cart;
// any other storage failure is returned.
func New(ctx context.Context, storage port.CartStorage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is nil")
	}

	s := &Store{
		cart:    domain.Cart{Currency: currency.USD},
		storage: storage,
		policy:  domain.DefaultPricing(),
		logger:  zap.NewNop(),
		subs:    make(map[int]func(domain.Event)),
	}
	for _, opt := range opts {
		opt(s)
	}

	items, err := storage.Load(ctx)
	switch {
	case errors.Is(err, port.ErrMalformedRecord):
		s.logger.Warn("discarding malformed cart record", zap.String("owner_id", s.cart.OwnerID), zap.Error(err))
		items = nil
	case err != nil:
		return nil, fmt.Errorf("storage.Load: %w", err)
	}

	s.cart.Items = normalizeItems(items)
	s.recompute()

	s.logger.Debug("cart loaded",
		zap.String("owner_id", s.cart.OwnerID),
		zap.Int("items", len(s.cart.Items)),
		zap.Int("total_items", s.cart.TotalItems))

	return s, nil
}

// Snapshot returns a copy of the current cart safe to hold onto.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

// Subscribe registers fn to receive every event. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(domain.Event)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// AddItem adds one unit of the item. A new key becomes a line with quantity 1,
// a present key is incremented unless it already sits at its max quantity.
func (s *Store) AddItem(ctx context.Context, item domain.NewLineItem) (domain.Event, error) {
	return s.mutate(ctx, func(c *domain.Cart) domain.Event {
		key := item.Key()

		idx := c.IndexOf(key)
		if idx < 0 {
			c.Items = append(c.Items, domain.CartLineItem{
				ProductID:   item.ProductID,
				Name:        item.Name,
				Image:       item.Image,
				Price:       item.Price,
				Size:        item.Size,
				Color:       item.Color,
				Quantity:    1,
				MaxQuantity: max(item.MaxQuantity, 1),
			})
			return domain.Event{Outcome: domain.OutcomeApplied, Kind: domain.EventItemAdded, Key: key}
		}

		existing := &c.Items[idx]
		if existing.Quantity >= existing.MaxQuantity {
			return domain.Event{Outcome: domain.OutcomeRejectedCapped, Kind: domain.EventMaxQuantityReached, Key: key}
		}

		existing.Quantity++
		return domain.Event{Outcome: domain.OutcomeApplied, Kind: domain.EventQuantityUpdated, Key: key}
	})
}

// RemoveItem drops the line with the given key. Removing an absent key is a no-op.
func (s *Store) RemoveItem(ctx context.Context, key domain.LineKey) (domain.Event, error) {
	return s.mutate(ctx, func(c *domain.Cart) domain.Event {
		return removeLine(c, key)
	})
}

// UpdateQuantity sets the quantity of a line, clamped to its max quantity.
// A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, key domain.LineKey, quantity int) (domain.Event, error) {
	return s.mutate(ctx, func(c *domain.Cart) domain.Event {
		idx := c.IndexOf(key)
		if idx < 0 {
			return domain.Event{Outcome: domain.OutcomeIgnored, Kind: domain.EventItemNotFound, Key: key}
		}

		if quantity <= 0 {
			return removeLine(c, key)
		}

		c.Items[idx].Quantity = min(quantity, c.Items[idx].MaxQuantity)
		return domain.Event{Outcome: domain.OutcomeApplied, Kind: domain.EventQuantityUpdated, Key: key}
	})
}

// Clear empties the cart, zeroes every total, drops the coupon and deletes the
// persisted record. Shipping stays zero until the next item change.
func (s *Store) Clear(ctx context.Context) (domain.Event, error) {
	s.mu.Lock()
	s.cart.Items = nil
	s.cart.Totals = domain.Totals{}
	s.cart.Discount = decimal.Zero
	s.cart.CouponCode = ""

	var err error
	if delErr := s.storage.Delete(ctx); delErr != nil {
		err = fmt.Errorf("storage.Delete: %w", delErr)
		s.logger.Error("failed to delete cart record", zap.String("owner_id", s.cart.OwnerID), zap.Error(delErr))
	}

	ev := domain.Event{Outcome: domain.OutcomeCleared, Kind: domain.EventCartCleared, Cart: s.cart.Clone()}
	s.mu.Unlock()

	s.publish(ev)

	return ev, err
}

// ApplyCoupon records code with an already validated discount amount.
// A later call replaces the earlier coupon. Coupon state is never persisted.
func (s *Store) ApplyCoupon(code string, discount decimal.Decimal) domain.Event {
	s.mu.Lock()
	s.cart.CouponCode = code
	s.cart.Discount = discount
	ev := domain.Event{Outcome: domain.OutcomeApplied, Kind: domain.EventCouponApplied, Cart: s.cart.Clone()}
	s.mu.Unlock()

	s.publish(ev)

	return ev
}

func (s *Store) RemoveCoupon() domain.Event {
	s.mu.Lock()
	s.cart.CouponCode = ""
	s.cart.Discount = decimal.Zero
	ev := domain.Event{Outcome: domain.OutcomeApplied, Kind: domain.EventCouponRemoved, Cart: s.cart.Clone()}
	s.mu.Unlock()

	s.publish(ev)

	return ev
}

// mutate runs fn under the lock. When fn changed the items, totals are recomputed and
// the items saved. The in-memory change stands even if the save fails.
func (s *Store) mutate(ctx context.Context, fn func(c *domain.Cart) domain.Event) (domain.Event, error) {
	s.mu.Lock()

	ev := fn(&s.cart)

	var err error
	if ev.Outcome.Changed() {
		s.recompute()

		if saveErr := s.storage.Save(ctx, s.cart.Items); saveErr != nil {
			err = fmt.Errorf("storage.Save: %w", saveErr)
			s.logger.Error("failed to persist cart", zap.String("owner_id", s.cart.OwnerID), zap.Error(saveErr))
		}
	}

	ev.Cart = s.cart.Clone()
	s.mu.Unlock()

	s.logger.Debug("cart operation",
		zap.String("owner_id", ev.Cart.OwnerID),
		zap.Stringer("outcome", ev.Outcome),
		zap.String("kind", string(ev.Kind)),
		zap.String("product_id", ev.Key.ProductID))

	s.publish(ev)

	return ev, err
}

func (s *Store) recompute() {
	s.cart.Totals = domain.RecomputeTotals(s.cart.Items, s.policy)
}

func (s *Store) publish(ev domain.Event) {
	s.subsMu.Lock()
	subs := make([]func(domain.Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func removeLine(c *domain.Cart, key domain.LineKey) domain.Event {
	idx := c.IndexOf(key)
	if idx < 0 {
		return domain.Event{Outcome: domain.OutcomeIgnored, Kind: domain.EventItemNotFound, Key: key}
	}

	c.Items = slices.Delete(c.Items, idx, idx+1)
	return domain.Event{Outcome: domain.OutcomeRemoved, Kind: domain.EventItemRemoved, Key: key}
}

// normalizeItems enforces the line invariants on items read from storage:
// one line per key and 1 <= quantity <= max quantity.
func normalizeItems(items []domain.CartLineItem) []domain.CartLineItem {
	var out []domain.CartLineItem
	seen := make(map[domain.LineKey]int, len(items))

	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		item.MaxQuantity = max(item.MaxQuantity, 1)

		if idx, ok := seen[item.Key()]; ok {
			out[idx].Quantity = min(out[idx].Quantity+item.Quantity, out[idx].MaxQuantity)
			continue
		}

		item.Quantity = min(item.Quantity, item.MaxQuantity)
		seen[item.Key()] = len(out)
		out = append(out, item)
	}

	return out
}
