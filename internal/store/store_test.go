package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/repository"
	"github.com/nikolayk812/cartstore/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type storeSuite struct {
	suite.Suite

	storage *repository.MemoryStorage
	store   *store.Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(storeSuite))
}

// before each test
func (suite *storeSuite) SetupTest() {
	var err error

	suite.storage = repository.NewMemoryStorage()
	suite.store, err = store.New(suite.T().Context(), suite.storage)
	suite.Require().NoError(err)
}

func (suite *storeSuite) TestAddItem_Scenario() {
	t := suite.T()

	ev, err := suite.store.AddItem(t.Context(), tee())
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeApplied, ev.Outcome)
	assert.Equal(t, domain.EventItemAdded, ev.Kind)
	assert.Equal(t, tee().Key(), ev.Key)

	cart := ev.Cart
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, 1, cart.TotalItems)
	assertDecimal(t, "89.99", cart.TotalPrice)
	assertDecimal(t, "9.99", cart.ShippingCost)
	assertDecimal(t, "7.1992", cart.Tax)
	assertDecimal(t, "107.1792", cart.FinalTotal())
}

func (suite *storeSuite) TestAddItem_SameKeyIncrements() {
	t := suite.T()
	ctx := t.Context()

	item := tee()
	for range item.MaxQuantity {
		_, err := suite.store.AddItem(ctx, item)
		require.NoError(t, err)
	}

	cart := suite.store.Snapshot()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, item.MaxQuantity, cart.Items[0].Quantity)
	assert.Equal(t, item.MaxQuantity, cart.TotalItems)
}

func (suite *storeSuite) TestAddItem_CapReached() {
	t := suite.T()
	ctx := t.Context()

	item := tee()
	item.MaxQuantity = 2

	_, err := suite.store.AddItem(ctx, item)
	require.NoError(t, err)

	ev, err := suite.store.AddItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, domain.EventQuantityUpdated, ev.Kind)

	before := suite.storage.Record()

	ev, err = suite.store.AddItem(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejectedCapped, ev.Outcome)
	assert.Equal(t, domain.EventMaxQuantityReached, ev.Kind)
	assert.Equal(t, 2, ev.Cart.Items[0].Quantity)
	assert.Equal(t, before, suite.storage.Record())
}

func (suite *storeSuite) TestAddItem_DistinctVariants() {
	t := suite.T()
	ctx := t.Context()

	black := tee()
	white := tee()
	white.Color = "White"
	large := tee()
	large.Size = "L"

	for _, item := range []domain.NewLineItem{black, white, large, black} {
		_, err := suite.store.AddItem(ctx, item)
		require.NoError(t, err)
	}

	cart := suite.store.Snapshot()
	require.Len(t, cart.Items, 3)
	assert.Equal(t, black.Key(), cart.Items[0].Key())
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, white.Key(), cart.Items[1].Key())
	assert.Equal(t, large.Key(), cart.Items[2].Key())
	assert.Equal(t, 4, cart.TotalItems)
}

func (suite *storeSuite) TestAddItem_ZeroMaxQuantity() {
	t := suite.T()
	ctx := t.Context()

	item := tee()
	item.MaxQuantity = 0

	_, err := suite.store.AddItem(ctx, item)
	require.NoError(t, err)

	ev, err := suite.store.AddItem(ctx, item)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeRejectedCapped, ev.Outcome)
	assert.Equal(t, 1, ev.Cart.Items[0].MaxQuantity)
	assert.Equal(t, 1, ev.Cart.Items[0].Quantity)
}

func (suite *storeSuite) TestRemoveItem() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.store.AddItem(ctx, tee())
	require.NoError(t, err)

	ev, err := suite.store.RemoveItem(ctx, tee().Key())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRemoved, ev.Outcome)
	assert.Equal(t, domain.EventItemRemoved, ev.Kind)
	assert.Empty(t, ev.Cart.Items)
	assert.Equal(t, 0, ev.Cart.TotalItems)
	assertDecimal(t, "0", ev.Cart.TotalPrice)
	assertDecimal(t, "9.99", ev.Cart.ShippingCost)

	ev, err = suite.store.RemoveItem(ctx, tee().Key())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIgnored, ev.Outcome)
	assert.Empty(t, ev.Cart.Items)
}

func (suite *storeSuite) TestUpdateQuantity() {
	tests := []struct {
		name         string
		key          domain.LineKey
		quantity     int
		wantOutcome  domain.Outcome
		wantQuantity int
		wantItems    int
	}{
		{
			name:         "within cap: set",
			key:          tee().Key(),
			quantity:     3,
			wantOutcome:  domain.OutcomeApplied,
			wantQuantity: 3,
			wantItems:    1,
		},
		{
			name:         "above cap: clamped to max quantity",
			key:          tee().Key(),
			quantity:     10,
			wantOutcome:  domain.OutcomeApplied,
			wantQuantity: 5,
			wantItems:    1,
		},
		{
			name:        "zero: removed",
			key:         tee().Key(),
			quantity:    0,
			wantOutcome: domain.OutcomeRemoved,
			wantItems:   0,
		},
		{
			name:        "negative: removed",
			key:         tee().Key(),
			quantity:    -3,
			wantOutcome: domain.OutcomeRemoved,
			wantItems:   0,
		},
		{
			name:         "unknown key: ignored",
			key:          domain.LineKey{ProductID: "missing", Size: "M", Color: "Black"},
			quantity:     2,
			wantOutcome:  domain.OutcomeIgnored,
			wantQuantity: 1,
			wantItems:    1,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			s, err := store.New(ctx, repository.NewMemoryStorage())
			require.NoError(t, err)

			_, err = s.AddItem(ctx, tee())
			require.NoError(t, err)

			ev, err := s.UpdateQuantity(ctx, tt.key, tt.quantity)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOutcome, ev.Outcome)
			require.Len(t, ev.Cart.Items, tt.wantItems)
			if tt.wantItems > 0 {
				assert.Equal(t, tt.wantQuantity, ev.Cart.Items[0].Quantity)
			}
			assertTotalsConsistent(t, ev.Cart)
		})
	}
}

func (suite *storeSuite) TestShippingThreshold() {
	tests := []struct {
		name         string
		price        string
		wantShipping string
	}{
		{name: "exactly 100.00: flat fee", price: "100.00", wantShipping: "9.99"},
		{name: "100.01: free", price: "100.01", wantShipping: "0"},
		{name: "below: flat fee", price: "12.50", wantShipping: "9.99"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			s, err := store.New(ctx, repository.NewMemoryStorage())
			require.NoError(t, err)

			item := tee()
			item.Price = decimal.RequireFromString(tt.price)

			ev, err := s.AddItem(ctx, item)
			require.NoError(t, err)

			assertDecimal(t, tt.price, ev.Cart.TotalPrice)
			assertDecimal(t, tt.wantShipping, ev.Cart.ShippingCost)
		})
	}
}

func (suite *storeSuite) TestClear() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.store.AddItem(ctx, tee())
	require.NoError(t, err)
	suite.store.ApplyCoupon("SAVE10", decimal.RequireFromString("8.999"))
	require.NotNil(t, suite.storage.Record())

	ev, err := suite.store.Clear(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCleared, ev.Outcome)
	assert.Equal(t, domain.EventCartCleared, ev.Kind)

	cart := suite.store.Snapshot()
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems)
	assertDecimal(t, "0", cart.TotalPrice)
	assertDecimal(t, "0", cart.ShippingCost)
	assertDecimal(t, "0", cart.Tax)
	assertDecimal(t, "0", cart.Discount)
	assert.Empty(t, cart.CouponCode)
	assert.Nil(t, suite.storage.Record())
}

func (suite *storeSuite) TestEmptyCartShipping() {
	t := suite.T()
	ctx := t.Context()

	assertDecimal(t, "9.99", suite.store.Snapshot().ShippingCost)

	_, err := suite.store.AddItem(ctx, tee())
	require.NoError(t, err)
	ev, err := suite.store.RemoveItem(ctx, tee().Key())
	require.NoError(t, err)
	assert.Empty(t, ev.Cart.Items)
	assertDecimal(t, "9.99", ev.Cart.ShippingCost)
	assertDecimal(t, "9.99", ev.Cart.FinalTotal())

	ev, err = suite.store.Clear(ctx)
	require.NoError(t, err)
	assertDecimal(t, "0", ev.Cart.ShippingCost)
	assertDecimal(t, "0", ev.Cart.FinalTotal())

	// the next item change recomputes from the formula again
	_, err = suite.store.AddItem(ctx, tee())
	require.NoError(t, err)
	ev, err = suite.store.RemoveItem(ctx, tee().Key())
	require.NoError(t, err)
	assertDecimal(t, "9.99", ev.Cart.ShippingCost)
}

func (suite *storeSuite) TestCoupon() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.store.AddItem(ctx, tee())
	require.NoError(t, err)

	ev := suite.store.ApplyCoupon("SAVE10", decimal.RequireFromString("8.999"))
	assert.Equal(t, domain.EventCouponApplied, ev.Kind)
	assert.Equal(t, "SAVE10", ev.Cart.CouponCode)
	assertDecimal(t, "8.999", ev.Cart.Discount)
	assertDecimal(t, "89.99", ev.Cart.TotalPrice)
	assertDecimal(t, "98.1802", ev.Cart.FinalTotal())

	ev = suite.store.ApplyCoupon("WELCOME", decimal.NewFromInt(5))
	assert.Equal(t, "WELCOME", ev.Cart.CouponCode)
	assertDecimal(t, "5", ev.Cart.Discount)

	ev = suite.store.RemoveCoupon()
	assert.Equal(t, domain.EventCouponRemoved, ev.Kind)
	assert.False(t, ev.Cart.HasCoupon())
	assertDecimal(t, "0", ev.Cart.Discount)
	assertDecimal(t, "89.99", ev.Cart.TotalPrice)
}

func (suite *storeSuite) TestCouponNotPersisted() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.store.AddItem(ctx, tee())
	require.NoError(t, err)
	suite.store.ApplyCoupon("SAVE10", decimal.RequireFromString("8.999"))

	reloaded, err := store.New(ctx, suite.storage)
	require.NoError(t, err)

	cart := reloaded.Snapshot()
	require.Len(t, cart.Items, 1)
	assert.Empty(t, cart.CouponCode)
	assertDecimal(t, "0", cart.Discount)
	assertDecimal(t, "89.99", cart.TotalPrice)
	assertDecimal(t, "7.1992", cart.Tax)
}

func (suite *storeSuite) TestSnapshotIsDetached() {
	t := suite.T()
	ctx := t.Context()

	_, err := suite.store.AddItem(ctx, tee())
	require.NoError(t, err)

	snapshot := suite.store.Snapshot()
	snapshot.Items[0].Quantity = 99

	assert.Equal(t, 1, suite.store.Snapshot().Items[0].Quantity)
}

func (suite *storeSuite) TestSubscribe() {
	t := suite.T()
	ctx := t.Context()

	var kinds []domain.EventKind
	unsubscribe := suite.store.Subscribe(func(ev domain.Event) {
		kinds = append(kinds, ev.Kind)
		assertTotalsConsistent(t, ev.Cart)
	})

	_, err := suite.store.AddItem(ctx, tee())
	require.NoError(t, err)
	_, err = suite.store.AddItem(ctx, tee())
	require.NoError(t, err)
	_, err = suite.store.RemoveItem(ctx, tee().Key())
	require.NoError(t, err)

	unsubscribe()

	_, err = suite.store.Clear(ctx)
	require.NoError(t, err)

	assert.Equal(t, []domain.EventKind{
		domain.EventItemAdded,
		domain.EventQuantityUpdated,
		domain.EventItemRemoved,
	}, kinds)
}

func (suite *storeSuite) TestTotalsAfterRandomOperations() {
	t := suite.T()
	ctx := t.Context()

	products := make([]domain.NewLineItem, 4)
	for i := range products {
		products[i] = randomNewLineItem()
	}

	for range 200 {
		p := products[gofakeit.IntN(len(products))]

		var err error
		switch gofakeit.IntN(4) {
		case 0, 1:
			_, err = suite.store.AddItem(ctx, p)
		case 2:
			_, err = suite.store.UpdateQuantity(ctx, p.Key(), gofakeit.IntRange(-1, 12))
		case 3:
			_, err = suite.store.RemoveItem(ctx, p.Key())
		}
		require.NoError(t, err)

		cart := suite.store.Snapshot()
		assertTotalsConsistent(t, cart)
		for _, item := range cart.Items {
			assert.Positive(t, item.Quantity)
			assert.LessOrEqual(t, item.Quantity, item.MaxQuantity)
		}
	}
}

func TestNew_Rehydrates(t *testing.T) {
	ctx := t.Context()

	storage := repository.NewMemoryStorageWithRecord([]byte(`[
		{"productId":"1","name":"Tee","price":89.99,"image":"","size":"M","color":"Black","quantity":2,"maxQuantity":5},
		{"productId":"2","name":"Cap","price":15,"image":"","size":"","color":"Red","quantity":1,"maxQuantity":3}
	]`))

	s, err := store.New(ctx, storage, store.WithOwner("owner-1"), store.WithCurrency(currency.EUR))
	require.NoError(t, err)

	cart := s.Snapshot()
	assert.Equal(t, "owner-1", cart.OwnerID)
	assert.Equal(t, currency.EUR, cart.Currency)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.TotalItems)
	assertDecimal(t, "194.98", cart.TotalPrice)
	assertDecimal(t, "0", cart.ShippingCost)
	assertDecimal(t, "15.5984", cart.Tax)
}

func TestNew_NormalizesStoredItems(t *testing.T) {
	storage := repository.NewMemoryStorageWithRecord([]byte(`[
		{"productId":"1","price":10,"size":"M","color":"Black","quantity":9,"maxQuantity":5},
		{"productId":"2","price":10,"size":"M","color":"Black","quantity":0,"maxQuantity":5},
		{"productId":"1","price":10,"size":"M","color":"Black","quantity":1,"maxQuantity":5}
	]`))

	s, err := store.New(t.Context(), storage)
	require.NoError(t, err)

	cart := s.Snapshot()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestNew_MalformedRecordStartsEmpty(t *testing.T) {
	storage := repository.NewMemoryStorageWithRecord([]byte(`[{"productId":`))

	s, err := store.New(t.Context(), storage)
	require.NoError(t, err)

	cart := s.Snapshot()
	assert.Empty(t, cart.Items)
	assertDecimal(t, "9.99", cart.ShippingCost)
}

func TestNew_StorageError(t *testing.T) {
	_, err := store.New(t.Context(), &failingStorage{loadErr: errors.New("connection refused")})
	require.EqualError(t, err, "storage.Load: connection refused")
}

func TestNew_NilStorage(t *testing.T) {
	_, err := store.New(t.Context(), nil)
	require.EqualError(t, err, "storage is nil")
}

func TestAddItem_SaveError(t *testing.T) {
	ctx := t.Context()

	s, err := store.New(ctx, &failingStorage{saveErr: errors.New("disk full")})
	require.NoError(t, err)

	ev, err := s.AddItem(ctx, tee())
	require.EqualError(t, err, "storage.Save: disk full")

	// the in-memory change stands
	assert.Equal(t, domain.OutcomeApplied, ev.Outcome)
	assert.Len(t, s.Snapshot().Items, 1)
}

func TestWithPricing(t *testing.T) {
	ctx := t.Context()

	policy := domain.PricingPolicy{
		FreeShippingOver: decimal.NewFromInt(50),
		FlatShipping:     decimal.NewFromInt(5),
		TaxRate:          decimal.RequireFromString("0.2"),
	}

	s, err := store.New(ctx, repository.NewMemoryStorage(), store.WithPricing(policy))
	require.NoError(t, err)

	item := tee()
	item.Price = decimal.NewFromInt(40)

	ev, err := s.AddItem(ctx, item)
	require.NoError(t, err)
	assertDecimal(t, "5", ev.Cart.ShippingCost)
	assertDecimal(t, "8", ev.Cart.Tax)

	ev, err = s.AddItem(ctx, item)
	require.NoError(t, err)
	assertDecimal(t, "0", ev.Cart.ShippingCost)
	assertDecimal(t, "16", ev.Cart.Tax)
}

type failingStorage struct {
	loadErr error
	saveErr error
}

func (f *failingStorage) Load(context.Context) ([]domain.CartLineItem, error) {
	return nil, f.loadErr
}

func (f *failingStorage) Save(context.Context, []domain.CartLineItem) error {
	return f.saveErr
}

func (f *failingStorage) Delete(context.Context) error {
	return nil
}

func tee() domain.NewLineItem {
	return domain.NewLineItem{
		ProductID:   "1",
		Name:        "Classic Tee",
		Image:       "/images/tee.jpg",
		Price:       decimal.RequireFromString("89.99"),
		Size:        "M",
		Color:       "Black",
		MaxQuantity: 5,
	}
}

func randomNewLineItem() domain.NewLineItem {
	return domain.NewLineItem{
		ProductID:   gofakeit.UUID(),
		Name:        gofakeit.ProductName(),
		Image:       gofakeit.URL(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Size:        gofakeit.RandomString([]string{"S", "M", "L"}),
		Color:       gofakeit.Color(),
		MaxQuantity: gofakeit.IntRange(1, 6),
	}
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func assertTotalsConsistent(t *testing.T, cart domain.Cart) {
	t.Helper()

	var (
		totalItems int
		totalPrice decimal.Decimal
	)
	for _, item := range cart.Items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	assert.Equal(t, totalItems, cart.TotalItems)
	assert.True(t, totalPrice.Equal(cart.TotalPrice), "total price %s != %s", cart.TotalPrice, totalPrice)
}
