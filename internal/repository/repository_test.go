package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func randomLineItem() domain.CartLineItem {
	maxQuantity := gofakeit.IntRange(1, 10)

	return domain.CartLineItem{
		ProductID:   gofakeit.UUID(),
		Name:        gofakeit.ProductName(),
		Image:       gofakeit.URL(),
		Price:       decimal.NewFromFloat(gofakeit.Price(1, 100)),
		Size:        gofakeit.RandomString([]string{"S", "M", "L", "XL"}),
		Color:       gofakeit.Color(),
		Quantity:    gofakeit.IntRange(1, maxQuantity),
		MaxQuantity: maxQuantity,
	}
}

func randomLineItems(n int) []domain.CartLineItem {
	items := make([]domain.CartLineItem, 0, n)
	for range n {
		items = append(items, randomLineItem())
	}
	return items
}

func assertLineItems(t *testing.T, expected, actual []domain.CartLineItem) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected, actual, decimalComparer, cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}
