package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartstore/internal/db"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
	"golang.org/x/text/currency"
)

// cartRepository keeps one owner's line items as rows of cart_items.
type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool

	ownerID string
	unit    currency.Unit
}

func NewCart(pool *pgxpool.Pool, ownerID string, unit currency.Unit) (port.CartStorage, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	return &cartRepository{
		q:       db.New(pool),
		pool:    pool,
		ownerID: ownerID,
		unit:    unit,
	}, nil
}

func NewCartWithTx(tx pgx.Tx, ownerID string, unit currency.Unit) (port.CartStorage, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("ownerID is empty")
	}

	return &cartRepository{
		q:       db.New(tx),
		pool:    nil, // use provided transaction instead
		ownerID: ownerID,
		unit:    unit,
	}, nil
}

func (r *cartRepository) Load(ctx context.Context) ([]domain.CartLineItem, error) {
	rows, err := r.q.GetCart(ctx, r.ownerID)
	if err != nil {
		return nil, fmt.Errorf("q.GetCart: %w", err)
	}

	items, err := r.mapGetCartRowsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapGetCartRowsToDomain: %w", err)
	}

	return items, nil
}

// Save replaces the stored rows with items in one transaction.
func (r *cartRepository) Save(ctx context.Context, items []domain.CartLineItem) error {
	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		if _, err := q.DeleteCart(ctx, r.ownerID); err != nil {
			return struct{}{}, fmt.Errorf("q.DeleteCart: %w", err)
		}

		for i, item := range items {
			err := q.AddItem(ctx, db.AddItemParams{
				ID:            uuid.New(),
				OwnerID:       r.ownerID,
				ProductID:     item.ProductID,
				Size:          item.Size,
				Color:         item.Color,
				Name:          item.Name,
				Image:         item.Image,
				PriceAmount:   item.Price,
				PriceCurrency: r.unit.String(),
				Quantity:      int32(item.Quantity),
				MaxQuantity:   int32(item.MaxQuantity),
				Position:      int32(i),
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("q.AddItem: %w", err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

func (r *cartRepository) Delete(ctx context.Context) error {
	if _, err := r.q.DeleteCart(ctx, r.ownerID); err != nil {
		return fmt.Errorf("q.DeleteCart: %w", err)
	}

	return nil
}

func (r *cartRepository) mapGetCartRowToDomain(row db.GetCartRow) (domain.CartLineItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartLineItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}
	if parsedCurrency != r.unit {
		return domain.CartLineItem{}, fmt.Errorf("currency[%s] does not match cart currency[%s]", parsedCurrency, r.unit)
	}

	return domain.CartLineItem{
		ProductID:   row.ProductID,
		Name:        row.Name,
		Image:       row.Image,
		Price:       row.PriceAmount,
		Size:        row.Size,
		Color:       row.Color,
		Quantity:    int(row.Quantity),
		MaxQuantity: int(row.MaxQuantity),
	}, nil
}

func (r *cartRepository) mapGetCartRowsToDomain(rows []db.GetCartRow) ([]domain.CartLineItem, error) {
	var items []domain.CartLineItem

	for _, row := range rows {
		item, err := r.mapGetCartRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapGetCartRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
