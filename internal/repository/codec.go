package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
	"github.com/shopspring/decimal"
)

// CartKey is the storage key of the cart record.
const CartKey = "cart"

type lineItemRecord struct {
	ProductID   string      `json:"productId"`
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Image       string      `json:"image"`
	Size        string      `json:"size"`
	Color       string      `json:"color"`
	Quantity    int         `json:"quantity"`
	MaxQuantity int         `json:"maxQuantity"`
}

// EncodeItems renders items as the JSON array stored under CartKey.
func EncodeItems(items []domain.CartLineItem) ([]byte, error) {
	records := make([]lineItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, lineItemRecord{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Price:       json.Number(item.Price.String()),
			Image:       item.Image,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			MaxQuantity: item.MaxQuantity,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return data, nil
}

// DecodeItems parses a stored record. Empty input means no record.
// Anything that does not decode wraps port.ErrMalformedRecord.
func DecodeItems(data []byte) ([]domain.CartLineItem, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []lineItemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrMalformedRecord, err)
	}

	items := make([]domain.CartLineItem, 0, len(records))
	for _, r := range records {
		price, err := decimal.NewFromString(r.Price.String())
		if err != nil {
			return nil, fmt.Errorf("%w: price[%s] of product[%s]: %w", port.ErrMalformedRecord, r.Price, r.ProductID, err)
		}

		items = append(items, domain.CartLineItem{
			ProductID:   r.ProductID,
			Name:        r.Name,
			Image:       r.Image,
			Price:       price,
			Size:        r.Size,
			Color:       r.Color,
			Quantity:    r.Quantity,
			MaxQuantity: r.MaxQuantity,
		})
	}

	return items, nil
}
