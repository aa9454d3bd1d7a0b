package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
	"github.com/redis/go-redis/v9"
)

type redisStorage struct {
	client *redis.Client
	key    string
}

// NewRedisStorage stores the record under "<prefix>:<key>", or "<key>" without a prefix.
func NewRedisStorage(client *redis.Client, prefix, key string) (port.CartStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	if prefix != "" {
		key = prefix + ":" + key
	}

	return &redisStorage{client: client, key: key}, nil
}

func (r *redisStorage) Load(ctx context.Context) ([]domain.CartLineItem, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	return DecodeItems(data)
}

func (r *redisStorage) Save(ctx context.Context, items []domain.CartLineItem) error {
	data, err := EncodeItems(items)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (r *redisStorage) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("client.Del: %w", err)
	}

	return nil
}
