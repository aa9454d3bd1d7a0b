package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/nikolayk812/cartstore/internal/config"
	"github.com/nikolayk812/cartstore/internal/coupon"
	"github.com/nikolayk812/cartstore/internal/db"
	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/events"
	"github.com/nikolayk812/cartstore/internal/orderapi"
	"github.com/nikolayk812/cartstore/internal/port"
	"github.com/nikolayk812/cartstore/internal/repository"
	"github.com/nikolayk812/cartstore/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the collaborators built from config for one command run.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *store.Registry
	coupons  *coupon.Validator

	closers []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close())
		}
	}()

	unit, err := cfg.Unit()
	if err != nil {
		return nil, err
	}

	policy, err := cfg.PricingPolicy()
	if err != nil {
		return nil, err
	}

	rules, err := cfg.CouponRules()
	if err != nil {
		return nil, err
	}

	a.coupons, err = coupon.NewValidator(rules...)
	if err != nil {
		return nil, fmt.Errorf("coupon.NewValidator: %w", err)
	}

	factory, err := a.storageFactory(ctx)
	if err != nil {
		return nil, err
	}

	a.registry = store.NewRegistry(factory,
		store.WithLogger(logger),
		store.WithPricing(policy),
		store.WithCurrency(unit))

	return a, nil
}

// storageFactory opens the configured backend once and scopes it per owner.
func (a *app) storageFactory(ctx context.Context) (store.StorageFactory, error) {
	cfg := a.cfg.Storage

	switch cfg.Backend {
	case config.BackendMemory:
		return func(string) (port.CartStorage, error) {
			return repository.NewMemoryStorage(), nil
		}, nil

	case config.BackendFile:
		return func(ownerID string) (port.CartStorage, error) {
			if err := domain.ValidateOwnerID(ownerID); err != nil {
				return nil, err
			}
			return repository.NewFileStorage(filepath.Join(cfg.Dir, ownerID), cfg.Key)
		}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("client.Ping: %w", err)
		}

		return func(ownerID string) (port.CartStorage, error) {
			prefix := ownerID
			if cfg.RedisPrefix != "" {
				prefix = cfg.RedisPrefix + ":" + ownerID
			}
			return repository.NewRedisStorage(client, prefix, cfg.Key)
		}, nil

	case config.BackendPostgres:
		if err := db.RunMigrations(cfg.PostgresDSN, a.logger); err != nil {
			return nil, fmt.Errorf("db.RunMigrations: %w", err)
		}

		pool, err := db.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("db.NewPool: %w", err)
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})

		unit, err := a.cfg.Unit()
		if err != nil {
			return nil, err
		}

		return func(ownerID string) (port.CartStorage, error) {
			return repository.NewCart(pool, ownerID, unit)
		}, nil

	default:
		return nil, fmt.Errorf("storage backend[%s] is not supported", cfg.Backend)
	}
}

// submitter dials the configured order boundary. It is only built by commands that place orders.
func (a *app) submitter() (port.OrderSubmitter, error) {
	switch a.cfg.Submitter {
	case config.SubmitterHTTP:
		client, err := orderapi.NewClient(a.cfg.OrderAPI.BaseURL, a.cfg.OrderAPI.Token, &http.Client{Timeout: a.cfg.OrderAPI.Timeout})
		if err != nil {
			return nil, fmt.Errorf("orderapi.NewClient: %w", err)
		}
		return client, nil

	case config.SubmitterAMQP:
		conn, err := events.Dial(a.cfg.Broker.URL)
		if err != nil {
			return nil, fmt.Errorf("events.Dial: %w", err)
		}
		a.closers = append(a.closers, conn.Close)

		publisher, err := events.NewPublisher(conn)
		if err != nil {
			return nil, fmt.Errorf("events.NewPublisher: %w", err)
		}
		// channel must close before the connection
		a.closers = append(a.closers, publisher.Close)

		return publisher, nil

	default:
		return nil, fmt.Errorf("submitter[%s] is not supported", a.cfg.Submitter)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
