package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakereserve-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "storefront"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Connect opens a Redis client and verifies connectivity.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	raw := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return raw, nil
}

// Catalog caches the public product list. A nil *Catalog always misses.
type Catalog struct {
	store cmdable
	ttl   time.Duration
}

func NewCatalog(store cmdable, ttl time.Duration) *Catalog {
	return &Catalog{store: store, ttl: ttl}
}

func (c *Catalog) key() string {
	return strings.Join([]string{keyNamespace, "catalog", "products"}, ":")
}

// Products returns the cached list and whether it was present.
func (c *Catalog) Products(ctx context.Context) ([]domain.Product, bool, error) {
	if c == nil || c.store == nil {
		return nil, false, nil
	}
	raw, err := c.store.Get(ctx, c.key()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		// stale encoding; treat as a miss so the caller refills it
		return nil, false, nil
	}
	return products, true, nil
}

func (c *Catalog) StoreProducts(ctx context.Context, products []domain.Product) error {
	if c == nil || c.store == nil {
		return nil
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key(), payload, c.ttl).Err()
}

// Invalidate drops the cached list after any admin product change.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Del(ctx, c.key()).Err()
}

// Ping reports Redis health for readiness checks.
func (c *Catalog) Ping(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Ping(ctx).Err()
}
