package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/ariefcatur/go-sample-storefront/internal/redisx"
	"github.com/rs/zerolog"
)

// Cached keeps the product list in Redis for ttl. Redis failures fall through
// to the wrapped provider.
type Cached struct {
	inner Provider
	rdb   redisx.Cmdable
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCached(inner Provider, rdb redisx.Cmdable, ttl time.Duration, log zerolog.Logger) *Cached {
	return &Cached{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *Cached) List(ctx context.Context) ([]cart.Product, error) {
	raw, ok, err := redisx.GetString(ctx, c.rdb, redisx.KeyCatalog)
	if err != nil {
		c.log.Warn().Err(err).Msg("catalog cache read failed")
	}
	if ok {
		var products []cart.Product
		if err := json.Unmarshal([]byte(raw), &products); err == nil {
			return products, nil
		}
		c.log.Warn().Msg("catalog cache entry undecodable; refetching")
	}

	products, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(products); err == nil {
		if err := c.rdb.Set(ctx, redisx.KeyCatalog, b, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return products, nil
}

func (c *Cached) Get(ctx context.Context, id string) (cart.Product, error) {
	return find(ctx, c, id)
}

// Invalidate drops the cached list so the next List refetches.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, redisx.KeyCatalog).Err()
}
