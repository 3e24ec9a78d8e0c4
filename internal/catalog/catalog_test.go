package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	s := Seed()

	products, err := s.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	tee, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.True(t, tee.HasVariants())
	assert.Equal(t, "TS-BL-M", tee.SKUFor("1-5"))

	keychain, err := s.Get(ctx, "5")
	require.NoError(t, err)
	assert.IsType(t, cart.FreeformOptions{}, keychain.Options)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticListIsACopy(t *testing.T) {
	s := NewStatic([]cart.Product{{ID: "a", Name: "A"}})
	got, _ := s.List(context.Background())
	got[0].Name = "changed"

	again, _ := s.List(context.Background())
	assert.Equal(t, "A", again[0].Name)
}

func TestRemoteFillsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"products":[
			{"id": 12, "name": "Tote", "colors": "red, blue", "sizes": ""},
			{"name": "", "type": "mug", "variants": [{"id":"m-1","sku":"MG-1"}]},
			{"id": "x", "name": "Pin"}
		]}`)
	}))
	defer srv.Close()

	products, err := NewRemote(srv.URL, time.Second).List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "12", products[0].ID)
	assert.Equal(t, cart.FreeformOptions{Colors: "red, blue"}, products[0].Options)
	assert.Equal(t, placeholderImage, products[0].Image)
	assert.Equal(t, cart.TypeOther, products[0].Type)

	assert.Equal(t, "1", products[1].ID)
	assert.Equal(t, "Product 2", products[1].Name)
	assert.Equal(t, "MG-1", products[1].SKUFor("m-1"))

	assert.Nil(t, products[2].Options)
}

func TestRemoteWithoutURLIsEmpty(t *testing.T) {
	products, err := NewRemote("", time.Second).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRemoteErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		"shape":  func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"items":[]}`) },
		"json":   func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{`) },
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()
			_, err := NewRemote(srv.URL, time.Second).List(context.Background())
			assert.Error(t, err)
		})
	}
}

type countingProvider struct {
	calls    int
	products []cart.Product
	err      error
}

func (c *countingProvider) List(context.Context) ([]cart.Product, error) {
	c.calls++
	return c.products, c.err
}

func (c *countingProvider) Get(ctx context.Context, id string) (cart.Product, error) {
	return find(ctx, c, id)
}

type mapRedis struct {
	data map[string]string
	err  error
}

func (m *mapRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mapRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (m *mapRedis) SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(false, nil)
}

func (m *mapRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mapRedis) Exists(context.Context, ...string) *redis.IntCmd {
	return redis.NewIntResult(0, nil)
}

func TestCachedServesFromRedis(t *testing.T) {
	ctx := context.Background()
	inner := &countingProvider{products: Seed().products}
	c := NewCached(inner, &mapRedis{data: map[string]string{}}, time.Minute, zerolog.Nop())

	first, err := c.List(ctx)
	require.NoError(t, err)
	second, err := c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	require.Equal(t, len(first), len(second))
	assert.Equal(t, "TS-WH-S", second[0].SKUFor("1-1"))

	p, err := c.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Character Cap", p.Name)

	require.NoError(t, c.Invalidate(ctx))
	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedFallsThroughOnRedisError(t *testing.T) {
	inner := &countingProvider{products: []cart.Product{{ID: "a", Name: "A"}}}
	c := NewCached(inner, &mapRedis{data: map[string]string{}, err: errors.New("down")}, time.Minute, zerolog.Nop())

	products, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCachedPropagatesProviderError(t *testing.T) {
	inner := &countingProvider{err: errors.New("sheet down")}
	c := NewCached(inner, &mapRedis{data: map[string]string{}}, time.Minute, zerolog.Nop())

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, inner.err)
}
