package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-cart/internal/product"
	"github.com/noah-isme/toko-cart/internal/shop"
)

type countingSource struct {
	products product.StaticSource
	requests [][]string
}

func (s *countingSource) Products(ctx context.Context, numbers []string, sc shop.Context) ([]product.Data, error) {
	s.requests = append(s.requests, numbers)
	return s.products.Products(ctx, numbers, sc)
}

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewCache(client, time.Minute, "cart:")
}

func TestCacheJSONRoundTrip(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	var dst map[string]int
	ok, err := cache.GetJSON(ctx, "missing", &dst)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.SetJSON(ctx, "k", map[string]int{"a": 1}))
	require.True(t, mr.Exists("cart:k"))
	require.Equal(t, time.Minute, mr.TTL("cart:k"))

	ok, err = cache.GetJSON(ctx, "k", &dst)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, dst["a"])
}

func TestDisabledCache(t *testing.T) {
	var cache *Cache
	require.False(t, cache.Enabled())
	ok, err := cache.GetJSON(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, NewCache(nil, time.Minute, "").SetJSON(context.Background(), "k", 1))
}

func TestCachedProductsLoadsMissesOnce(t *testing.T) {
	mr, cache := newTestCache(t)
	source := &countingSource{products: product.StaticSource{
		"SW1": {Name: "Shirt", Price: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(19)},
		"SW2": {Name: "Mug", Price: decimal.NewFromInt(5), TaxRate: decimal.NewFromInt(7)},
	}}
	cached := CachedProducts{Source: source, Cache: cache, Logger: zerolog.Nop()}
	sc := shop.Context{CustomerGroup: shop.CustomerGroup{Key: "EK"}}
	ctx := context.Background()

	first, err := cached.Products(ctx, []string{"SW2", "SW1", "SW9"}, sc)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, "SW2", first[0].Number)
	require.True(t, mr.Exists("cart:products:EK:SW1"))
	require.False(t, mr.Exists("cart:products:EK:SW9"))

	second, err := cached.Products(ctx, []string{"SW1", "SW2", "SW9"}, sc)
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.True(t, second[0].Price.Equal(decimal.NewFromInt(10)))
	require.Equal(t, [][]string{{"SW2", "SW1", "SW9"}, {"SW9"}}, source.requests)

	other := shop.Context{CustomerGroup: shop.CustomerGroup{Key: "H"}}
	_, err = cached.Products(ctx, []string{"SW1"}, other)
	require.NoError(t, err)
	require.Len(t, source.requests, 3)
}

func TestCachedProductsFallsBackWhenRedisFails(t *testing.T) {
	mr, cache := newTestCache(t)
	source := &countingSource{products: product.StaticSource{"SW1": {Name: "Shirt"}}}
	cached := CachedProducts{Source: source, Cache: cache, Logger: zerolog.Nop()}
	mr.Close()

	products, err := cached.Products(context.Background(), []string{"SW1"}, shop.Context{})
	require.NoError(t, err)
	require.Len(t, products, 1)
}
