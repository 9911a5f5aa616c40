package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-cart/internal/obs"
	"github.com/noah-isme/toko-cart/internal/product"
	"github.com/noah-isme/toko-cart/internal/shop"
)

const productsSource = "products"

// CachedProducts serves product data from the cache and loads misses from Source.
// Redis failures degrade to the source.
type CachedProducts struct {
	Source product.Source
	Cache  *Cache
	Logger zerolog.Logger
}

// productKey includes the customer group because prices depend on it.
func productKey(sc shop.Context, number string) string {
	return "products:" + sc.CustomerGroup.Key + ":" + number
}

// Products implements product.Source.
func (c CachedProducts) Products(ctx context.Context, numbers []string, sc shop.Context) ([]product.Data, error) {
	if !c.Cache.Enabled() {
		return c.Source.Products(ctx, numbers, sc)
	}
	found := make(map[string]product.Data, len(numbers))
	var misses []string
	for _, number := range numbers {
		var d product.Data
		ok, err := c.Cache.GetJSON(ctx, productKey(sc, number), &d)
		switch {
		case err != nil:
			c.Logger.Warn().Err(err).Str("product", number).Msg("catalog_cache_get_failed")
			obs.ObserveCacheLookup(productsSource, "error")
			misses = append(misses, number)
		case ok:
			obs.ObserveCacheLookup(productsSource, "hit")
			found[number] = d
		default:
			obs.ObserveCacheLookup(productsSource, "miss")
			misses = append(misses, number)
		}
	}

	if len(misses) > 0 {
		loaded, err := c.Source.Products(ctx, misses, sc)
		if err != nil {
			return nil, err
		}
		for _, d := range loaded {
			found[d.Number] = d
			if err := c.Cache.SetJSON(ctx, productKey(sc, d.Number), d); err != nil {
				c.Logger.Warn().Err(err).Str("product", d.Number).Msg("catalog_cache_set_failed")
			}
		}
	}

	out := make([]product.Data, 0, len(found))
	for _, number := range numbers {
		if d, ok := found[number]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}
