package app

import (
	"context"

	"github.com/noah-isme/toko-cart/internal/product"
	"github.com/noah-isme/toko-cart/internal/resilience"
	"github.com/noah-isme/toko-cart/internal/shop"
	"github.com/noah-isme/toko-cart/internal/voucher"
)

// Guard routes every lookup of sources through breaker so that an unavailable
// backend fails calculations fast.
func Guard(sources Sources, breaker *resilience.Breaker) Sources {
	g := guarded{sources: sources, breaker: breaker}
	out := Sources{Products: g}
	if sources.Vouchers != nil {
		out.Vouchers = g
	}
	if sources.Categories != nil {
		out.Categories = g
	}
	if sources.Attributes != nil {
		out.Attributes = g
	}
	if sources.OrderStates != nil {
		out.OrderStates = g
	}
	return out
}

type guarded struct {
	sources Sources
	breaker *resilience.Breaker
}

func (g guarded) Products(ctx context.Context, numbers []string, sc shop.Context) ([]product.Data, error) {
	var out []product.Data
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.sources.Products.Products(ctx, numbers, sc)
		return err
	})
	return out, err
}

func (g guarded) Vouchers(ctx context.Context, codes []string) ([]voucher.Data, error) {
	var out []voucher.Data
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.sources.Vouchers.Vouchers(ctx, codes)
		return err
	})
	return out, err
}

func (g guarded) ProductCategories(ctx context.Context, numbers []string, categoryIDs []int) (map[int][]string, error) {
	var out map[int][]string
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.sources.Categories.ProductCategories(ctx, numbers, categoryIDs)
		return err
	})
	return out, err
}

func (g guarded) ProductAttributes(ctx context.Context, numbers []string, attributes []string) (map[string][]string, error) {
	var out map[string][]string
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.sources.Attributes.ProductAttributes(ctx, numbers, attributes)
		return err
	})
	return out, err
}

func (g guarded) OrderClearedStates(ctx context.Context, customerID int) ([]int, error) {
	var out []int
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = g.sources.OrderStates.OrderClearedStates(ctx, customerID)
		return err
	})
	return out, err
}
