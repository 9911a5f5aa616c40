package dynamic

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Processor runs gateways in order over the goods of the draft. Register it
// after the product and voucher processors.
type Processor struct {
	Gateways []Gateway
	Logger   zerolog.Logger
}

// NewProcessor returns a processor with the default gateways: customer group
// discount, minimum order surcharge and payment surcharge.
func NewProcessor(prices pricing.PriceCalculator, logger zerolog.Logger) Processor {
	percentage := pricing.PercentagePriceCalculator{Prices: prices}
	absolute := pricing.AbsolutePriceCalculator{Prices: prices}
	return Processor{
		Gateways: []Gateway{
			CustomerGroupDiscount{Percentage: percentage},
			MinimumOrderSurcharge{Absolute: absolute},
			PaymentSurcharge{Absolute: absolute, Percentage: percentage},
		},
		Logger: logger,
	}
}

// Process implements cart.Processor.
func (p Processor) Process(_ *cart.Container, draft *lineitem.CalculatedCollection, _ *auxdata.Collection, sc shop.Context) error {
	goods := draft.FilterGoods()
	if goods.Len() == 0 {
		return nil
	}
	prices := goods.Prices()
	for _, gateway := range p.Gateways {
		items, err := gateway.Items(prices, sc)
		if err != nil {
			return fmt.Errorf("dynamic gateway %T: %w", gateway, err)
		}
		for _, item := range items {
			draft.Add(item)
			p.Logger.Debug().Str("line_item", item.Identifier()).Str("total", item.Price().TotalPrice.String()).Msg("dynamic_item_added")
		}
	}
	return nil
}
