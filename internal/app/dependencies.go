// Package app wires the cart calculation pipeline from its data sources.
package app

import (
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/delivery"
	"github.com/noah-isme/toko-cart/internal/dynamic"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/product"
	"github.com/noah-isme/toko-cart/internal/rule"
	"github.com/noah-isme/toko-cart/internal/shop"
	"github.com/noah-isme/toko-cart/internal/voucher"
)

// Sources are the catalog lookups performed by the collectors.
type Sources struct {
	Products    product.Source
	Vouchers    voucher.Source
	Categories  rule.CategorySource
	Attributes  rule.AttributeSource
	OrderStates rule.OrderStateSource
}

// Dependencies enumerates what the calculator needs to make wiring explicit.
type Dependencies struct {
	Sources           Sources
	Logger            zerolog.Logger
	Validator         *validator.Validate
	MaxRecalculations int
	Now               func() time.Time
}

// NewCalculator builds a calculator with the default pipeline:
// collectors product, voucher, rule data; processors product, voucher,
// dynamic; validators stock, rule.
func NewCalculator(deps Dependencies) *cart.Calculator {
	taxes := pricing.TaxCalculator{}
	detector := shop.TaxDetector{}
	prices := pricing.PriceCalculator{Taxes: taxes, Detector: detector}
	percentage := pricing.PercentagePriceCalculator{Prices: prices}
	absolute := pricing.AbsolutePriceCalculator{Prices: prices}

	validate := deps.Validator
	if validate == nil {
		validate = lineitem.NewValidator()
	}

	collectors := []cart.Collector{
		product.Collector{Source: deps.Sources.Products},
	}
	if deps.Sources.Vouchers != nil {
		collectors = append(collectors, voucher.Collector{Source: deps.Sources.Vouchers})
	}
	if deps.Sources.Categories != nil {
		collectors = append(collectors, rule.ProductOfCategoriesCollector{Source: deps.Sources.Categories})
	}
	if deps.Sources.Attributes != nil {
		collectors = append(collectors, rule.ProductAttributeCollector{Source: deps.Sources.Attributes})
	}
	if deps.Sources.OrderStates != nil {
		collectors = append(collectors, rule.OrderClearedStateCollector{Source: deps.Sources.OrderStates})
	}

	logger := deps.Logger
	return cart.NewCalculator(cart.Deps{
		Collectors: collectors,
		Processors: []cart.Processor{
			product.Processor{Prices: prices, Now: deps.Now, Logger: logger.With().Str("processor", "product").Logger()},
			voucher.Processor{
				Prices:     prices,
				Percentage: percentage,
				Absolute:   absolute,
				Now:        deps.Now,
				Logger:     logger.With().Str("processor", "voucher").Logger(),
			},
			dynamic.NewProcessor(prices, logger.With().Str("processor", "dynamic").Logger()),
		},
		Validators: []cart.Validator{
			product.StockValidator{},
			rule.LineItemValidator{Logger: logger.With().Str("validator", "rule").Logger()},
		},
		Generator: cart.Generator{
			Amount: pricing.AmountCalculator{
				TaxAmount: pricing.TaxAmountCalculator{Taxes: taxes, Detector: detector},
				Detector:  detector,
			},
			Separator: delivery.StockSeparator{Prices: prices},
		},
		MaxRecalculations: deps.MaxRecalculations,
		Logger:            &logger,
		Validate:          validate,
		Now:               deps.Now,
	})
}
