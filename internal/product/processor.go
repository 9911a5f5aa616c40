package product

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Error keys recorded by this package.
const (
	MessageNotFound      = "product-not-found"
	MessageStockExceeded = "product-stock-exceeded"
	MessageMinPurchase   = "product-min-purchase"
	MessageMaxPurchase   = "product-max-purchase"
	MessageSoldOut       = "product-sold-out"
	DeliveryDelayed      = "product-delivery-delayed"
)

// Processor prices product line items.
type Processor struct {
	Prices pricing.PriceCalculator
	Now    func() time.Time
	Logger zerolog.Logger
}

func (p Processor) today() time.Time {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().UTC().Truncate(24 * time.Hour)
}

// Process adds a CalculatedProduct for every product item with catalog data
// and removes the ones without.
func (p Processor) Process(container *cart.Container, draft *lineitem.CalculatedCollection, data *auxdata.Collection, sc shop.Context) error {
	today := p.today()
	for _, item := range container.LineItems.FilterType(lineitem.TypeProduct).All() {
		d, ok := auxdata.Lookup[Data](data, DataKey(item.Identifier))
		if !ok {
			container.LineItems.Remove(item.Identifier)
			container.Errors.Add(cart.Warning(MessageNotFound, item.Identifier))
			p.Logger.Debug().Str("line_item", item.Identifier).Msg("product_not_found")
			continue
		}
		price, err := p.Prices.Calculate(pricing.PriceDefinition{
			Price:    d.UnitPrice(item.Quantity),
			TaxRules: pricing.NewTaxRuleCollection(pricing.NewTaxRule(d.TaxRate)),
			Quantity: item.Quantity,
		}, sc)
		if err != nil {
			return fmt.Errorf("price product %s: %w", item.Identifier, err)
		}
		draft.Add(CalculatedProduct{
			Information: d.Information(today),
			item:        item,
			price:       price,
			name:        d.Name,
		})
	}
	return nil
}
