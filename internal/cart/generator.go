package cart

import (
	"fmt"

	"github.com/noah-isme/toko-cart/internal/delivery"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Generator assembles calculated carts.
type Generator struct {
	Amount    pricing.AmountCalculator
	Separator delivery.StockSeparator
}

// Create prices and splits items into a calculated cart for container.
func (g Generator) Create(container *Container, items *lineitem.CalculatedCollection, sc shop.Context) (*CalculatedCart, error) {
	deliveries, err := g.Separator.AddItemsToDeliveries(delivery.NewCollection(), items, sc)
	if err != nil {
		return nil, fmt.Errorf("separate deliveries: %w", err)
	}
	calculated := &CalculatedCart{
		container:  container,
		token:      container.Token,
		name:       container.Name,
		items:      items.Clone(),
		price:      g.Amount.Calculate(items.Prices(), sc),
		deliveries: deliveries,
	}
	calculated.captureErrors()
	return calculated, nil
}
