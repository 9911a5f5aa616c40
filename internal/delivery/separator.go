package delivery

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// ErrQuantityMismatch is returned when separated positions do not add up to the item quantity.
var ErrQuantityMismatch = errors.New("delivery: separated quantity does not match item quantity")

// StockSeparator assigns deliverable items to deliveries, splitting quantities
// that exceed the available stock into a later shipment.
type StockSeparator struct {
	Prices pricing.PriceCalculator
}

// AddItemsToDeliveries returns a copy of deliveries extended with every
// deliverable item of items not yet contained.
func (s StockSeparator) AddItemsToDeliveries(deliveries Collection, items *lineitem.CalculatedCollection, ctx shop.Context) (Collection, error) {
	out := deliveries.Clone()
	location := ctx.ShippingLocation
	method := ctx.ShippingMethod

	for _, calculated := range items.All() {
		item, ok := calculated.(Deliverable)
		if !ok || out.Contains(item) {
			continue
		}

		quantity := item.Quantity()
		stock := item.Stock()
		inStock := item.InStockDeliveryDate()
		outOfStock := item.OutOfStockDeliveryDate()

		switch {
		case stock.GreaterThanOrEqual(quantity):
			out.add(position(item, quantity, item.Price(), inStock), location, method)
		case !stock.IsPositive():
			out.add(position(item, quantity, item.Price(), outOfStock), location, method)
		case inStock.Equal(outOfStock):
			// Partial stock with identical windows: both halves would land in the
			// same delivery, so the item stays one position at its full quantity.
			out.add(position(item, quantity, item.Price(), inStock), location, method)
		default:
			available, err := s.reprice(item, stock, inStock, ctx)
			if err != nil {
				return Collection{}, err
			}
			out.add(available, location, method)

			delayed, err := s.reprice(item, quantity.Sub(stock), outOfStock, ctx)
			if err != nil {
				return Collection{}, err
			}
			out.add(delayed, location, method)
		}

		if shipped := out.QuantityOf(item.Identifier()); !shipped.Equal(quantity) {
			return Collection{}, fmt.Errorf("%w: %s shipped %s of %s", ErrQuantityMismatch, item.Identifier(), shipped, quantity)
		}
	}
	return out, nil
}

func (s StockSeparator) reprice(item Deliverable, quantity decimal.Decimal, date Date, ctx shop.Context) (Position, error) {
	price := item.Price()
	repriced, err := s.Prices.Calculate(pricing.PriceDefinition{
		Price:        price.UnitPrice,
		TaxRules:     price.TaxRules,
		Quantity:     quantity,
		IsCalculated: true,
	}, ctx)
	if err != nil {
		return Position{}, fmt.Errorf("reprice %s: %w", item.Identifier(), err)
	}
	return position(item, quantity, repriced, date), nil
}

func position(item Deliverable, quantity decimal.Decimal, price pricing.Price, date Date) Position {
	return Position{
		Identifier: item.Identifier(),
		Item:       item,
		Quantity:   quantity,
		Price:      price,
		Date:       date,
	}
}
