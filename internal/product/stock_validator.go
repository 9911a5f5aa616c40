package product

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// StockValidator keeps product quantities within purchase limits and, for
// last-stock products, within the available stock.
type StockValidator struct{}

// Validate implements cart.Validator.
func (StockValidator) Validate(calculated *cart.CalculatedCart, _ shop.Context, data *auxdata.Collection) (bool, error) {
	container := calculated.Container()
	valid := true
	for _, item := range calculated.LineItems().All() {
		p, ok := item.(CalculatedProduct)
		if !ok {
			continue
		}
		d, ok := auxdata.Lookup[Data](data, DataKey(p.Identifier()))
		if !ok {
			continue
		}
		requested := p.Quantity()
		target, errs := d.allowedQuantity(p.Identifier(), requested)
		if target.Equal(requested) {
			if d.Stock.LessThan(requested) {
				container.Errors.Add(cart.Warning(DeliveryDelayed, fmt.Sprintf("%s: %s of %s available now", p.Identifier(), maxZero(d.Stock), requested)))
			}
			continue
		}
		container.Errors.Add(errs...)
		valid = false
		if !target.IsPositive() {
			container.LineItems.Remove(p.Identifier())
			continue
		}
		li, _ := container.LineItems.Get(p.Identifier())
		li.Quantity = target
		container.LineItems.Set(li)
	}
	return valid, nil
}

func (d Data) allowedQuantity(id string, requested decimal.Decimal) (decimal.Decimal, []cart.Error) {
	target := requested
	var errs []cart.Error
	adjusted := func(key string) {
		errs = append(errs, cart.Warning(key, fmt.Sprintf("%s: quantity adjusted from %s to %s", id, requested, target)))
	}
	if d.MinPurchase.IsPositive() && target.LessThan(d.MinPurchase) {
		target = d.MinPurchase
		adjusted(MessageMinPurchase)
	}
	if d.MaxPurchase.IsPositive() && target.GreaterThan(d.MaxPurchase) {
		target = d.MaxPurchase
		adjusted(MessageMaxPurchase)
	}
	if d.LastStock && target.GreaterThan(d.Stock) {
		target = maxZero(d.Stock)
		if d.MinPurchase.IsPositive() && target.LessThan(d.MinPurchase) {
			target = decimal.Zero
		}
		if target.IsZero() {
			errs = append(errs, cart.Warning(MessageSoldOut, id))
		} else {
			adjusted(MessageStockExceeded)
		}
	}
	return target, errs
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
