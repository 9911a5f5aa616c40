// Package product prices product line items from catalog data and keeps cart
// quantities within stock and purchase limits.
package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/delivery"
)

// DataKeyPrefix prefixes the auxiliary data key of a product.
const DataKeyPrefix = "product."

// DataKey returns the auxiliary data key of the product number.
func DataKey(number string) string { return DataKeyPrefix + number }

// PriceTier is a graduated net unit price applying from quantity From.
type PriceTier struct {
	From  decimal.Decimal `json:"from"`
	Price decimal.Decimal `json:"price"`
}

// DayRange is a delivery window in days from today.
type DayRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r DayRange) orDefault(min, max int) DayRange {
	if r.Min <= 0 && r.Max <= 0 {
		return DayRange{Min: min, Max: max}
	}
	if r.Max < r.Min {
		r.Max = r.Min
	}
	return r
}

// Data is the catalog information a product line item is priced from.
// Prices are net amounts in the shop's base currency.
type Data struct {
	Number       string          `json:"number"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Tiers        []PriceTier     `json:"tiers,omitempty"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	Stock        decimal.Decimal `json:"stock"`
	Weight       decimal.Decimal `json:"weight"`
	ShippingDays DayRange        `json:"shippingDays"`
	RestockDays  DayRange        `json:"restockDays"`
	LastStock    bool            `json:"lastStock"`
	MinPurchase  decimal.Decimal `json:"minPurchase"`
	MaxPurchase  decimal.Decimal `json:"maxPurchase"`
}

// DataKey implements auxdata.Keyed.
func (d Data) DataKey() string { return DataKey(d.Number) }

// UnitPrice returns the net unit price for quantity, honouring the highest
// tier whose From does not exceed quantity.
func (d Data) UnitPrice(quantity decimal.Decimal) decimal.Decimal {
	price := d.Price
	best := decimal.Zero
	for _, tier := range d.Tiers {
		if tier.From.LessThanOrEqual(quantity) && tier.From.GreaterThanOrEqual(best) {
			best = tier.From
			price = tier.Price
		}
	}
	return price
}

// Information returns the delivery information relative to today.
func (d Data) Information(today time.Time) delivery.Information {
	shipping := d.ShippingDays.orDefault(1, 3)
	restock := d.RestockDays.orDefault(5, 10)
	return delivery.Information{
		StockQuantity:  d.Stock,
		ItemWeight:     d.Weight,
		InStockDate:    delivery.NewDate(today, shipping.Min, shipping.Max),
		OutOfStockDate: delivery.NewDate(today, restock.Min, restock.Max),
	}
}
