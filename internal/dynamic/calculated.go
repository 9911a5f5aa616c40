// Package dynamic adds line items the shop derives from the cart itself:
// customer group discounts and surcharges.
package dynamic

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
)

// CalculatedItem is a discount or surcharge computed from other prices.
type CalculatedItem struct {
	item  lineitem.LineItem
	price pricing.Price
	label string
}

// NewCalculatedItem returns a calculated item of typ.
func NewCalculatedItem(identifier, typ, label string, price pricing.Price) CalculatedItem {
	return CalculatedItem{
		item:  lineitem.New(identifier, typ, decimal.NewFromInt(1)),
		price: price,
		label: label,
	}
}

func (c CalculatedItem) Identifier() string        { return c.item.Identifier }
func (c CalculatedItem) Type() string              { return c.item.Type }
func (c CalculatedItem) Quantity() decimal.Decimal { return c.item.Quantity }
func (c CalculatedItem) Price() pricing.Price      { return c.price }
func (c CalculatedItem) Label() string             { return c.label }

func (c CalculatedItem) LineItem() *lineitem.LineItem {
	item := c.item
	return &item
}

// MarshalJSON encodes the item with its label.
func (c CalculatedItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		lineitem.View
		Label string `json:"label"`
	}{View: lineitem.Describe(c), Label: c.label})
}
