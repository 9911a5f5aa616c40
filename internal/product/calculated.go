package product

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/delivery"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
)

// CalculatedProduct is a priced product position. It is goods, stackable and deliverable.
type CalculatedProduct struct {
	delivery.Information
	item  lineitem.LineItem
	price pricing.Price
	name  string
}

func (p CalculatedProduct) Identifier() string        { return p.item.Identifier }
func (p CalculatedProduct) Type() string              { return lineitem.TypeProduct }
func (p CalculatedProduct) Quantity() decimal.Decimal { return p.item.Quantity }
func (p CalculatedProduct) Price() pricing.Price      { return p.price }
func (p CalculatedProduct) LineItem() *lineitem.LineItem {
	item := p.item
	return &item
}
func (p CalculatedProduct) Name() string { return p.name }
func (CalculatedProduct) IsGoods()       {}
func (CalculatedProduct) IsStackable()   {}

// MarshalJSON encodes the product with its delivery information.
func (p CalculatedProduct) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		lineitem.View
		Name     string               `json:"name,omitempty"`
		Delivery delivery.Information `json:"delivery"`
	}{
		View:     lineitem.Describe(p),
		Name:     p.name,
		Delivery: p.Information,
	})
}
