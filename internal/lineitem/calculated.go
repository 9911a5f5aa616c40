package lineitem

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/pricing"
)

// Calculated is a priced line item.
type Calculated interface {
	Identifier() string
	Type() string
	Quantity() decimal.Decimal
	Price() pricing.Price
	// LineItem returns the originating item; nil for synthesized items.
	LineItem() *LineItem
}

// Goods marks items that are physical merchandise and count towards the goods total.
type Goods interface {
	Calculated
	IsGoods()
}

// Stackable marks items whose quantity can be changed by the customer.
type Stackable interface {
	Calculated
	IsStackable()
}

// CalculatedCollection is an insertion ordered set of calculated items keyed by identifier.
type CalculatedCollection struct {
	keys  []string
	items map[string]Calculated
}

// NewCalculatedCollection returns a collection holding items.
func NewCalculatedCollection(items ...Calculated) *CalculatedCollection {
	c := &CalculatedCollection{items: make(map[string]Calculated)}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Add inserts item, replacing an item with the same identifier.
func (c *CalculatedCollection) Add(item Calculated) {
	if c.items == nil {
		c.items = make(map[string]Calculated)
	}
	id := item.Identifier()
	if _, ok := c.items[id]; !ok {
		c.keys = append(c.keys, id)
	}
	c.items[id] = item
}

// Get returns the item with identifier.
func (c *CalculatedCollection) Get(identifier string) (Calculated, bool) {
	item, ok := c.items[identifier]
	return item, ok
}

// Has reports whether identifier is present.
func (c *CalculatedCollection) Has(identifier string) bool {
	_, ok := c.items[identifier]
	return ok
}

// Remove deletes the item with identifier.
func (c *CalculatedCollection) Remove(identifier string) {
	if _, ok := c.items[identifier]; !ok {
		return
	}
	delete(c.items, identifier)
	for i, k := range c.keys {
		if k == identifier {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			break
		}
	}
}

// HasStackable reports whether any item is Stackable.
func (c *CalculatedCollection) HasStackable() bool {
	for _, item := range c.items {
		if _, ok := item.(Stackable); ok {
			return true
		}
	}
	return false
}

// Identifiers returns the identifiers in insertion order.
func (c *CalculatedCollection) Identifiers() []string {
	return append([]string(nil), c.keys...)
}

// Prices returns the price of every item in insertion order.
func (c *CalculatedCollection) Prices() pricing.PriceCollection {
	out := make(pricing.PriceCollection, 0, len(c.keys))
	for _, item := range c.All() {
		out = append(out, item.Price())
	}
	return out
}

// Filter returns the items accepted by keep.
func (c *CalculatedCollection) Filter(keep func(Calculated) bool) *CalculatedCollection {
	out := NewCalculatedCollection()
	for _, item := range c.All() {
		if keep(item) {
			out.Add(item)
		}
	}
	return out
}

// Clone returns a collection holding the same items.
func (c *CalculatedCollection) Clone() *CalculatedCollection {
	return NewCalculatedCollection(c.All()...)
}

// FilterGoods returns the Goods items.
func (c *CalculatedCollection) FilterGoods() *CalculatedCollection {
	return c.Filter(func(item Calculated) bool {
		_, ok := item.(Goods)
		return ok
	})
}

// Len returns the number of items.
func (c *CalculatedCollection) Len() int { return len(c.keys) }

// All returns the items in insertion order.
func (c *CalculatedCollection) All() []Calculated {
	out := make([]Calculated, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.items[k])
	}
	return out
}

// MarshalJSON encodes the items as an array.
func (c *CalculatedCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}

// View is the presentation shape shared by calculated items.
type View struct {
	Identifier string          `json:"identifier"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      pricing.Price   `json:"price"`
	LineItem   *LineItem       `json:"lineItem,omitempty"`
}

// Describe returns the presentation shape of item.
func Describe(item Calculated) View {
	return View{
		Identifier: item.Identifier(),
		Type:       item.Type(),
		Quantity:   item.Quantity(),
		Price:      item.Price(),
		LineItem:   item.LineItem(),
	}
}
