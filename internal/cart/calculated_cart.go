package cart

import (
	"encoding/json"

	"github.com/noah-isme/toko-cart/internal/delivery"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
)

// CalculatedCart is the result of a calculation pass. It holds copies of the
// calculated items and of the container errors taken when the pass finished;
// later changes to the container do not reach it.
type CalculatedCart struct {
	container  *Container
	token      string
	name       string
	items      *lineitem.CalculatedCollection
	price      pricing.CartPrice
	deliveries delivery.Collection
	errors     *ErrorCollection
}

// Container returns the container the cart was calculated from.
func (c *CalculatedCart) Container() *Container { return c.container }

// Token returns the container token.
func (c *CalculatedCart) Token() string { return c.token }

// Name returns the container name.
func (c *CalculatedCart) Name() string { return c.name }

// LineItems returns a copy of the calculated items.
func (c *CalculatedCart) LineItems() *lineitem.CalculatedCollection { return c.items.Clone() }

// Price returns the aggregated cart price.
func (c *CalculatedCart) Price() pricing.CartPrice { return c.price }

// Deliveries returns the deliveries.
func (c *CalculatedCart) Deliveries() delivery.Collection { return c.deliveries }

// Errors returns a copy of the errors recorded for the calculation.
func (c *CalculatedCart) Errors() *ErrorCollection { return c.errors.Clone() }

// Blocking reports whether an error level entry prevents checkout.
func (c *CalculatedCart) Blocking() bool { return c.errors.HasLevel(LevelError) }

// captureErrors replaces the error snapshot with the current container errors.
func (c *CalculatedCart) captureErrors() { c.errors = c.container.Errors.Clone() }

// MarshalJSON encodes the cart for the presentation layer.
func (c *CalculatedCart) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Token      string                         `json:"token"`
		Name       string                         `json:"name"`
		LineItems  *lineitem.CalculatedCollection `json:"lineItems"`
		Price      pricing.CartPrice              `json:"price"`
		Deliveries delivery.Collection            `json:"deliveries"`
		Errors     *ErrorCollection               `json:"errors"`
	}{
		Token:      c.Token(),
		Name:       c.Name(),
		LineItems:  c.items,
		Price:      c.price,
		Deliveries: c.deliveries,
		Errors:     c.errors,
	})
}
