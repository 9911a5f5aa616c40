// Package cart calculates carts: it runs collectors, processors and validators
// over a container of line items and assembles the calculated cart.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/toko-cart/internal/lineitem"
)

// Container is the mutable cart: requested line items plus the errors of the
// last calculation. Items with equal identifiers stack.
type Container struct {
	Token     string
	Name      string
	LineItems *lineitem.Collection
	Errors    *ErrorCollection
}

// NewContainer returns an empty container with a fresh token.
func NewContainer(name string) *Container {
	return &Container{
		Token:     uuid.NewString(),
		Name:      name,
		LineItems: lineitem.NewCollection(lineitem.PolicyStack),
		Errors:    &ErrorCollection{},
	}
}

// Clone returns an independent copy.
func (c *Container) Clone() *Container {
	out := &Container{Token: c.Token, Name: c.Name, Errors: c.Errors.Clone()}
	if c.LineItems != nil {
		out.LineItems = c.LineItems.Clone()
	} else {
		out.LineItems = lineitem.NewCollection(lineitem.PolicyStack)
	}
	return out
}

// Validate checks every line item against its struct constraints.
func (c *Container) Validate(v *validator.Validate) error {
	if c.LineItems == nil {
		c.LineItems = lineitem.NewCollection(lineitem.PolicyStack)
	}
	if c.Errors == nil {
		c.Errors = &ErrorCollection{}
	}
	for _, item := range c.LineItems.All() {
		if err := v.Struct(item); err != nil {
			return fmt.Errorf("%w: line item %q: %v", ErrInvalidContainer, item.Identifier, err)
		}
	}
	return nil
}

type containerJSON struct {
	Token     string               `json:"token"`
	Name      string               `json:"name"`
	LineItems *lineitem.Collection `json:"lineItems"`
	Errors    *ErrorCollection     `json:"errors"`
}

// MarshalJSON encodes the container.
func (c *Container) MarshalJSON() ([]byte, error) {
	return json.Marshal(containerJSON{Token: c.Token, Name: c.Name, LineItems: c.LineItems, Errors: c.Errors})
}

// UnmarshalJSON decodes a container; a missing token is generated.
func (c *Container) UnmarshalJSON(data []byte) error {
	raw := containerJSON{
		LineItems: lineitem.NewCollection(lineitem.PolicyStack),
		Errors:    &ErrorCollection{},
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Token == "" {
		raw.Token = uuid.NewString()
	}
	if raw.LineItems == nil {
		raw.LineItems = lineitem.NewCollection(lineitem.PolicyStack)
	}
	if raw.Errors == nil {
		raw.Errors = &ErrorCollection{}
	}
	*c = Container{Token: raw.Token, Name: raw.Name, LineItems: raw.LineItems, Errors: raw.Errors}
	return nil
}
