// Package lineitem holds the mutable line items of a cart and the collections
// of calculated items produced from them.
package lineitem

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Well known line item types.
const (
	TypeProduct   = "product"
	TypeVoucher   = "voucher"
	TypeDiscount  = "discount"
	TypeSurcharge = "surcharge"
)

// LineItem is a requested cart position before pricing.
type LineItem struct {
	Identifier string          `json:"identifier" validate:"required"`
	Type       string          `json:"type" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gte=0"`
	Payload    map[string]any  `json:"payload,omitempty"`
}

// New builds a line item without payload.
func New(identifier, typ string, quantity decimal.Decimal) LineItem {
	return LineItem{Identifier: identifier, Type: typ, Quantity: quantity}
}

// PayloadString returns a string payload entry.
func (li LineItem) PayloadString(key string) (string, bool) {
	v, ok := li.Payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// NewValidator returns a validator that understands decimal quantities.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if dec, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := dec.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}
