// Package pricing turns price definitions into prices and splits taxes for
// carts. All amounts are decimals rounded to two places, half away from zero,
// once at the end of every multiplication or division chain.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places money is rounded to.
const Precision int32 = 2

var (
	// ErrNegativeTaxRate is returned when a tax rule carries a rate below zero.
	ErrNegativeTaxRate = errors.New("pricing: negative tax rate")
	// ErrNegativeQuantity is returned when a price definition has a quantity below zero.
	ErrNegativeQuantity = errors.New("pricing: negative quantity")
)

var hundred = decimal.NewFromInt(100)

// Round applies the money rounding policy.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Precision)
}

func rateKey(rate decimal.Decimal) string {
	return rate.String()
}
