package shop

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// TaxCalculation selects how cart level taxes are derived from line item prices.
type TaxCalculation string

const (
	// TaxHorizontal re-splits the cart total into tax buckets proportional to each rate's share.
	TaxHorizontal TaxCalculation = "horizontal"
	// TaxVertical sums the taxes already calculated on every line item.
	TaxVertical TaxCalculation = "vertical"
)

// Shop describes the sales channel a cart is calculated for.
type Shop struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	TaxCalculation TaxCalculation `json:"taxCalculation"`
}

// Currency is the currency prices are presented in. Factor converts base currency prices.
type Currency struct {
	ID     int             `json:"id"`
	ISO    string          `json:"iso"`
	Factor decimal.Decimal `json:"factor"`
}

// GroupDiscount grants Percentage off the goods total once Threshold is reached.
type GroupDiscount struct {
	Threshold  decimal.Decimal `json:"threshold"`
	Percentage decimal.Decimal `json:"percentage"`
}

// CustomerGroup carries the price display mode and group specific surcharges/discounts.
type CustomerGroup struct {
	ID                    int             `json:"id"`
	Key                   string          `json:"key"`
	DisplayGross          bool            `json:"displayGross"`
	UseDiscount           bool            `json:"useDiscount"`
	Discounts             []GroupDiscount `json:"discounts"`
	MinimumOrderValue     decimal.Decimal `json:"minimumOrderValue"`
	MinimumOrderSurcharge decimal.Decimal `json:"minimumOrderSurcharge"`
}

// Customer is the logged in customer, if any.
type Customer struct {
	ID        int    `json:"id"`
	Number    string `json:"number"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	VatID     string `json:"vatId"`
}

// PaymentMethod is the selected payment method with its surcharges.
type PaymentMethod struct {
	ID                  int             `json:"id"`
	Name                string          `json:"name"`
	Surcharge           decimal.Decimal `json:"surcharge"`
	PercentageSurcharge decimal.Decimal `json:"percentageSurcharge"`
}

// ShippingMethod is the dispatch method used for new deliveries.
type ShippingMethod struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Context is the plain data snapshot a cart is calculated against.
type Context struct {
	Shop             Shop             `json:"shop"`
	Currency         Currency         `json:"currency"`
	CustomerGroup    CustomerGroup    `json:"customerGroup"`
	Customer         *Customer        `json:"customer,omitempty"`
	ShippingLocation ShippingLocation `json:"shippingLocation"`
	ShippingMethod   ShippingMethod   `json:"shippingMethod"`
	PaymentMethod    *PaymentMethod   `json:"paymentMethod,omitempty"`
}

// CurrencyFactor returns the conversion factor, treating an unset factor as 1.
func (c Context) CurrencyFactor() decimal.Decimal {
	if c.Currency.Factor.IsZero() || c.Currency.Factor.IsNegative() {
		return decimal.NewFromInt(1)
	}
	return c.Currency.Factor
}

// TaxCalculation returns the configured strategy, defaulting to horizontal.
func (c Context) TaxCalculation() TaxCalculation {
	if c.Shop.TaxCalculation == TaxVertical {
		return TaxVertical
	}
	return TaxHorizontal
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
