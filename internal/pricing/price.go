package pricing

import "github.com/shopspring/decimal"

// PriceDefinition is the input of a price calculation. When IsCalculated is
// false Price is a net base currency catalog price; otherwise it is already a
// final unit price in the context's presentation mode.
type PriceDefinition struct {
	Price        decimal.Decimal
	TaxRules     TaxRuleCollection
	Quantity     decimal.Decimal
	IsCalculated bool
}

// Price is a calculated unit and total price with its taxes.
type Price struct {
	UnitPrice       decimal.Decimal         `json:"unitPrice"`
	Quantity        decimal.Decimal         `json:"quantity"`
	TotalPrice      decimal.Decimal         `json:"totalPrice"`
	CalculatedTaxes CalculatedTaxCollection `json:"calculatedTaxes"`
	TaxRules        TaxRuleCollection       `json:"taxRules"`
}

// PriceCollection is an ordered list of prices.
type PriceCollection []Price

// Sum returns the sum of all total prices.
func (c PriceCollection) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range c {
		sum = sum.Add(p.TotalPrice)
	}
	return sum
}

// CalculatedTaxes merges the taxes of all prices.
func (c PriceCollection) CalculatedTaxes() CalculatedTaxCollection {
	out := CalculatedTaxCollection{}
	for _, p := range c {
		out = out.Merge(p.CalculatedTaxes)
	}
	return out
}

// TaxRules merges the tax rules of all prices.
func (c PriceCollection) TaxRules() TaxRuleCollection {
	out := TaxRuleCollection{}
	for _, p := range c {
		out = out.Merge(p.TaxRules)
	}
	return out
}

// TotalPrice collapses the collection into a single price of quantity one.
func (c PriceCollection) TotalPrice() Price {
	sum := c.Sum()
	return Price{
		UnitPrice:       sum,
		Quantity:        decimal.NewFromInt(1),
		TotalPrice:      sum,
		CalculatedTaxes: c.CalculatedTaxes(),
		TaxRules:        c.TaxRules(),
	}
}

// CartPrice is the aggregated price of a calculated cart.
type CartPrice struct {
	NetPrice        decimal.Decimal         `json:"netPrice"`
	TotalPrice      decimal.Decimal         `json:"totalPrice"`
	CalculatedTaxes CalculatedTaxCollection `json:"calculatedTaxes"`
	TaxRules        TaxRuleCollection       `json:"taxRules"`
}
