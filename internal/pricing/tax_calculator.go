package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/shop"
)

// TaxCalculator computes taxes for a price under a set of tax rules.
type TaxCalculator struct{}

// CalculateGross converts a net price into a rounded gross price.
func (t TaxCalculator) CalculateGross(net decimal.Decimal, rules TaxRuleCollection) decimal.Decimal {
	taxes := t.CalculateNetTaxes(net, rules)
	return Round(net.Add(taxes.Amount()))
}

// CalculateGrossTaxes extracts the taxes contained in a gross price.
func (TaxCalculator) CalculateGrossTaxes(gross decimal.Decimal, rules TaxRuleCollection) CalculatedTaxCollection {
	out := CalculatedTaxCollection{}
	for _, r := range rules.All() {
		part := gross.Mul(r.Percentage).Div(hundred)
		tax := part.Div(hundred.Add(r.Rate)).Mul(r.Rate)
		out = out.merged(CalculatedTax{TaxRate: r.Rate, Tax: Round(tax), Price: Round(part)})
	}
	return out
}

// CalculateNetTaxes computes the taxes owed on top of a net price.
func (TaxCalculator) CalculateNetTaxes(net decimal.Decimal, rules TaxRuleCollection) CalculatedTaxCollection {
	out := CalculatedTaxCollection{}
	for _, r := range rules.All() {
		part := net.Mul(r.Percentage).Div(hundred)
		tax := part.Mul(r.Rate).Div(hundred)
		out = out.merged(CalculatedTax{TaxRate: r.Rate, Tax: Round(tax), Price: Round(part)})
	}
	return out
}

// PercentageTaxRuleBuilder derives proportional tax rules from calculated taxes.
type PercentageTaxRuleBuilder struct{}

// BuildRules returns one rule per rate weighted by the rate's share of price.
// Rates without a share are left out.
func (PercentageTaxRuleBuilder) BuildRules(price Price) TaxRuleCollection {
	out := TaxRuleCollection{}
	if price.TotalPrice.IsZero() {
		return out
	}
	for _, tax := range price.CalculatedTaxes.All() {
		share := tax.Price.Div(price.TotalPrice).Mul(hundred)
		if share.IsZero() {
			continue
		}
		out = out.With(NewPercentageTaxRule(tax.TaxRate, share))
	}
	return out
}

// BuildCollectionRules builds rules from the total of a price collection.
func (b PercentageTaxRuleBuilder) BuildCollectionRules(prices PriceCollection) TaxRuleCollection {
	return b.BuildRules(prices.TotalPrice())
}

// TaxAmountCalculator derives the cart level tax collection.
type TaxAmountCalculator struct {
	Rules    PercentageTaxRuleBuilder
	Taxes    TaxCalculator
	Detector shop.TaxDetector
}

// Calculate returns the cart taxes for prices under the context's tax strategy.
func (c TaxAmountCalculator) Calculate(prices PriceCollection, ctx shop.Context) CalculatedTaxCollection {
	if c.Detector.IsNetDelivery(ctx) {
		return CalculatedTaxCollection{}
	}
	if ctx.TaxCalculation() == shop.TaxVertical {
		return prices.CalculatedTaxes()
	}
	total := prices.TotalPrice()
	rules := c.Rules.BuildRules(total)
	if c.Detector.UseGross(ctx) {
		return c.Taxes.CalculateGrossTaxes(total.TotalPrice, rules)
	}
	return c.Taxes.CalculateNetTaxes(total.TotalPrice, rules)
}
