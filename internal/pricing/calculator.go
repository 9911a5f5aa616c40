package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/shop"
)

// PriceCalculator prices a definition for a context.
type PriceCalculator struct {
	Taxes    TaxCalculator
	Detector shop.TaxDetector
}

// Calculate returns the price of def. A zero quantity yields a zero total.
func (c PriceCalculator) Calculate(def PriceDefinition, ctx shop.Context) (Price, error) {
	if err := def.TaxRules.validate(); err != nil {
		return Price{}, err
	}
	if def.Quantity.IsNegative() {
		return Price{}, fmt.Errorf("%w: %s", ErrNegativeQuantity, def.Quantity)
	}
	unit := c.unitPrice(def, ctx)
	if def.Quantity.IsZero() {
		return Price{
			UnitPrice:  unit,
			Quantity:   decimal.Zero,
			TotalPrice: decimal.Zero,
			TaxRules:   def.TaxRules,
		}, nil
	}
	total := Round(unit.Mul(def.Quantity))

	var taxes CalculatedTaxCollection
	switch {
	case c.Detector.IsNetDelivery(ctx):
		taxes = CalculatedTaxCollection{}
	case c.Detector.UseGross(ctx):
		taxes = c.Taxes.CalculateGrossTaxes(total, def.TaxRules)
	default:
		taxes = c.Taxes.CalculateNetTaxes(total, def.TaxRules)
	}
	return Price{
		UnitPrice:       unit,
		Quantity:        def.Quantity,
		TotalPrice:      total,
		CalculatedTaxes: taxes,
		TaxRules:        def.TaxRules,
	}, nil
}

func (c PriceCalculator) unitPrice(def PriceDefinition, ctx shop.Context) decimal.Decimal {
	price := def.Price
	if def.IsCalculated {
		return Round(price)
	}
	price = price.Mul(ctx.CurrencyFactor())
	if c.Detector.UseGross(ctx) && !c.Detector.IsNetDelivery(ctx) {
		return c.Taxes.CalculateGross(price, def.TaxRules)
	}
	return Round(price)
}

// AmountCalculator aggregates line item prices into a cart price.
type AmountCalculator struct {
	TaxAmount TaxAmountCalculator
	Detector  shop.TaxDetector
}

// Calculate returns the cart price for prices.
func (c AmountCalculator) Calculate(prices PriceCollection, ctx shop.Context) CartPrice {
	total := prices.Sum()
	rules := prices.TaxRules()
	if c.Detector.IsNetDelivery(ctx) {
		return CartPrice{NetPrice: total, TotalPrice: total, TaxRules: rules}
	}
	taxes := c.TaxAmount.Calculate(prices, ctx)
	if c.Detector.UseGross(ctx) {
		return CartPrice{
			NetPrice:        Round(total.Sub(taxes.Amount())),
			TotalPrice:      total,
			CalculatedTaxes: taxes,
			TaxRules:        rules,
		}
	}
	return CartPrice{
		NetPrice:        total,
		TotalPrice:      Round(total.Add(taxes.Amount())),
		CalculatedTaxes: taxes,
		TaxRules:        rules,
	}
}

// PercentagePriceCalculator prices a share of other prices, such as a
// percentage voucher or surcharge, with proportional tax rules.
type PercentagePriceCalculator struct {
	Prices PriceCalculator
	Rules  PercentageTaxRuleBuilder
}

// Calculate returns percentage percent of the total of prices.
func (c PercentagePriceCalculator) Calculate(percentage decimal.Decimal, prices PriceCollection, ctx shop.Context) (Price, error) {
	total := prices.TotalPrice()
	amount := Round(total.TotalPrice.Div(hundred).Mul(percentage))
	return c.Prices.Calculate(PriceDefinition{
		Price:        amount,
		TaxRules:     c.Rules.BuildRules(total),
		Quantity:     decimal.NewFromInt(1),
		IsCalculated: true,
	}, ctx)
}

// AbsolutePriceCalculator prices a fixed amount taxed proportionally to other prices.
type AbsolutePriceCalculator struct {
	Prices PriceCalculator
	Rules  PercentageTaxRuleBuilder
}

// Calculate returns a price of amount with the tax rule shares of prices.
func (c AbsolutePriceCalculator) Calculate(amount decimal.Decimal, prices PriceCollection, ctx shop.Context) (Price, error) {
	return c.Prices.Calculate(PriceDefinition{
		Price:        amount,
		TaxRules:     c.Rules.BuildCollectionRules(prices),
		Quantity:     decimal.NewFromInt(1),
		IsCalculated: true,
	}, ctx)
}
