package dynamic

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Identifiers of the items produced by the default gateways.
const (
	CustomerGroupDiscountID      = "customer-group-discount"
	MinimumOrderSurchargeID      = "minimum-order-surcharge"
	PaymentSurchargeID           = "payment-surcharge"
	PaymentPercentageSurchargeID = "payment-surcharge-percentage"
)

// Gateway derives zero or more items from the goods prices of the draft.
type Gateway interface {
	Items(goods pricing.PriceCollection, sc shop.Context) ([]CalculatedItem, error)
}

// CustomerGroupDiscount grants the discount of the highest group threshold
// the goods total reaches.
type CustomerGroupDiscount struct {
	Percentage pricing.PercentagePriceCalculator
}

// Items implements Gateway.
func (g CustomerGroupDiscount) Items(goods pricing.PriceCollection, sc shop.Context) ([]CalculatedItem, error) {
	group := sc.CustomerGroup
	if !group.UseDiscount || len(group.Discounts) == 0 {
		return nil, nil
	}
	total := goods.Sum()
	var best *shop.GroupDiscount
	for i := range group.Discounts {
		discount := &group.Discounts[i]
		if total.LessThan(discount.Threshold.Mul(sc.CurrencyFactor())) {
			continue
		}
		if best == nil || discount.Threshold.GreaterThan(best.Threshold) {
			best = discount
		}
	}
	if best == nil || !best.Percentage.IsPositive() {
		return nil, nil
	}
	price, err := g.Percentage.Calculate(best.Percentage.Neg(), goods, sc)
	if err != nil {
		return nil, err
	}
	return []CalculatedItem{NewCalculatedItem(CustomerGroupDiscountID, lineitem.TypeDiscount, "Customer group discount", price)}, nil
}

// MinimumOrderSurcharge charges the group surcharge while the goods total is
// below the group's minimum order value.
type MinimumOrderSurcharge struct {
	Absolute pricing.AbsolutePriceCalculator
}

// Items implements Gateway.
func (g MinimumOrderSurcharge) Items(goods pricing.PriceCollection, sc shop.Context) ([]CalculatedItem, error) {
	group := sc.CustomerGroup
	factor := sc.CurrencyFactor()
	if !group.MinimumOrderSurcharge.IsPositive() || !goods.Sum().LessThan(group.MinimumOrderValue.Mul(factor)) {
		return nil, nil
	}
	price, err := g.Absolute.Calculate(pricing.Round(group.MinimumOrderSurcharge.Mul(factor)), goods, sc)
	if err != nil {
		return nil, err
	}
	return []CalculatedItem{NewCalculatedItem(MinimumOrderSurchargeID, lineitem.TypeSurcharge, "Minimum order surcharge", price)}, nil
}

// PaymentSurcharge charges the absolute and percentage surcharges of the
// selected payment method.
type PaymentSurcharge struct {
	Absolute   pricing.AbsolutePriceCalculator
	Percentage pricing.PercentagePriceCalculator
}

// Items implements Gateway.
func (g PaymentSurcharge) Items(goods pricing.PriceCollection, sc shop.Context) ([]CalculatedItem, error) {
	payment := sc.PaymentMethod
	if payment == nil {
		return nil, nil
	}
	var items []CalculatedItem
	if !payment.Surcharge.IsZero() {
		price, err := g.Absolute.Calculate(pricing.Round(payment.Surcharge.Mul(sc.CurrencyFactor())), goods, sc)
		if err != nil {
			return nil, err
		}
		items = append(items, NewCalculatedItem(PaymentSurchargeID, surchargeType(payment.Surcharge), payment.Name, price))
	}
	if !payment.PercentageSurcharge.IsZero() {
		price, err := g.Percentage.Calculate(payment.PercentageSurcharge, goods, sc)
		if err != nil {
			return nil, err
		}
		items = append(items, NewCalculatedItem(PaymentPercentageSurchargeID, surchargeType(payment.PercentageSurcharge), payment.Name, price))
	}
	return items, nil
}

// surchargeType reports negative payment surcharges as discounts.
func surchargeType(v decimal.Decimal) string {
	if v.IsNegative() {
		return lineitem.TypeDiscount
	}
	return lineitem.TypeSurcharge
}
