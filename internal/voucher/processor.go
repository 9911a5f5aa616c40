package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Error keys recorded by this package.
const (
	MessageNotFound    = "voucher-not-found"
	MessageNotEligible = "voucher-not-eligible"
)

// PayloadCode is the payload key holding the voucher code.
const PayloadCode = "code"

// NewLineItem returns the line item requesting code.
func NewLineItem(code string) lineitem.LineItem {
	return lineitem.LineItem{
		Identifier: code,
		Type:       lineitem.TypeVoucher,
		Quantity:   decimal.NewFromInt(1),
		Payload:    map[string]any{PayloadCode: code},
	}
}

// Code returns the voucher code requested by item.
func Code(item lineitem.LineItem) string {
	if code, ok := item.PayloadString(PayloadCode); ok && strings.TrimSpace(code) != "" {
		return strings.TrimSpace(code)
	}
	return item.Identifier
}

// Processor prices voucher line items against the goods already in the draft.
// It must run after the goods processors.
type Processor struct {
	Prices     pricing.PriceCalculator
	Percentage pricing.PercentagePriceCalculator
	Absolute   pricing.AbsolutePriceCalculator
	Now        func() time.Time
	Logger     zerolog.Logger
}

func (p Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Process adds a CalculatedVoucher for every applicable voucher item. Unknown
// or ineligible vouchers are removed from the container with a warning.
func (p Processor) Process(container *cart.Container, draft *lineitem.CalculatedCollection, data *auxdata.Collection, sc shop.Context) error {
	vouchers := container.LineItems.FilterType(lineitem.TypeVoucher)
	if vouchers.Len() == 0 {
		return nil
	}
	goods := draft.FilterGoods()
	if goods.Len() == 0 {
		return nil
	}
	now := p.now()
	for _, item := range vouchers.All() {
		code := Code(item)
		d, ok := auxdata.Lookup[Data](data, DataKey(code))
		if !ok {
			p.reject(container, item, cart.Warning(MessageNotFound, code))
			continue
		}
		eligible := d.EligibleGoods(goods)
		if eligible.Len() == 0 {
			p.reject(container, item, cart.Warning(MessageNotEligible, fmt.Sprintf("%s: %s", code, ErrNotEligible)))
			continue
		}
		if err := d.Validate(now, eligible.Prices().Sum()); err != nil {
			p.reject(container, item, cart.Warning(MessageNotEligible, fmt.Sprintf("%s: %s", code, err)))
			continue
		}
		price, err := p.price(d, eligible.Prices(), sc)
		if err != nil {
			return fmt.Errorf("price voucher %s: %w", code, err)
		}
		draft.Add(CalculatedVoucher{item: item, price: price, code: code, eligibility: d.EligibilityRule()})
	}
	return nil
}

func (p Processor) price(d Data, eligible pricing.PriceCollection, sc shop.Context) (pricing.Price, error) {
	if d.Mode == ModePercentage {
		return p.Percentage.Calculate(d.Value.Neg(), eligible, sc)
	}
	amount := Compute(eligible.Sum(), Data{Mode: ModeAbsolute, Value: d.Value.Mul(sc.CurrencyFactor())})
	if d.TaxRate != nil {
		return p.Prices.Calculate(pricing.PriceDefinition{
			Price:        amount.Neg(),
			TaxRules:     pricing.NewTaxRuleCollection(pricing.NewTaxRule(*d.TaxRate)),
			Quantity:     decimal.NewFromInt(1),
			IsCalculated: true,
		}, sc)
	}
	return p.Absolute.Calculate(amount.Neg(), eligible, sc)
}

func (p Processor) reject(container *cart.Container, item lineitem.LineItem, warning cart.Error) {
	container.LineItems.Remove(item.Identifier)
	container.Errors.Add(warning)
	p.Logger.Debug().Str("line_item", item.Identifier).Str("reason", warning.MessageKey).Msg("voucher_rejected")
}
