// Package voucher applies voucher codes to a cart as negative line items.
package voucher

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/rule"
)

var (
	// ErrNotEligible is returned when the voucher cannot be applied to the provided cart.
	ErrNotEligible = errors.New("voucher not eligible")
	// ErrUsageLimitReached indicates the voucher has exhausted the global usage quota.
	ErrUsageLimitReached = errors.New("voucher usage limit reached")
	// ErrVoucherInactive is returned when attempting to use a voucher outside of its active window.
	ErrVoucherInactive = errors.New("voucher not active")
	// ErrVoucherExpired is returned when the voucher has already expired.
	ErrVoucherExpired = errors.New("voucher expired")
	// ErrMinimumSpendUnmet indicates the goods total did not meet the voucher requirement.
	ErrMinimumSpendUnmet = errors.New("voucher minimum spend not met")
)

// Mode selects how Value is applied.
type Mode string

const (
	// ModeAbsolute deducts Value as an amount.
	ModeAbsolute Mode = "absolute"
	// ModePercentage deducts Value percent of the eligible goods.
	ModePercentage Mode = "percentage"
)

// DataKeyPrefix prefixes the auxiliary data key of a voucher.
const DataKeyPrefix = "voucher."

// DataKey returns the auxiliary data key of code.
func DataKey(code string) string { return DataKeyPrefix + code }

// Data captures the runtime constraints of a voucher.
type Data struct {
	Code           string           `json:"code"`
	Mode           Mode             `json:"mode"`
	Value          decimal.Decimal  `json:"value"`
	TaxRate        *decimal.Decimal `json:"taxRate,omitempty"`
	MinSpend       decimal.Decimal  `json:"minSpend"`
	ValidFrom      *time.Time       `json:"validFrom,omitempty"`
	ValidTo        *time.Time       `json:"validTo,omitempty"`
	UsageLimit     *int32           `json:"usageLimit,omitempty"`
	UsedCount      int32            `json:"usedCount"`
	ProductNumbers []string         `json:"productNumbers,omitempty"`
	Eligibility    rule.Document    `json:"rule"`
}

// DataKey implements auxdata.Keyed.
func (d Data) DataKey() string { return DataKey(d.Code) }

// EligibilityRule implements rule.Carrier.
func (d Data) EligibilityRule() rule.Rule { return d.Eligibility.Rule }

// Validate ensures the voucher can be applied at the provided instant and goods total.
func (d Data) Validate(now time.Time, goodsTotal decimal.Decimal) error {
	if goodsTotal.LessThan(d.MinSpend) {
		return ErrMinimumSpendUnmet
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return ErrVoucherInactive
	}
	if d.ValidTo != nil && now.After(*d.ValidTo) {
		return ErrVoucherExpired
	}
	if d.UsageLimit != nil && *d.UsageLimit >= 0 && d.UsedCount >= *d.UsageLimit {
		return ErrUsageLimitReached
	}
	return nil
}

// EligibleGoods returns the goods the voucher applies to: all of them unless
// the voucher is scoped to product numbers.
func (d Data) EligibleGoods(goods *lineitem.CalculatedCollection) *lineitem.CalculatedCollection {
	return goods.Filter(func(item lineitem.Calculated) bool {
		if !item.Price().TotalPrice.IsPositive() {
			return false
		}
		return len(d.ProductNumbers) == 0 || slices.Contains(d.ProductNumbers, item.Identifier())
	})
}

// Compute determines the discount amount for the eligible total, capped at the total.
func Compute(eligible decimal.Decimal, d Data) decimal.Decimal {
	if !eligible.IsPositive() || !d.Value.IsPositive() {
		return decimal.Zero
	}
	discount := d.Value
	if d.Mode == ModePercentage {
		discount = pricing.Round(eligible.Mul(d.Value).Div(decimal.NewFromInt(100)))
	}
	if discount.GreaterThan(eligible) {
		discount = eligible
	}
	return discount
}
