package voucher

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/rule"
)

// CalculatedVoucher is an applied voucher. It stays valid while its rule matches.
type CalculatedVoucher struct {
	item        lineitem.LineItem
	price       pricing.Price
	code        string
	eligibility rule.Rule
}

func (v CalculatedVoucher) Identifier() string        { return v.item.Identifier }
func (v CalculatedVoucher) Type() string              { return lineitem.TypeVoucher }
func (v CalculatedVoucher) Quantity() decimal.Decimal { return decimal.NewFromInt(1) }
func (v CalculatedVoucher) Price() pricing.Price      { return v.price }
func (v CalculatedVoucher) Code() string              { return v.code }
func (v CalculatedVoucher) Rule() rule.Rule           { return v.eligibility }

// LineItem returns the voucher line item.
func (v CalculatedVoucher) LineItem() *lineitem.LineItem {
	item := v.item
	return &item
}

// MarshalJSON encodes the voucher with its code.
func (v CalculatedVoucher) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		lineitem.View
		Code string `json:"code"`
	}{View: lineitem.Describe(v), Code: v.code})
}
