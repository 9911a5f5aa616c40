package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxRule taxes Percentage percent of a price at Rate.
type TaxRule struct {
	Rate       decimal.Decimal `json:"rate"`
	Percentage decimal.Decimal `json:"percentage"`
}

// NewTaxRule returns a rule taxing the whole price at rate.
func NewTaxRule(rate decimal.Decimal) TaxRule {
	return TaxRule{Rate: rate, Percentage: hundred}
}

// NewPercentageTaxRule returns a rule taxing percentage percent of the price at rate.
func NewPercentageTaxRule(rate, percentage decimal.Decimal) TaxRule {
	return TaxRule{Rate: rate, Percentage: percentage}
}

func (r TaxRule) validate() error {
	if r.Rate.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeTaxRate, r.Rate)
	}
	return nil
}

// TaxRuleCollection is keyed by rate; the first rule added for a rate wins.
type TaxRuleCollection struct {
	keys  []string
	rules map[string]TaxRule
}

// NewTaxRuleCollection builds a collection from rules.
func NewTaxRuleCollection(rules ...TaxRule) TaxRuleCollection {
	c := TaxRuleCollection{}
	for _, r := range rules {
		c = c.With(r)
	}
	return c
}

// With returns a copy of c containing r unless a rule with the same rate exists.
func (c TaxRuleCollection) With(r TaxRule) TaxRuleCollection {
	key := rateKey(r.Rate)
	if _, ok := c.rules[key]; ok {
		return c
	}
	out := c.clone()
	out.keys = append(out.keys, key)
	out.rules[key] = r
	return out
}

// Merge returns the union of both collections.
func (c TaxRuleCollection) Merge(other TaxRuleCollection) TaxRuleCollection {
	out := c
	for _, r := range other.All() {
		out = out.With(r)
	}
	return out
}

// Get returns the rule for rate.
func (c TaxRuleCollection) Get(rate decimal.Decimal) (TaxRule, bool) {
	r, ok := c.rules[rateKey(rate)]
	return r, ok
}

// Len returns the number of rules.
func (c TaxRuleCollection) Len() int { return len(c.keys) }

// All returns the rules in insertion order.
func (c TaxRuleCollection) All() []TaxRule {
	out := make([]TaxRule, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.rules[k])
	}
	return out
}

func (c TaxRuleCollection) validate() error {
	for _, r := range c.All() {
		if err := r.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c TaxRuleCollection) clone() TaxRuleCollection {
	out := TaxRuleCollection{keys: append([]string(nil), c.keys...), rules: make(map[string]TaxRule, len(c.rules)+1)}
	for k, v := range c.rules {
		out.rules[k] = v
	}
	return out
}

// MarshalJSON encodes the rules as an array.
func (c TaxRuleCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}

// CalculatedTax is the tax owed at TaxRate for the Price portion taxed at that rate.
type CalculatedTax struct {
	TaxRate decimal.Decimal `json:"taxRate"`
	Tax     decimal.Decimal `json:"tax"`
	Price   decimal.Decimal `json:"price"`
}

// CalculatedTaxCollection is keyed by tax rate.
type CalculatedTaxCollection struct {
	keys  []string
	taxes map[string]CalculatedTax
}

// NewCalculatedTaxCollection builds a collection; same-rate entries are summed.
func NewCalculatedTaxCollection(taxes ...CalculatedTax) CalculatedTaxCollection {
	c := CalculatedTaxCollection{}
	for _, t := range taxes {
		c = c.merged(t)
	}
	return c
}

func (c CalculatedTaxCollection) merged(t CalculatedTax) CalculatedTaxCollection {
	out := c.clone()
	key := rateKey(t.TaxRate)
	if existing, ok := out.taxes[key]; ok {
		existing.Tax = existing.Tax.Add(t.Tax)
		existing.Price = existing.Price.Add(t.Price)
		out.taxes[key] = existing
		return out
	}
	out.keys = append(out.keys, key)
	out.taxes[key] = t
	return out
}

// Merge returns a new collection with the taxes of both; same rates are summed.
func (c CalculatedTaxCollection) Merge(other CalculatedTaxCollection) CalculatedTaxCollection {
	out := c
	for _, t := range other.All() {
		out = out.merged(t)
	}
	return out
}

// Get returns the tax calculated for rate.
func (c CalculatedTaxCollection) Get(rate decimal.Decimal) (CalculatedTax, bool) {
	t, ok := c.taxes[rateKey(rate)]
	return t, ok
}

// Amount returns the sum of all taxes.
func (c CalculatedTaxCollection) Amount() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range c.taxes {
		sum = sum.Add(t.Tax)
	}
	return sum
}

// Len returns the number of distinct rates.
func (c CalculatedTaxCollection) Len() int { return len(c.keys) }

// All returns the taxes in insertion order.
func (c CalculatedTaxCollection) All() []CalculatedTax {
	out := make([]CalculatedTax, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.taxes[k])
	}
	return out
}

func (c CalculatedTaxCollection) clone() CalculatedTaxCollection {
	out := CalculatedTaxCollection{keys: append([]string(nil), c.keys...), taxes: make(map[string]CalculatedTax, len(c.taxes)+1)}
	for k, v := range c.taxes {
		out.taxes[k] = v
	}
	return out
}

// MarshalJSON encodes the taxes as an array.
func (c CalculatedTaxCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}
