package rule

import (
	"slices"

	"github.com/noah-isme/toko-cart/internal/auxdata"
)

// Keys of the rule data entries in the auxiliary data collection.
const (
	ProductOfCategoriesDataKey = "rule.product_of_categories"
	ProductAttributeDataKey    = "rule.product_attribute"
	OrderClearedStateDataKey   = "rule.order_cleared_state"
	productNumbersKey          = "rule.product_numbers"
)

// ProductOfCategoriesData maps category ids to the cart product numbers assigned to them.
type ProductOfCategoriesData struct {
	Categories map[int][]string
}

// DataKey implements auxdata.Keyed.
func (ProductOfCategoriesData) DataKey() string { return ProductOfCategoriesDataKey }

// HasCategory reports whether any of ids holds at least one product.
func (d ProductOfCategoriesData) HasCategory(ids []int) bool {
	for _, id := range ids {
		if len(d.Categories[id]) > 0 {
			return true
		}
	}
	return false
}

// ProductAttributeData maps attribute names to the values found on cart products.
type ProductAttributeData struct {
	Attributes map[string][]string
}

// DataKey implements auxdata.Keyed.
func (ProductAttributeData) DataKey() string { return ProductAttributeDataKey }

// HasAttributeValue reports whether attribute carries value on any product.
func (d ProductAttributeData) HasAttributeValue(attribute, value string) bool {
	return slices.Contains(d.Attributes[attribute], value)
}

// OrderClearedStateData lists the cleared states of the customer's previous orders.
type OrderClearedStateData struct {
	States []int
}

// DataKey implements auxdata.Keyed.
func (OrderClearedStateData) DataKey() string { return OrderClearedStateDataKey }

// HasOneState reports whether any of states is present.
func (d OrderClearedStateData) HasOneState(states []int) bool {
	for _, s := range states {
		if slices.Contains(d.States, s) {
			return true
		}
	}
	return false
}

// Carrier is data that brings an eligibility rule into the calculation, such
// as a fetched voucher. Rule collectors inspect carriers to decide what to load.
type Carrier interface {
	auxdata.Keyed
	EligibilityRule() Rule
}

// ValidatableDefinition registers a rule under Key.
type ValidatableDefinition struct {
	Key  string
	Rule Rule
}

// DataKey implements auxdata.Keyed.
func (d ValidatableDefinition) DataKey() string { return "rule.validatable." + d.Key }

// EligibilityRule implements Carrier.
func (d ValidatableDefinition) EligibilityRule() Rule { return d.Rule }

// Rules returns the rules of every carrier in data.
func Rules(data *auxdata.Collection) Collection {
	var out Collection
	for _, carrier := range auxdata.OfType[Carrier](data) {
		if r := carrier.EligibilityRule(); r != nil {
			out = append(out, r)
		}
	}
	return out
}

type productNumbers struct {
	Numbers []string
}

func (productNumbers) DataKey() string { return productNumbersKey }
