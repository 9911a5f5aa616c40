// Package rule evaluates eligibility rules against a calculated cart, the
// shop context and pre-fetched rule data.
package rule

import "github.com/shopspring/decimal"

// Kind names a rule variant.
type Kind string

const (
	KindAnd                 Kind = "and"
	KindOr                  Kind = "or"
	KindNot                 Kind = "not"
	KindTrue                Kind = "true"
	KindFalse               Kind = "false"
	KindCurrency            Kind = "currency"
	KindLastName            Kind = "last_name"
	KindOrderClearedState   Kind = "order_cleared_state"
	KindProductAttribute    Kind = "product_attribute"
	KindProductOfCategories Kind = "product_of_categories"
	KindCustomerGroup       Kind = "customer_group"
	KindShippingCountry     Kind = "shipping_country"
	KindGoodsPrice          Kind = "goods_price"
)

// Rule is one of the variants declared in this package.
type Rule interface {
	Kind() Kind
	sealed()
}

// Match is the result of an evaluation. Reasons explain a non-match.
type Match struct {
	Matched bool     `json:"matched"`
	Reasons []string `json:"reasons,omitempty"`
}

// And matches when every child matches.
type And struct{ Rules []Rule }

// Or matches when any child matches.
type Or struct{ Rules []Rule }

// Not inverts its child.
type Not struct{ Rule Rule }

// True always matches.
type True struct{}

// False never matches.
type False struct{}

// Currency matches when the context currency is one of IDs.
type Currency struct{ IDs []int }

// LastName matches when the customer's last name contains Value, ignoring case.
type LastName struct{ Value string }

// OrderClearedState matches when one of the customer's orders has one of States.
type OrderClearedState struct{ States []int }

// ProductAttribute matches when a cart product carries Value for Attribute.
type ProductAttribute struct {
	Attribute string
	Value     string
}

// ProductOfCategories matches when the cart holds a product of one of CategoryIDs.
type ProductOfCategories struct{ CategoryIDs []int }

// CustomerGroup matches when the context customer group key is one of Keys.
type CustomerGroup struct{ Keys []string }

// ShippingCountry matches when the shipping country is one of IDs.
type ShippingCountry struct{ IDs []int }

// Operator compares a cart value against a rule amount.
type Operator string

const (
	OpGTE Operator = ">="
	OpLTE Operator = "<="
	OpGT  Operator = ">"
	OpLT  Operator = "<"
	OpEQ  Operator = "="
)

// GoodsPrice compares the goods total of the cart with Amount.
type GoodsPrice struct {
	Operator Operator
	Amount   decimal.Decimal
}

func (And) Kind() Kind                 { return KindAnd }
func (Or) Kind() Kind                  { return KindOr }
func (Not) Kind() Kind                 { return KindNot }
func (True) Kind() Kind                { return KindTrue }
func (False) Kind() Kind               { return KindFalse }
func (Currency) Kind() Kind            { return KindCurrency }
func (LastName) Kind() Kind            { return KindLastName }
func (OrderClearedState) Kind() Kind   { return KindOrderClearedState }
func (ProductAttribute) Kind() Kind    { return KindProductAttribute }
func (ProductOfCategories) Kind() Kind { return KindProductOfCategories }
func (CustomerGroup) Kind() Kind       { return KindCustomerGroup }
func (ShippingCountry) Kind() Kind     { return KindShippingCountry }
func (GoodsPrice) Kind() Kind          { return KindGoodsPrice }

func (And) sealed()                 {}
func (Or) sealed()                  {}
func (Not) sealed()                 {}
func (True) sealed()                {}
func (False) sealed()               {}
func (Currency) sealed()            {}
func (LastName) sealed()            {}
func (OrderClearedState) sealed()   {}
func (ProductAttribute) sealed()    {}
func (ProductOfCategories) sealed() {}
func (CustomerGroup) sealed()       {}
func (ShippingCountry) sealed()     {}
func (GoodsPrice) sealed()          {}

// Collection is a list of rules.
type Collection []Rule

// Has reports whether a rule of kind appears anywhere, including inside combinators.
func (c Collection) Has(kind Kind) bool {
	return len(c.Filter(kind)) > 0
}

// Filter returns every rule of kind, flattened out of combinators in depth-first order.
func (c Collection) Filter(kind Kind) Collection {
	var out Collection
	for _, r := range c {
		out = appendKind(out, r, kind)
	}
	return out
}

func appendKind(out Collection, r Rule, kind Kind) Collection {
	if r == nil {
		return out
	}
	if r.Kind() == kind {
		out = append(out, r)
	}
	switch v := r.(type) {
	case And:
		for _, child := range v.Rules {
			out = appendKind(out, child, kind)
		}
	case Or:
		for _, child := range v.Rules {
			out = appendKind(out, child, kind)
		}
	case Not:
		out = appendKind(out, v.Rule, kind)
	}
	return out
}
