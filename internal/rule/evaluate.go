package rule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Scope is what a rule is evaluated against. Cart and Data may be nil.
type Scope struct {
	Cart    *cart.CalculatedCart
	Context shop.Context
	Data    *auxdata.Collection
}

var matched = Match{Matched: true}

func failed(reasons ...string) Match {
	return Match{Matched: false, Reasons: reasons}
}

func when(ok bool, reason string) Match {
	if ok {
		return matched
	}
	return failed(reason)
}

// Evaluate matches r against scope. A nil rule matches.
func Evaluate(r Rule, scope Scope) Match {
	switch v := r.(type) {
	case nil:
		return matched
	case And:
		var reasons []string
		ok := true
		for _, child := range v.Rules {
			m := Evaluate(child, scope)
			if !m.Matched {
				ok = false
				reasons = append(reasons, m.Reasons...)
			}
		}
		if ok {
			return matched
		}
		return failed(reasons...)
	case Or:
		var reasons []string
		for _, child := range v.Rules {
			m := Evaluate(child, scope)
			if m.Matched {
				return matched
			}
			reasons = append(reasons, m.Reasons...)
		}
		return failed(reasons...)
	case Not:
		if inner, ok := v.Rule.(Not); ok {
			return Evaluate(inner.Rule, scope)
		}
		return when(!Evaluate(v.Rule, scope).Matched, "Negated rule matched")
	case True:
		return matched
	case False:
		return failed("False rule never matches")
	case Currency:
		return when(slices.Contains(v.IDs, scope.Context.Currency.ID), "Currency not matched")
	case LastName:
		customer := scope.Context.Customer
		if customer == nil {
			return failed("Customer not logged in")
		}
		return when(strings.Contains(strings.ToLower(customer.LastName), strings.ToLower(v.Value)), "Last name not matched")
	case OrderClearedState:
		data, ok := auxdata.Lookup[OrderClearedStateData](scope.Data, OrderClearedStateDataKey)
		if !ok {
			return failed("Order cleared state data not found")
		}
		return when(data.HasOneState(v.States), "Order states not matched")
	case ProductAttribute:
		data, ok := auxdata.Lookup[ProductAttributeData](scope.Data, ProductAttributeDataKey)
		if !ok {
			return failed("Product attribute data not loaded")
		}
		return when(data.HasAttributeValue(v.Attribute, v.Value), "Product attribute value not matched")
	case ProductOfCategories:
		data, ok := auxdata.Lookup[ProductOfCategoriesData](scope.Data, ProductOfCategoriesDataKey)
		if !ok {
			return failed("Product of categories data not loaded")
		}
		return when(data.HasCategory(v.CategoryIDs), "No product of categories in cart")
	case CustomerGroup:
		return when(slices.Contains(v.Keys, scope.Context.CustomerGroup.Key), "Customer group not matched")
	case ShippingCountry:
		return when(slices.Contains(v.IDs, scope.Context.ShippingLocation.ResolvedCountry().ID), "Shipping country not matched")
	case GoodsPrice:
		if scope.Cart == nil {
			return failed("Cart not available")
		}
		total := scope.Cart.LineItems().FilterGoods().Prices().Sum()
		return when(compare(total, v.Operator, v.Amount), fmt.Sprintf("Goods price %s not %s %s", total, v.Operator, v.Amount))
	default:
		return failed(fmt.Sprintf("Unsupported rule %T", r))
	}
}

func compare(value decimal.Decimal, op Operator, amount decimal.Decimal) bool {
	switch op {
	case OpGTE:
		return value.GreaterThanOrEqual(amount)
	case OpLTE:
		return value.LessThanOrEqual(amount)
	case OpGT:
		return value.GreaterThan(amount)
	case OpLT:
		return value.LessThan(amount)
	case OpEQ:
		return value.Equal(amount)
	default:
		return false
	}
}
