package rule

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// MessageRuleNotMatched is the error key recorded for removed items.
const MessageRuleNotMatched = "line-item-rule-not-matched"

// Validatable is a calculated item that is only valid while its rule matches.
type Validatable interface {
	lineitem.Calculated
	Rule() Rule
}

// LineItemValidator removes validatable items whose rule no longer matches.
type LineItemValidator struct {
	Logger zerolog.Logger
}

// Validate implements cart.Validator.
func (v LineItemValidator) Validate(calculated *cart.CalculatedCart, sc shop.Context, data *auxdata.Collection) (bool, error) {
	scope := Scope{Cart: calculated, Context: sc, Data: data}
	valid := true
	for _, item := range calculated.LineItems().All() {
		validatable, ok := item.(Validatable)
		if !ok || validatable.Rule() == nil {
			continue
		}
		m := Evaluate(validatable.Rule(), scope)
		if m.Matched {
			continue
		}
		container := calculated.Container()
		container.LineItems.Remove(item.Identifier())
		container.Errors.Add(cart.Warning(MessageRuleNotMatched, item.Identifier()+": "+strings.Join(m.Reasons, "; ")))
		v.Logger.Debug().
			Str("line_item", item.Identifier()).
			Strs("reasons", m.Reasons).
			Msg("rule_not_matched")
		valid = false
	}
	return valid, nil
}
