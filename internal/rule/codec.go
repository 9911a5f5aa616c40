package rule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownKind is returned when decoding a rule of an unknown type.
var ErrUnknownKind = errors.New("rule: unknown kind")

type envelope struct {
	Type        Kind              `json:"type"`
	Rules       []json.RawMessage `json:"rules,omitempty"`
	Rule        json.RawMessage   `json:"rule,omitempty"`
	IDs         []int             `json:"ids,omitempty"`
	Value       string            `json:"value,omitempty"`
	States      []int             `json:"states,omitempty"`
	Attribute   string            `json:"attribute,omitempty"`
	CategoryIDs []int             `json:"categoryIds,omitempty"`
	Keys        []string          `json:"keys,omitempty"`
	Operator    Operator          `json:"operator,omitempty"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
}

// Encode returns the JSON document of r.
func Encode(r Rule) ([]byte, error) {
	env, err := toEnvelope(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

func toEnvelope(r Rule) (envelope, error) {
	if r == nil {
		return envelope{}, fmt.Errorf("%w: nil rule", ErrUnknownKind)
	}
	env := envelope{Type: r.Kind()}
	encodeAll := func(rules []Rule) error {
		for _, child := range rules {
			raw, err := Encode(child)
			if err != nil {
				return err
			}
			env.Rules = append(env.Rules, raw)
		}
		return nil
	}
	switch v := r.(type) {
	case And:
		if err := encodeAll(v.Rules); err != nil {
			return envelope{}, err
		}
	case Or:
		if err := encodeAll(v.Rules); err != nil {
			return envelope{}, err
		}
	case Not:
		raw, err := Encode(v.Rule)
		if err != nil {
			return envelope{}, err
		}
		env.Rule = raw
	case True, False:
	case Currency:
		env.IDs = v.IDs
	case LastName:
		env.Value = v.Value
	case OrderClearedState:
		env.States = v.States
	case ProductAttribute:
		env.Attribute, env.Value = v.Attribute, v.Value
	case ProductOfCategories:
		env.CategoryIDs = v.CategoryIDs
	case CustomerGroup:
		env.Keys = v.Keys
	case ShippingCountry:
		env.IDs = v.IDs
	case GoodsPrice:
		amount := v.Amount
		env.Operator, env.Amount = v.Operator, &amount
	default:
		return envelope{}, fmt.Errorf("%w: %T", ErrUnknownKind, r)
	}
	return env, nil
}

// Decode parses a JSON rule document. An empty document or null decodes to nil.
func Decode(raw []byte) (Rule, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode rule: %w", err)
	}
	decodeAll := func() ([]Rule, error) {
		out := make([]Rule, 0, len(env.Rules))
		for _, child := range env.Rules {
			r, err := Decode(child)
			if err != nil {
				return nil, err
			}
			if r != nil {
				out = append(out, r)
			}
		}
		return out, nil
	}
	switch env.Type {
	case KindAnd:
		rules, err := decodeAll()
		return And{Rules: rules}, err
	case KindOr:
		rules, err := decodeAll()
		return Or{Rules: rules}, err
	case KindNot:
		inner, err := Decode(env.Rule)
		if err != nil {
			return nil, err
		}
		return Not{Rule: inner}, nil
	case KindTrue:
		return True{}, nil
	case KindFalse:
		return False{}, nil
	case KindCurrency:
		return Currency{IDs: env.IDs}, nil
	case KindLastName:
		return LastName{Value: env.Value}, nil
	case KindOrderClearedState:
		return OrderClearedState{States: env.States}, nil
	case KindProductAttribute:
		return ProductAttribute{Attribute: env.Attribute, Value: env.Value}, nil
	case KindProductOfCategories:
		return ProductOfCategories{CategoryIDs: env.CategoryIDs}, nil
	case KindCustomerGroup:
		return CustomerGroup{Keys: env.Keys}, nil
	case KindShippingCountry:
		return ShippingCountry{IDs: env.IDs}, nil
	case KindGoodsPrice:
		gp := GoodsPrice{Operator: env.Operator}
		if env.Amount != nil {
			gp.Amount = *env.Amount
		}
		return gp, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
}

// Document wraps a rule for embedding in JSON encoded structs.
type Document struct {
	Rule Rule
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.Rule == nil {
		return []byte("null"), nil
	}
	return Encode(d.Rule)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(raw []byte) error {
	r, err := Decode(raw)
	if err != nil {
		return err
	}
	d.Rule = r
	return nil
}
