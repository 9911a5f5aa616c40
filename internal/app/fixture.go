package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/noah-isme/toko-cart/internal/product"
	"github.com/noah-isme/toko-cart/internal/voucher"
)

// Fixture is catalog data read from a JSON document instead of a database.
type Fixture struct {
	Products    product.StaticSource `json:"products"`
	Vouchers    voucher.StaticSource `json:"vouchers"`
	Categories  map[int][]string     `json:"categories"`
	Attributes  map[string][]string  `json:"attributes"`
	OrderStates map[int][]int        `json:"orderStates"`
}

// ReadFixture decodes a fixture document.
func ReadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog fixture: %w", err)
	}
	return &f, nil
}

// Sources exposes the fixture through the collector interfaces.
func (f *Fixture) Sources() Sources {
	return Sources{
		Products:    f.Products,
		Vouchers:    f.Vouchers,
		Categories:  f,
		Attributes:  f,
		OrderStates: f,
	}
}

// ProductCategories implements rule.CategorySource.
func (f *Fixture) ProductCategories(_ context.Context, numbers []string, categoryIDs []int) (map[int][]string, error) {
	out := make(map[int][]string)
	for _, id := range categoryIDs {
		for _, number := range f.Categories[id] {
			if slices.Contains(numbers, number) {
				out[id] = append(out[id], number)
			}
		}
	}
	return out, nil
}

// ProductAttributes implements rule.AttributeSource. Fixture attributes are
// not scoped to products.
func (f *Fixture) ProductAttributes(_ context.Context, _ []string, attributes []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, name := range attributes {
		if values, ok := f.Attributes[name]; ok {
			out[name] = values
		}
	}
	return out, nil
}

// OrderClearedStates implements rule.OrderStateSource.
func (f *Fixture) OrderClearedStates(_ context.Context, customerID int) ([]int, error) {
	return f.OrderStates[customerID], nil
}
