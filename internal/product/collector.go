package product

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/shop"
)

const fetchDefinitionKey = "product.fetch"

// FetchDefinition lists the product numbers to load.
type FetchDefinition struct {
	Numbers []string
}

// DataKey implements auxdata.Keyed.
func (FetchDefinition) DataKey() string { return fetchDefinitionKey }

// Source loads catalog data for product numbers. Unknown numbers are omitted.
type Source interface {
	Products(ctx context.Context, numbers []string, sc shop.Context) ([]Data, error)
}

// StaticSource serves products from memory.
type StaticSource map[string]Data

// Products implements Source.
func (s StaticSource) Products(_ context.Context, numbers []string, _ shop.Context) ([]Data, error) {
	out := make([]Data, 0, len(numbers))
	for _, n := range numbers {
		if d, ok := s[n]; ok {
			d.Number = n
			out = append(out, d)
		}
	}
	return out, nil
}

// Collector loads Data for the product items of a container.
type Collector struct {
	Source Source
}

// Prepare registers the product numbers of the container.
func (c Collector) Prepare(definitions *auxdata.Collection, container *cart.Container, _ shop.Context) {
	numbers := container.LineItems.FilterType(lineitem.TypeProduct).Identifiers()
	if len(numbers) == 0 {
		return
	}
	definitions.Add(FetchDefinition{Numbers: numbers})
}

// Fetch loads the registered products into data.
func (c Collector) Fetch(ctx context.Context, data *auxdata.Collection, definitions *auxdata.Collection, sc shop.Context) error {
	def, ok := auxdata.Lookup[FetchDefinition](definitions, fetchDefinitionKey)
	if !ok || len(def.Numbers) == 0 {
		return nil
	}
	ctx, span := otel.Tracer("product.Collector").Start(ctx, "Collector.Fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("product.numbers", len(def.Numbers)))

	products, err := c.Source.Products(ctx, def.Numbers, sc)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load products: %w", err)
	}
	for _, d := range products {
		data.Add(d)
	}
	return nil
}
