package rule

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

// CategorySource resolves which of numbers belong to categoryIDs.
type CategorySource interface {
	ProductCategories(ctx context.Context, numbers []string, categoryIDs []int) (map[int][]string, error)
}

// AttributeSource loads the values of attributes for the products numbers.
type AttributeSource interface {
	ProductAttributes(ctx context.Context, numbers []string, attributes []string) (map[string][]string, error)
}

// OrderStateSource loads the cleared states of a customer's orders.
type OrderStateSource interface {
	OrderClearedStates(ctx context.Context, customerID int) ([]int, error)
}

func prepareNumbers(definitions *auxdata.Collection, container *cart.Container) {
	if definitions.Has(productNumbersKey) {
		return
	}
	definitions.Add(productNumbers{Numbers: container.LineItems.FilterType(lineitem.TypeProduct).Identifiers()})
}

func numbersFrom(definitions *auxdata.Collection) []string {
	defs, _ := auxdata.Lookup[productNumbers](definitions, productNumbersKey)
	return defs.Numbers
}

// ProductOfCategoriesCollector loads category assignments when a carrier
// rule asks for them.
type ProductOfCategoriesCollector struct {
	Source CategorySource
}

// Prepare records the product numbers of the container.
func (c ProductOfCategoriesCollector) Prepare(definitions *auxdata.Collection, container *cart.Container, _ shop.Context) {
	prepareNumbers(definitions, container)
}

// Fetch loads ProductOfCategoriesData for the categories referenced by rules in data.
func (c ProductOfCategoriesCollector) Fetch(ctx context.Context, data *auxdata.Collection, definitions *auxdata.Collection, _ shop.Context) error {
	rules := Rules(data).Filter(KindProductOfCategories)
	if len(rules) == 0 {
		return nil
	}
	numbers := numbersFrom(definitions)
	if len(numbers) == 0 {
		return nil
	}
	var ids []int
	for _, r := range rules {
		ids = appendUnique(ids, r.(ProductOfCategories).CategoryIDs...)
	}

	ctx, span := otel.Tracer("rule.ProductOfCategoriesCollector").Start(ctx, "ProductOfCategoriesCollector.Fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("rule.categories", len(ids)), attribute.Int("rule.products", len(numbers)))

	categories, err := c.Source.ProductCategories(ctx, numbers, ids)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load product categories: %w", err)
	}
	data.Add(ProductOfCategoriesData{Categories: categories})
	return nil
}

// ProductAttributeCollector loads product attribute values when a carrier
// rule asks for them.
type ProductAttributeCollector struct {
	Source AttributeSource
}

// Prepare records the product numbers of the container.
func (c ProductAttributeCollector) Prepare(definitions *auxdata.Collection, container *cart.Container, _ shop.Context) {
	prepareNumbers(definitions, container)
}

// Fetch loads ProductAttributeData for the attributes referenced by rules in data.
func (c ProductAttributeCollector) Fetch(ctx context.Context, data *auxdata.Collection, definitions *auxdata.Collection, _ shop.Context) error {
	rules := Rules(data).Filter(KindProductAttribute)
	if len(rules) == 0 {
		return nil
	}
	numbers := numbersFrom(definitions)
	if len(numbers) == 0 {
		return nil
	}
	var attributes []string
	for _, r := range rules {
		attributes = appendUnique(attributes, r.(ProductAttribute).Attribute)
	}

	ctx, span := otel.Tracer("rule.ProductAttributeCollector").Start(ctx, "ProductAttributeCollector.Fetch")
	defer span.End()

	values, err := c.Source.ProductAttributes(ctx, numbers, attributes)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load product attributes: %w", err)
	}
	data.Add(ProductAttributeData{Attributes: values})
	return nil
}

// OrderClearedStateCollector loads the customer's order states when a
// carrier rule asks for them.
type OrderClearedStateCollector struct {
	Source OrderStateSource
}

// Prepare is a no-op; the customer comes from the shop context.
func (OrderClearedStateCollector) Prepare(*auxdata.Collection, *cart.Container, shop.Context) {}

// Fetch loads OrderClearedStateData for the logged in customer.
func (c OrderClearedStateCollector) Fetch(ctx context.Context, data *auxdata.Collection, _ *auxdata.Collection, sc shop.Context) error {
	if !Rules(data).Has(KindOrderClearedState) || sc.Customer == nil {
		return nil
	}
	ctx, span := otel.Tracer("rule.OrderClearedStateCollector").Start(ctx, "OrderClearedStateCollector.Fetch")
	defer span.End()

	states, err := c.Source.OrderClearedStates(ctx, sc.Customer.ID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load order cleared states: %w", err)
	}
	data.Add(OrderClearedStateData{States: states})
	return nil
}

func appendUnique[T comparable](out []T, values ...T) []T {
	for _, v := range values {
		seen := false
		for _, existing := range out {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}
