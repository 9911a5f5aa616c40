package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

type pricedItem struct {
	item  lineitem.LineItem
	price pricing.Price
}

func (p pricedItem) Identifier() string           { return p.item.Identifier }
func (p pricedItem) Type() string                 { return p.item.Type }
func (p pricedItem) Quantity() decimal.Decimal    { return p.item.Quantity }
func (p pricedItem) Price() pricing.Price         { return p.price }
func (p pricedItem) LineItem() *lineitem.LineItem { return &p.item }
func (p pricedItem) IsGoods()                     {}
func (p pricedItem) MarshalJSON() ([]byte, error) { return json.Marshal(lineitem.Describe(p)) }

// flatProcessor prices every item at 10 per unit and records its invocations.
type flatProcessor struct {
	name  string
	calls *[]string
}

func (f flatProcessor) Process(container *cart.Container, draft *lineitem.CalculatedCollection, _ *auxdata.Collection, sc shop.Context) error {
	*f.calls = append(*f.calls, f.name)
	if f.name != "pricing" {
		return nil
	}
	calc := pricing.PriceCalculator{}
	for _, item := range container.LineItems.All() {
		price, err := calc.Calculate(pricing.PriceDefinition{
			Price:    decimal.NewFromInt(10),
			TaxRules: pricing.NewTaxRuleCollection(pricing.NewTaxRule(decimal.NewFromInt(19))),
			Quantity: item.Quantity,
		}, sc)
		if err != nil {
			return err
		}
		draft.Add(pricedItem{item: item, price: price})
	}
	return nil
}

type recordingCollector struct {
	name  string
	calls *[]string
	err   error
}

type marker string

func (m marker) DataKey() string { return string(m) }

func (r recordingCollector) Prepare(definitions *auxdata.Collection, _ *cart.Container, _ shop.Context) {
	*r.calls = append(*r.calls, "prepare:"+r.name)
	definitions.Add(marker(r.name))
}

func (r recordingCollector) Fetch(_ context.Context, data *auxdata.Collection, definitions *auxdata.Collection, _ shop.Context) error {
	*r.calls = append(*r.calls, "fetch:"+r.name)
	if r.err != nil {
		return r.err
	}
	if definitions.Has(r.name) {
		data.Add(marker("data:" + r.name))
	}
	return nil
}

// removeOnce drops identifier from the container the first time it is seen.
type removeOnce struct {
	identifier string
	seen       *int
}

func (r removeOnce) Validate(calculated *cart.CalculatedCart, _ shop.Context, _ *auxdata.Collection) (bool, error) {
	*r.seen = *r.seen + 1
	if !calculated.LineItems().Has(r.identifier) {
		return true, nil
	}
	calculated.Container().LineItems.Remove(r.identifier)
	calculated.Container().Errors.Add(cart.Warning("removed", r.identifier))
	return false, nil
}

type neverValid struct{}

func (neverValid) Validate(*cart.CalculatedCart, shop.Context, *auxdata.Collection) (bool, error) {
	return false, nil
}

func grossContext() shop.Context {
	return shop.Context{
		CustomerGroup:    shop.CustomerGroup{Key: "EK", DisplayGross: true},
		ShippingLocation: shop.LocationFromCountry(shop.Country{ID: 2}),
	}
}

func newContainer(items ...lineitem.LineItem) *cart.Container {
	c := cart.NewContainer("sCart")
	c.LineItems.Fill(items...)
	return c
}

func product(id string, qty int64) lineitem.LineItem {
	return lineitem.New(id, lineitem.TypeProduct, decimal.NewFromInt(qty))
}

func TestCalculatorRunsStagesInOrder(t *testing.T) {
	var calls []string
	calc := cart.NewCalculator(cart.Deps{
		Collectors: []cart.Collector{
			recordingCollector{name: "a", calls: &calls},
			recordingCollector{name: "b", calls: &calls},
		},
		Processors: []cart.Processor{
			flatProcessor{name: "pricing", calls: &calls},
			flatProcessor{name: "after", calls: &calls},
		},
	})

	calculated, err := calc.Calculate(context.Background(), newContainer(product("SW1", 2)), grossContext())
	require.NoError(t, err)
	require.Equal(t, []string{"prepare:a", "prepare:b", "fetch:a", "fetch:b", "pricing", "after"}, calls)
	require.True(t, calculated.Price().TotalPrice.Equal(decimal.RequireFromString("23.80")))
	require.Equal(t, 1, calculated.LineItems().Len())
}

func TestCalculatorJoinsCollectorErrors(t *testing.T) {
	var calls []string
	boom := errors.New("source down")
	calc := cart.NewCalculator(cart.Deps{
		Collectors: []cart.Collector{
			recordingCollector{name: "a", calls: &calls, err: boom},
			recordingCollector{name: "b", calls: &calls},
		},
	})
	_, err := calc.Calculate(context.Background(), newContainer(product("SW1", 1)), grossContext())
	require.ErrorIs(t, err, boom)
	require.Contains(t, calls, "fetch:b")
}

func TestCalculatorRejectsInvalidContainers(t *testing.T) {
	calc := cart.NewCalculator(cart.Deps{})
	_, err := calc.Calculate(context.Background(), nil, grossContext())
	require.ErrorIs(t, err, cart.ErrInvalidContainer)

	_, err = calc.Calculate(context.Background(), newContainer(product("SW1", -1)), grossContext())
	require.ErrorIs(t, err, cart.ErrInvalidContainer)

	_, err = calc.Calculate(context.Background(), newContainer(lineitem.New("SW1", "", decimal.NewFromInt(1))), grossContext())
	require.ErrorIs(t, err, cart.ErrInvalidContainer)
}

func TestValidatorRemediationTriggersRecalculation(t *testing.T) {
	var calls []string
	seen := 0
	calc := cart.NewCalculator(cart.Deps{
		Processors: []cart.Processor{flatProcessor{name: "pricing", calls: &calls}},
		Validators: []cart.Validator{removeOnce{identifier: "SW2", seen: &seen}},
	})
	container := newContainer(product("SW1", 1), product("SW2", 1))

	calculated, err := calc.Calculate(context.Background(), container, grossContext())
	require.NoError(t, err)
	require.Equal(t, []string{"pricing", "pricing"}, calls)
	require.Equal(t, 2, seen)
	require.Equal(t, []string{"SW1"}, calculated.LineItems().Identifiers())
	require.True(t, calculated.Errors().Has("removed"))
	require.False(t, calculated.Blocking())
}

func TestRecalculationIsBounded(t *testing.T) {
	var calls []string
	calc := cart.NewCalculator(cart.Deps{
		Processors:        []cart.Processor{flatProcessor{name: "pricing", calls: &calls}},
		Validators:        []cart.Validator{neverValid{}},
		MaxRecalculations: 2,
	})
	_, err := calc.Calculate(context.Background(), newContainer(product("SW1", 1)), grossContext())
	require.ErrorIs(t, err, cart.ErrNotConverged)
	require.Len(t, calls, 3)
}

func TestMaxRecalculationsIsClamped(t *testing.T) {
	require.Equal(t, cart.DefaultMaxRecalculations, cart.NewCalculator(cart.Deps{}).MaxRecalculations())
	require.Equal(t, 3, cart.NewCalculator(cart.Deps{MaxRecalculations: 10}).MaxRecalculations())
	require.Equal(t, 1, cart.NewCalculator(cart.Deps{MaxRecalculations: 1}).MaxRecalculations())
}

func TestCalculateClearsPreviousErrors(t *testing.T) {
	var calls []string
	calc := cart.NewCalculator(cart.Deps{Processors: []cart.Processor{flatProcessor{name: "pricing", calls: &calls}}})
	container := newContainer(product("SW1", 1))
	container.Errors.Add(cart.Blocking("stale", "from last time"))

	calculated, err := calc.Calculate(context.Background(), container, grossContext())
	require.NoError(t, err)
	require.Equal(t, 0, calculated.Errors().Len())
}

func TestCalculatedCartIsASnapshot(t *testing.T) {
	var calls []string
	calc := cart.NewCalculator(cart.Deps{Processors: []cart.Processor{flatProcessor{name: "pricing", calls: &calls}}})
	container := newContainer(product("SW1", 1))

	calculated, err := calc.Calculate(context.Background(), container, grossContext())
	require.NoError(t, err)
	before, err := json.Marshal(calculated)
	require.NoError(t, err)

	calculated.LineItems().Remove("SW1")
	calculated.Errors().Add(cart.Blocking("outside", "added to a copy"))
	container.Errors.Add(cart.Blocking("later", "added after the calculation"))
	container.LineItems.Remove("SW1")
	container.Name = "renamed"

	require.Equal(t, "sCart", calculated.Name())
	require.Equal(t, 1, calculated.LineItems().Len())
	require.True(t, calculated.LineItems().Has("SW1"))
	require.Equal(t, 0, calculated.Errors().Len())
	require.False(t, calculated.Blocking())
	require.True(t, decimal.RequireFromString("11.90").Equal(calculated.Price().TotalPrice))

	after, err := json.Marshal(calculated)
	require.NoError(t, err)
	require.JSONEq(t, string(before), string(after))
}

func TestCalculationIsIdempotent(t *testing.T) {
	var calls []string
	seen := 0
	calc := cart.NewCalculator(cart.Deps{
		Processors: []cart.Processor{flatProcessor{name: "pricing", calls: &calls}},
		Validators: []cart.Validator{removeOnce{identifier: "missing", seen: &seen}},
	})
	container := newContainer(product("SW1", 2), product("SW2", 1))

	first, err := calc.Calculate(context.Background(), container, grossContext())
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := calc.Calculate(context.Background(), container, grossContext())
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestErrorCollection(t *testing.T) {
	var errs cart.ErrorCollection
	errs.Add(cart.Warning("a", "first"), cart.Warning("a", "first"), cart.Warning("a", "second"))
	require.Equal(t, 2, errs.Len())
	require.True(t, errs.Has("a"))
	require.False(t, errs.Has("b"))
	require.True(t, errs.HasLevel(cart.LevelWarning))
	require.False(t, errs.HasLevel(cart.LevelError))

	errs.Add(cart.Blocking("b", "stop"))
	require.True(t, errs.HasLevel(cart.LevelError))

	raw, err := json.Marshal(&errs)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"level":"error"`)

	var decoded cart.ErrorCollection
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, errs.All(), decoded.All())

	errs.Clear()
	require.Equal(t, 0, errs.Len())
}

func TestContainerJSON(t *testing.T) {
	var container cart.Container
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "sCart",
		"lineItems": [
			{"identifier": "SW1", "type": "product", "quantity": "1"},
			{"identifier": "SW1", "type": "product", "quantity": "2"}
		]
	}`), &container))
	require.NotEmpty(t, container.Token)
	require.Equal(t, 1, container.LineItems.Len())
	item, _ := container.LineItems.Get("SW1")
	require.True(t, item.Quantity.Equal(decimal.NewFromInt(3)))

	clone := container.Clone()
	clone.LineItems.Remove("SW1")
	require.True(t, container.LineItems.Has("SW1"))
}
