package delivery_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-cart/internal/delivery"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type shippedItem struct {
	delivery.Information
	id    string
	qty   decimal.Decimal
	price pricing.Price
}

func (s shippedItem) Identifier() string           { return s.id }
func (s shippedItem) Type() string                 { return lineitem.TypeProduct }
func (s shippedItem) Quantity() decimal.Decimal    { return s.qty }
func (s shippedItem) Price() pricing.Price         { return s.price }
func (s shippedItem) LineItem() *lineitem.LineItem { return nil }

func testContext() shop.Context {
	return shop.Context{
		CustomerGroup:    shop.CustomerGroup{DisplayGross: true},
		ShippingLocation: shop.LocationFromCountry(shop.Country{ID: 2, ISO: "DE"}),
		ShippingMethod:   shop.ShippingMethod{ID: 9, Name: "Standard"},
	}
}

func newItem(t *testing.T, id string, qty, stock int64) shippedItem {
	t.Helper()
	calc := pricing.PriceCalculator{}
	price, err := calc.Calculate(pricing.PriceDefinition{
		Price:        decimal.RequireFromString("11.90"),
		TaxRules:     pricing.NewTaxRuleCollection(pricing.NewTaxRule(decimal.NewFromInt(19))),
		Quantity:     decimal.NewFromInt(qty),
		IsCalculated: true,
	}, testContext())
	require.NoError(t, err)
	return shippedItem{
		Information: delivery.Information{
			StockQuantity:  decimal.NewFromInt(stock),
			ItemWeight:     decimal.RequireFromString("0.5"),
			InStockDate:    delivery.NewDate(now, 1, 3),
			OutOfStockDate: delivery.NewDate(now, 5, 10),
		},
		id:    id,
		qty:   decimal.NewFromInt(qty),
		price: price,
	}
}

func TestPartialStockSplitsIntoTwoDeliveries(t *testing.T) {
	item := newItem(t, "SW1", 5, 3)
	items := lineitem.NewCalculatedCollection(item)

	out, err := delivery.StockSeparator{}.AddItemsToDeliveries(delivery.NewCollection(), items, testContext())
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	positions := out.Positions()
	require.Len(t, positions, 2)
	require.Equal(t, "SW1", positions[0].Identifier)
	require.Equal(t, "SW1", positions[1].Identifier)
	require.True(t, positions[0].Quantity.Equal(decimal.NewFromInt(3)))
	require.True(t, positions[0].Date.Equal(item.InStockDate))
	require.True(t, positions[0].Price.TotalPrice.Equal(decimal.RequireFromString("35.70")))
	require.True(t, positions[1].Quantity.Equal(decimal.NewFromInt(2)))
	require.True(t, positions[1].Date.Equal(item.OutOfStockDate))
	require.True(t, positions[1].Price.TotalPrice.Equal(decimal.RequireFromString("23.80")))

	require.Equal(t, "Standard", out.All()[0].ShippingMethod.Name)
	require.True(t, out.All()[0].Weight().Equal(decimal.RequireFromString("1.5")))
}

func TestFullStockAndNoStock(t *testing.T) {
	inStock := newItem(t, "SW1", 2, 10)
	noStock := newItem(t, "SW2", 2, 0)
	alsoInStock := newItem(t, "SW3", 1, 1)
	items := lineitem.NewCalculatedCollection(inStock, noStock, alsoInStock)

	out, err := delivery.StockSeparator{}.AddItemsToDeliveries(delivery.NewCollection(), items, testContext())
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	early, ok := out.Get(inStock.InStockDate, testContext().ShippingLocation)
	require.True(t, ok)
	require.Len(t, early.Positions, 2)
	require.Equal(t, inStock.Price(), early.Positions[0].Price)

	late, ok := out.Get(noStock.OutOfStockDate, testContext().ShippingLocation)
	require.True(t, ok)
	require.Len(t, late.Positions, 1)
	require.True(t, late.Positions[0].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestQuantityIsConserved(t *testing.T) {
	items := lineitem.NewCalculatedCollection(
		newItem(t, "A", 7, 4),
		newItem(t, "B", 3, 0),
		newItem(t, "C", 1, 8),
	)
	out, err := delivery.StockSeparator{}.AddItemsToDeliveries(delivery.NewCollection(), items, testContext())
	require.NoError(t, err)
	for _, item := range items.All() {
		require.True(t, out.QuantityOf(item.Identifier()).Equal(item.Quantity()), item.Identifier())
	}
}

func TestSeparationIsIdempotent(t *testing.T) {
	items := lineitem.NewCalculatedCollection(newItem(t, "A", 5, 3))
	separator := delivery.StockSeparator{}

	first, err := separator.AddItemsToDeliveries(delivery.NewCollection(), items, testContext())
	require.NoError(t, err)
	second, err := separator.AddItemsToDeliveries(first, items, testContext())
	require.NoError(t, err)
	require.Equal(t, first.Len(), second.Len())
	require.Len(t, second.Positions(), len(first.Positions()))
}

func TestInputCollectionIsNotMutated(t *testing.T) {
	existing := delivery.NewCollection()
	out, err := delivery.StockSeparator{}.AddItemsToDeliveries(existing, lineitem.NewCalculatedCollection(newItem(t, "A", 1, 1)), testContext())
	require.NoError(t, err)
	require.Equal(t, 0, existing.Len())
	require.Equal(t, 1, out.Len())

	more, err := delivery.StockSeparator{}.AddItemsToDeliveries(out, lineitem.NewCalculatedCollection(newItem(t, "B", 1, 1)), testContext())
	require.NoError(t, err)
	require.Len(t, out.Positions(), 1)
	require.Len(t, more.Positions(), 2)
}

func TestEqualWindowsNeverSplit(t *testing.T) {
	item := newItem(t, "A", 5, 3)
	item.OutOfStockDate = item.InStockDate

	out, err := delivery.StockSeparator{}.AddItemsToDeliveries(delivery.NewCollection(), lineitem.NewCalculatedCollection(item), testContext())
	require.NoError(t, err)
	require.Len(t, out.Positions(), 1)
	require.True(t, out.Positions()[0].Quantity.Equal(decimal.NewFromInt(5)))
}

type plainItem struct{ id string }

func (p plainItem) Identifier() string           { return p.id }
func (p plainItem) Type() string                 { return lineitem.TypeVoucher }
func (p plainItem) Quantity() decimal.Decimal    { return decimal.NewFromInt(1) }
func (p plainItem) Price() pricing.Price         { return pricing.Price{} }
func (p plainItem) LineItem() *lineitem.LineItem { return nil }

func TestNonDeliverableItemsAreSkipped(t *testing.T) {
	out, err := delivery.StockSeparator{}.AddItemsToDeliveries(delivery.NewCollection(), lineitem.NewCalculatedCollection(plainItem{id: "CODE"}), testContext())
	require.NoError(t, err)
	require.Equal(t, 0, out.Len())
	require.False(t, out.Contains(plainItem{id: "CODE"}))
}

func TestDifferentLocationsGetSeparateDeliveries(t *testing.T) {
	ctx := testContext()
	first, err := delivery.StockSeparator{}.AddItemsToDeliveries(delivery.NewCollection(), lineitem.NewCalculatedCollection(newItem(t, "A", 1, 1)), ctx)
	require.NoError(t, err)

	ctx.ShippingLocation = shop.LocationFromCountry(shop.Country{ID: 3, ISO: "AT"})
	out, err := delivery.StockSeparator{}.AddItemsToDeliveries(first, lineitem.NewCalculatedCollection(newItem(t, "B", 1, 1)), ctx)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
}
