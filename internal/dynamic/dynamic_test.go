package dynamic_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/dynamic"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/product"
	"github.com/noah-isme/toko-cart/internal/shop"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func context19() shop.Context {
	return shop.Context{
		CustomerGroup:    shop.CustomerGroup{Key: "EK", DisplayGross: true},
		ShippingLocation: shop.LocationFromCountry(shop.Country{ID: 2}),
	}
}

// run prices qty shirts (10.00 net, 19%) and applies the default gateways.
func run(t *testing.T, qty string, sc shop.Context) *lineitem.CalculatedCollection {
	t.Helper()
	container := cart.NewContainer("sCart")
	if qty != "0" {
		container.LineItems.Add(lineitem.New("SW1", lineitem.TypeProduct, d(qty)))
	}

	collector := product.Collector{Source: product.StaticSource{"SW1": {Name: "Shirt", Price: d("10"), TaxRate: d("19"), Stock: d("100")}}}
	definitions := auxdata.New()
	collector.Prepare(definitions, container, sc)
	data := auxdata.New()
	require.NoError(t, collector.Fetch(context.Background(), data, definitions, sc))

	now := func() time.Time { return time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC) }
	draft := lineitem.NewCalculatedCollection()
	require.NoError(t, product.Processor{Now: now}.Process(container, draft, data, sc))
	require.NoError(t, dynamic.NewProcessor(pricing.PriceCalculator{}, zerolog.Nop()).Process(container, draft, data, sc))
	return draft
}

func requireTotal(t *testing.T, draft *lineitem.CalculatedCollection, id, want string) lineitem.Calculated {
	t.Helper()
	item, ok := draft.Get(id)
	require.True(t, ok, "%s missing", id)
	require.True(t, d(want).Equal(item.Price().TotalPrice), "%s: got %s", id, item.Price().TotalPrice)
	return item
}

func TestCustomerGroupDiscountUsesHighestReachedThreshold(t *testing.T) {
	sc := context19()
	sc.CustomerGroup.UseDiscount = true
	sc.CustomerGroup.Discounts = []shop.GroupDiscount{
		{Threshold: d("200"), Percentage: d("10")},
		{Threshold: d("50"), Percentage: d("2")},
		{Threshold: d("100"), Percentage: d("5")},
	}

	// goods: 10 x 11.90 = 119.00
	item := requireTotal(t, run(t, "10", sc), dynamic.CustomerGroupDiscountID, "-5.95")
	require.Equal(t, lineitem.TypeDiscount, item.Type())

	sc.CustomerGroup.UseDiscount = false
	require.False(t, run(t, "10", sc).Has(dynamic.CustomerGroupDiscountID))
}

func TestCustomerGroupDiscountBelowThresholds(t *testing.T) {
	sc := context19()
	sc.CustomerGroup.UseDiscount = true
	sc.CustomerGroup.Discounts = []shop.GroupDiscount{{Threshold: d("50"), Percentage: d("2")}}

	require.False(t, run(t, "1", sc).Has(dynamic.CustomerGroupDiscountID))
}

func TestMinimumOrderSurcharge(t *testing.T) {
	sc := context19()
	sc.CustomerGroup.MinimumOrderValue = d("150")
	sc.CustomerGroup.MinimumOrderSurcharge = d("5")

	item := requireTotal(t, run(t, "10", sc), dynamic.MinimumOrderSurchargeID, "5")
	require.Equal(t, lineitem.TypeSurcharge, item.Type())
	require.Equal(t, 1, item.Price().TaxRules.Len())

	sc.CustomerGroup.MinimumOrderValue = d("100")
	require.False(t, run(t, "10", sc).Has(dynamic.MinimumOrderSurchargeID))
}

func TestMinimumOrderSurchargeAppliesCurrencyFactor(t *testing.T) {
	sc := context19()
	sc.Currency = shop.Currency{ISO: "USD", Factor: d("2")}
	sc.CustomerGroup.MinimumOrderValue = d("150")
	sc.CustomerGroup.MinimumOrderSurcharge = d("5")

	// goods: 10 x 23.80 = 238.00, below 300.00
	requireTotal(t, run(t, "10", sc), dynamic.MinimumOrderSurchargeID, "10")
}

func TestPaymentSurcharges(t *testing.T) {
	sc := context19()
	sc.PaymentMethod = &shop.PaymentMethod{Name: "Invoice", Surcharge: d("2"), PercentageSurcharge: d("3")}

	draft := run(t, "10", sc)
	requireTotal(t, draft, dynamic.PaymentSurchargeID, "2")
	requireTotal(t, draft, dynamic.PaymentPercentageSurchargeID, "3.57")
	require.Equal(t, 3, draft.Len())

	sc.PaymentMethod = &shop.PaymentMethod{Name: "Prepayment", PercentageSurcharge: d("-2")}
	item := requireTotal(t, run(t, "10", sc), dynamic.PaymentPercentageSurchargeID, "-2.38")
	require.Equal(t, lineitem.TypeDiscount, item.Type())
}

func TestNoGoodsNoDynamicItems(t *testing.T) {
	sc := context19()
	sc.CustomerGroup.MinimumOrderValue = d("150")
	sc.CustomerGroup.MinimumOrderSurcharge = d("5")
	sc.PaymentMethod = &shop.PaymentMethod{Surcharge: d("2")}

	require.Equal(t, 0, run(t, "0", sc).Len())
}

func TestDynamicItemsAreNotGoods(t *testing.T) {
	sc := context19()
	sc.PaymentMethod = &shop.PaymentMethod{Surcharge: d("2")}

	draft := run(t, "1", sc)
	require.Equal(t, 2, draft.Len())
	require.Equal(t, 1, draft.FilterGoods().Len())
}
