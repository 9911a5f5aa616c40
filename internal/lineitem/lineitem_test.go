package lineitem_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
)

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestStackingCollectionSumsQuantities(t *testing.T) {
	c := lineitem.NewCollection(lineitem.PolicyStack)
	c.Add(lineitem.New("SW1", lineitem.TypeProduct, qty(1)))
	c.Add(lineitem.New("SW1", lineitem.TypeProduct, qty(2)))
	c.Add(lineitem.New("SW1", lineitem.TypeProduct, qty(3)))

	require.Equal(t, 1, c.Len())
	item, ok := c.Get("SW1")
	require.True(t, ok)
	require.True(t, item.Quantity.Equal(qty(6)))
}

func TestOverwriteCollectionReplaces(t *testing.T) {
	c := lineitem.NewCollection(lineitem.PolicyOverwrite,
		lineitem.New("SW1", lineitem.TypeProduct, qty(1)),
		lineitem.New("SW2", lineitem.TypeProduct, qty(1)),
		lineitem.New("SW1", lineitem.TypeProduct, qty(4)),
	)
	require.Equal(t, []string{"SW1", "SW2"}, c.Identifiers())
	item, _ := c.Get("SW1")
	require.True(t, item.Quantity.Equal(qty(4)))
}

func TestCollectionRemoveAndClear(t *testing.T) {
	a := lineitem.New("A", lineitem.TypeProduct, qty(1))
	b := lineitem.New("B", lineitem.TypeVoucher, qty(1))
	c := lineitem.NewCollection(lineitem.PolicyStack, a, b)

	require.True(t, c.Exists(a))
	c.RemoveElement(a)
	require.False(t, c.Has("A"))
	require.Equal(t, []string{"B"}, c.Identifiers())

	c.Remove("missing")
	require.Equal(t, 1, c.Len())

	c.Clear()
	require.Equal(t, 0, c.Len())
	require.Empty(t, c.All())
}

func TestFilterTypeKeepsPolicy(t *testing.T) {
	c := lineitem.NewCollection(lineitem.PolicyStack,
		lineitem.New("SW1", lineitem.TypeProduct, qty(1)),
		lineitem.New("CODE", lineitem.TypeVoucher, qty(1)),
		lineitem.New("SW2", lineitem.TypeProduct, qty(1)),
	)
	products := c.FilterType(lineitem.TypeProduct)
	require.Equal(t, []string{"SW1", "SW2"}, products.Identifiers())
	require.Equal(t, lineitem.PolicyStack, products.Policy())
	require.Equal(t, 0, c.FilterType("unknown").Len())
}

func TestPayloads(t *testing.T) {
	c := lineitem.NewCollection(lineitem.PolicyOverwrite,
		lineitem.LineItem{Identifier: "A", Type: lineitem.TypeVoucher, Quantity: qty(1), Payload: map[string]any{"code": "A"}},
		lineitem.LineItem{Identifier: "B", Type: lineitem.TypeProduct, Quantity: qty(1)},
	)
	payloads := c.Payloads()
	require.Equal(t, map[string]any{"code": "A"}, payloads["A"])
	require.Nil(t, payloads["B"])

	item, _ := c.Get("A")
	code, ok := item.PayloadString("code")
	require.True(t, ok)
	require.Equal(t, "A", code)
}

func TestCloneIsIndependent(t *testing.T) {
	c := lineitem.NewCollection(lineitem.PolicyStack,
		lineitem.LineItem{Identifier: "A", Type: lineitem.TypeProduct, Quantity: qty(1), Payload: map[string]any{"k": "v"}},
	)
	clone := c.Clone()
	clone.Add(lineitem.New("A", lineitem.TypeProduct, qty(1)))
	item, _ := clone.Get("A")
	item.Payload["k"] = "changed"

	orig, _ := c.Get("A")
	require.True(t, orig.Quantity.Equal(qty(1)))
	require.Equal(t, "v", orig.Payload["k"])
}

func TestCollectionJSONRoundTripKeepsOrder(t *testing.T) {
	c := lineitem.NewCollection(lineitem.PolicyStack,
		lineitem.New("B", lineitem.TypeProduct, qty(2)),
		lineitem.New("A", lineitem.TypeProduct, qty(1)),
	)
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	decoded := lineitem.NewCollection(lineitem.PolicyStack)
	require.NoError(t, json.Unmarshal(raw, decoded))
	require.Equal(t, []string{"B", "A"}, decoded.Identifiers())
}

func TestValidatorRejectsInvalidItems(t *testing.T) {
	v := lineitem.NewValidator()
	require.NoError(t, v.Struct(lineitem.New("SW1", lineitem.TypeProduct, qty(1))))
	require.Error(t, v.Struct(lineitem.New("", lineitem.TypeProduct, qty(1))))
	require.Error(t, v.Struct(lineitem.New("SW1", "", qty(1))))
	require.Error(t, v.Struct(lineitem.New("SW1", lineitem.TypeProduct, qty(-1))))
}

type fakeItem struct {
	id    string
	goods bool
	total decimal.Decimal
}

func (f fakeItem) Identifier() string           { return f.id }
func (f fakeItem) Type() string                 { return "fake" }
func (f fakeItem) Quantity() decimal.Decimal    { return qty(1) }
func (f fakeItem) Price() pricing.Price         { return pricing.Price{TotalPrice: f.total} }
func (f fakeItem) LineItem() *lineitem.LineItem { return nil }

type fakeGoods struct{ fakeItem }

func (fakeGoods) IsGoods()     {}
func (fakeGoods) IsStackable() {}

func TestCalculatedCollection(t *testing.T) {
	c := lineitem.NewCalculatedCollection(
		fakeGoods{fakeItem{id: "SW1", total: qty(10)}},
		fakeItem{id: "CODE", total: qty(-2)},
	)
	require.Equal(t, 2, c.Len())
	require.True(t, c.HasStackable())
	require.True(t, c.Prices().Sum().Equal(qty(8)))

	goods := c.FilterGoods()
	require.Equal(t, []string{"SW1"}, goods.Identifiers())

	c.Add(fakeItem{id: "CODE", total: qty(-3)})
	require.Equal(t, []string{"SW1", "CODE"}, c.Identifiers())
	require.True(t, c.Prices().Sum().Equal(qty(7)))

	c.Remove("SW1")
	require.False(t, c.Has("SW1"))
	require.False(t, c.HasStackable())
}
