// Package delivery splits deliverable cart items into shipments by stock
// availability and shipping location.
package delivery

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/pricing"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Date is a delivery window.
type Date struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// NewDate returns the window starting after earliestDays and ending after latestDays from now.
func NewDate(now time.Time, earliestDays, latestDays int) Date {
	return Date{Earliest: now.AddDate(0, 0, earliestDays), Latest: now.AddDate(0, 0, latestDays)}
}

// Equal reports whether both windows are the same instants.
func (d Date) Equal(other Date) bool {
	return d.Earliest.Equal(other.Earliest) && d.Latest.Equal(other.Latest)
}

// Information is the stock and shipping data of a deliverable item.
// Embedding it provides the Deliverable accessors.
type Information struct {
	StockQuantity  decimal.Decimal `json:"stock"`
	ItemWeight     decimal.Decimal `json:"weight"`
	InStockDate    Date            `json:"inStockDeliveryDate"`
	OutOfStockDate Date            `json:"outOfStockDeliveryDate"`
}

// Stock returns the available quantity.
func (i Information) Stock() decimal.Decimal { return i.StockQuantity }

// Weight returns the weight of a single unit.
func (i Information) Weight() decimal.Decimal { return i.ItemWeight }

// InStockDeliveryDate returns the window for quantities covered by stock.
func (i Information) InStockDeliveryDate() Date { return i.InStockDate }

// OutOfStockDeliveryDate returns the window for quantities exceeding stock.
func (i Information) OutOfStockDeliveryDate() Date { return i.OutOfStockDate }

// Deliverable is a calculated item that is shipped.
type Deliverable interface {
	lineitem.Calculated
	Stock() decimal.Decimal
	Weight() decimal.Decimal
	InStockDeliveryDate() Date
	OutOfStockDeliveryDate() Date
}

// Position is a quantity of one item shipped within a delivery.
type Position struct {
	Identifier string              `json:"identifier"`
	Item       lineitem.Calculated `json:"-"`
	Quantity   decimal.Decimal     `json:"quantity"`
	Price      pricing.Price       `json:"price"`
	Date       Date                `json:"deliveryDate"`
}

// Delivery is one shipment.
type Delivery struct {
	Positions      []Position            `json:"positions"`
	Date           Date                  `json:"deliveryDate"`
	ShippingMethod shop.ShippingMethod   `json:"shippingMethod"`
	Location       shop.ShippingLocation `json:"location"`
}

// Prices returns the prices of all positions.
func (d Delivery) Prices() pricing.PriceCollection {
	out := make(pricing.PriceCollection, 0, len(d.Positions))
	for _, p := range d.Positions {
		out = append(out, p.Price)
	}
	return out
}

// Weight returns the total weight of the delivery.
func (d Delivery) Weight() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range d.Positions {
		if item, ok := p.Item.(Deliverable); ok {
			sum = sum.Add(item.Weight().Mul(p.Quantity))
		}
	}
	return sum
}

func (d Delivery) clone() Delivery {
	d.Positions = append([]Position(nil), d.Positions...)
	return d
}

// Collection is an ordered list of deliveries.
type Collection struct {
	deliveries []Delivery
}

// NewCollection returns a collection holding deliveries.
func NewCollection(deliveries ...Delivery) Collection {
	c := Collection{}
	for _, d := range deliveries {
		c.deliveries = append(c.deliveries, d.clone())
	}
	return c
}

// Len returns the number of deliveries.
func (c Collection) Len() int { return len(c.deliveries) }

// All returns copies of the deliveries.
func (c Collection) All() []Delivery {
	out := make([]Delivery, 0, len(c.deliveries))
	for _, d := range c.deliveries {
		out = append(out, d.clone())
	}
	return out
}

// Clone returns a deep copy.
func (c Collection) Clone() Collection {
	return Collection{deliveries: c.All()}
}

// Get returns the delivery for date and location.
func (c Collection) Get(date Date, location shop.ShippingLocation) (Delivery, bool) {
	if i := c.index(date, location); i >= 0 {
		return c.deliveries[i].clone(), true
	}
	return Delivery{}, false
}

func (c Collection) index(date Date, location shop.ShippingLocation) int {
	for i, d := range c.deliveries {
		if d.Date.Equal(date) && d.Location.Equal(location) {
			return i
		}
	}
	return -1
}

// Contains reports whether any delivery holds a position for item.
func (c Collection) Contains(item lineitem.Calculated) bool {
	for _, d := range c.deliveries {
		for _, p := range d.Positions {
			if p.Identifier == item.Identifier() {
				return true
			}
		}
	}
	return false
}

// Positions returns all positions across deliveries.
func (c Collection) Positions() []Position {
	var out []Position
	for _, d := range c.deliveries {
		out = append(out, d.Positions...)
	}
	return out
}

// QuantityOf returns the shipped quantity of identifier across deliveries.
func (c Collection) QuantityOf(identifier string) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range c.Positions() {
		if p.Identifier == identifier {
			sum = sum.Add(p.Quantity)
		}
	}
	return sum
}

// MarshalJSON encodes the deliveries as an array.
func (c Collection) MarshalJSON() ([]byte, error) {
	if c.deliveries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.deliveries)
}

func (c *Collection) add(position Position, location shop.ShippingLocation, method shop.ShippingMethod) {
	if i := c.index(position.Date, location); i >= 0 {
		c.deliveries[i].Positions = append(c.deliveries[i].Positions, position)
		return
	}
	c.deliveries = append(c.deliveries, Delivery{
		Positions:      []Position{position},
		Date:           position.Date,
		ShippingMethod: method,
		Location:       location,
	})
}
