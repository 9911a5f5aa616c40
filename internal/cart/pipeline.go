package cart

import (
	"context"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/shop"
)

// Collector loads the auxiliary data processors and rules need. Prepare
// registers what to load, Fetch loads it.
type Collector interface {
	Prepare(definitions *auxdata.Collection, container *Container, sc shop.Context)
	Fetch(ctx context.Context, data *auxdata.Collection, definitions *auxdata.Collection, sc shop.Context) error
}

// Processor adds calculated items to the draft. It may remove container items
// that can never be priced.
type Processor interface {
	Process(container *Container, draft *lineitem.CalculatedCollection, data *auxdata.Collection, sc shop.Context) error
}

// Validator inspects a calculated cart. It either records errors on the
// container or mutates the container and returns false to request a
// recalculation.
type Validator interface {
	Validate(cart *CalculatedCart, sc shop.Context, data *auxdata.Collection) (bool, error)
}
