package voucher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/noah-isme/toko-cart/internal/auxdata"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/lineitem"
	"github.com/noah-isme/toko-cart/internal/shop"
)

const fetchDefinitionKey = "voucher.fetch"

// FetchDefinition lists the voucher codes to load.
type FetchDefinition struct {
	Codes []string
}

// DataKey implements auxdata.Keyed.
func (FetchDefinition) DataKey() string { return fetchDefinitionKey }

// Source loads vouchers by code. Unknown codes are omitted.
type Source interface {
	Vouchers(ctx context.Context, codes []string) ([]Data, error)
}

// StaticSource serves vouchers from memory.
type StaticSource map[string]Data

// Vouchers implements Source.
func (s StaticSource) Vouchers(_ context.Context, codes []string) ([]Data, error) {
	out := make([]Data, 0, len(codes))
	for _, code := range codes {
		if d, ok := s[code]; ok {
			d.Code = code
			out = append(out, d)
		}
	}
	return out, nil
}

// Collector loads Data for the voucher items of a container. Register it
// before rule collectors so they can see voucher rules.
type Collector struct {
	Source Source
}

// Prepare registers the requested codes.
func (c Collector) Prepare(definitions *auxdata.Collection, container *cart.Container, _ shop.Context) {
	var codes []string
	for _, item := range container.LineItems.FilterType(lineitem.TypeVoucher).All() {
		codes = append(codes, Code(item))
	}
	if len(codes) == 0 {
		return
	}
	definitions.Add(FetchDefinition{Codes: codes})
}

// Fetch loads the registered vouchers into data.
func (c Collector) Fetch(ctx context.Context, data *auxdata.Collection, definitions *auxdata.Collection, _ shop.Context) error {
	def, ok := auxdata.Lookup[FetchDefinition](definitions, fetchDefinitionKey)
	if !ok {
		return nil
	}
	ctx, span := otel.Tracer("voucher.Collector").Start(ctx, "Collector.Fetch")
	defer span.End()

	vouchers, err := c.Source.Vouchers(ctx, def.Codes)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("load vouchers: %w", err)
	}
	for _, d := range vouchers {
		data.Add(d)
	}
	return nil
}
