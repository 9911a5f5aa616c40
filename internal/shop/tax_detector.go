package shop

import "strings"

// TaxDetector decides the price presentation mode for a context.
type TaxDetector struct{}

// UseGross reports whether prices are presented including tax.
func (TaxDetector) UseGross(ctx Context) bool {
	return ctx.CustomerGroup.DisplayGross
}

// IsNetDelivery reports whether the shipment is exempt from tax altogether.
func (TaxDetector) IsNetDelivery(ctx Context) bool {
	country := ctx.ShippingLocation.ResolvedCountry()
	if country.TaxFree {
		return true
	}
	if !country.TaxFreeForVatID {
		return false
	}
	if addr := ctx.ShippingLocation.Address; addr != nil && strings.TrimSpace(addr.VatID) != "" {
		return true
	}
	return ctx.Customer != nil && strings.TrimSpace(ctx.Customer.VatID) != ""
}
