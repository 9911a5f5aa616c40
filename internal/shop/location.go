package shop

// Area groups countries for shipping purposes.
type Area struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Country is a shipping destination with its tax exemption flags.
type Country struct {
	ID              int    `json:"id"`
	ISO             string `json:"iso"`
	Name            string `json:"name"`
	TaxFree         bool   `json:"taxFree"`
	TaxFreeForVatID bool   `json:"taxFreeForVatId"`
	Area            Area   `json:"area"`
}

// State is a country subdivision.
type State struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Country Country `json:"country"`
}

// Address is a concrete customer address.
type Address struct {
	ID       int     `json:"id"`
	Street   string  `json:"street"`
	ZipCode  string  `json:"zipCode"`
	City     string  `json:"city"`
	Country  Country `json:"country"`
	State    *State  `json:"state,omitempty"`
	VatID    string  `json:"vatId,omitempty"`
	Company  string  `json:"company,omitempty"`
	LastName string  `json:"lastName,omitempty"`
}

// ShippingLocation is where deliveries are shipped to. An address takes precedence
// over an explicit state, which takes precedence over the country.
type ShippingLocation struct {
	Country Country  `json:"country"`
	State   *State   `json:"state,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// LocationFromCountry builds a location that only knows its country.
func LocationFromCountry(country Country) ShippingLocation {
	return ShippingLocation{Country: country}
}

// LocationFromState builds a location from a state, taking the state's country.
func LocationFromState(state State) ShippingLocation {
	s := state
	return ShippingLocation{Country: state.Country, State: &s}
}

// LocationFromAddress builds a location from a full address.
func LocationFromAddress(address Address) ShippingLocation {
	a := address
	return ShippingLocation{Country: address.Country, State: address.State, Address: &a}
}

// ResolvedCountry returns the effective country of the location.
func (l ShippingLocation) ResolvedCountry() Country {
	if l.Address != nil {
		return l.Address.Country
	}
	if l.State != nil {
		return l.State.Country
	}
	return l.Country
}

// ResolvedState returns the effective state of the location, if any.
func (l ShippingLocation) ResolvedState() *State {
	if l.Address != nil {
		return l.Address.State
	}
	return l.State
}

// Key identifies the location for grouping deliveries.
func (l ShippingLocation) Key() string {
	key := "c" + itoa(l.ResolvedCountry().ID)
	if st := l.ResolvedState(); st != nil {
		key += ":s" + itoa(st.ID)
	}
	if l.Address != nil {
		key += ":a" + itoa(l.Address.ID)
	}
	return key
}

// Equal reports whether two locations group into the same delivery.
func (l ShippingLocation) Equal(other ShippingLocation) bool {
	return l.Key() == other.Key()
}
