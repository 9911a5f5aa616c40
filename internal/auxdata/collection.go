// Package auxdata holds data fetched ahead of a cart calculation so that the
// pricing, rule and delivery logic never has to perform I/O.
package auxdata

// Keyed is implemented by entries that know the key they are stored under.
type Keyed interface {
	DataKey() string
}

// Collection is an insertion ordered key/value store. It is not safe for
// concurrent mutation; a calculation owns its collection.
type Collection struct {
	keys   []string
	values map[string]any
}

// New builds a collection from keyed entries.
func New(entries ...Keyed) *Collection {
	c := &Collection{values: make(map[string]any, len(entries))}
	for _, e := range entries {
		c.Add(e)
	}
	return c
}

// Add stores a keyed entry, replacing any previous entry under the same key.
func (c *Collection) Add(entry Keyed) {
	if entry == nil {
		return
	}
	c.Set(entry.DataKey(), entry)
}

// Set stores value under key.
func (c *Collection) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the raw value stored under key.
func (c *Collection) Get(key string) (any, bool) {
	if c == nil || c.values == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Collection) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the keys in insertion order.
func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// All returns the values in insertion order.
func (c *Collection) All() []any {
	if c == nil {
		return nil
	}
	out := make([]any, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.values[k])
	}
	return out
}

// Lookup returns the entry under key when it has type T.
func Lookup[T any](c *Collection, key string) (T, bool) {
	var zero T
	raw, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// OfType returns every entry of type T in insertion order.
func OfType[T any](c *Collection) []T {
	var out []T
	for _, raw := range c.All() {
		if v, ok := raw.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
