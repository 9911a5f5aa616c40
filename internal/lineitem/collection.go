package lineitem

import (
	"encoding/json"
	"maps"
)

// MergePolicy decides what Add does with an identifier already present.
type MergePolicy int

const (
	// PolicyOverwrite replaces the existing item.
	PolicyOverwrite MergePolicy = iota
	// PolicyStack sums the quantities into the existing item.
	PolicyStack
)

// Collection is an insertion ordered set of line items keyed by identifier.
type Collection struct {
	policy MergePolicy
	keys   []string
	items  map[string]LineItem
}

// NewCollection returns an empty collection using policy.
func NewCollection(policy MergePolicy, items ...LineItem) *Collection {
	c := &Collection{policy: policy, items: make(map[string]LineItem)}
	c.Fill(items...)
	return c
}

// Policy returns the merge policy.
func (c *Collection) Policy() MergePolicy { return c.policy }

// Add inserts item, merging it with an existing item according to the policy.
func (c *Collection) Add(item LineItem) {
	existing, ok := c.items[item.Identifier]
	if !ok {
		c.keys = append(c.keys, item.Identifier)
		c.items[item.Identifier] = item
		return
	}
	if c.policy == PolicyStack {
		existing.Quantity = existing.Quantity.Add(item.Quantity)
		c.items[item.Identifier] = existing
		return
	}
	c.items[item.Identifier] = item
}

// Fill adds all items.
func (c *Collection) Fill(items ...LineItem) {
	for _, item := range items {
		c.Add(item)
	}
}

// Get returns the item with identifier.
func (c *Collection) Get(identifier string) (LineItem, bool) {
	item, ok := c.items[identifier]
	return item, ok
}

// Has reports whether identifier is present.
func (c *Collection) Has(identifier string) bool {
	_, ok := c.items[identifier]
	return ok
}

// Exists reports whether an item with the same identifier is present.
func (c *Collection) Exists(item LineItem) bool {
	return c.Has(item.Identifier)
}

// Set replaces the item with the same identifier, ignoring the merge policy.
func (c *Collection) Set(item LineItem) {
	if !c.Has(item.Identifier) {
		c.keys = append(c.keys, item.Identifier)
	}
	c.items[item.Identifier] = item
}

// Remove deletes the item with identifier, if present.
func (c *Collection) Remove(identifier string) {
	if _, ok := c.items[identifier]; !ok {
		return
	}
	delete(c.items, identifier)
	for i, k := range c.keys {
		if k == identifier {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			break
		}
	}
}

// RemoveElement deletes item by its identifier.
func (c *Collection) RemoveElement(item LineItem) {
	c.Remove(item.Identifier)
}

// Clear removes all items.
func (c *Collection) Clear() {
	c.keys = nil
	c.items = make(map[string]LineItem)
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.keys) }

// Identifiers returns the identifiers in insertion order.
func (c *Collection) Identifiers() []string {
	return append([]string(nil), c.keys...)
}

// All returns the items in insertion order.
func (c *Collection) All() []LineItem {
	out := make([]LineItem, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.items[k])
	}
	return out
}

// FilterType returns a new collection with the items of typ.
func (c *Collection) FilterType(typ string) *Collection {
	out := NewCollection(c.policy)
	for _, item := range c.All() {
		if item.Type == typ {
			out.Add(item)
		}
	}
	return out
}

// Payloads returns the payload of every item keyed by identifier.
func (c *Collection) Payloads() map[string]map[string]any {
	out := make(map[string]map[string]any, len(c.keys))
	for _, k := range c.keys {
		out[k] = c.items[k].Payload
	}
	return out
}

// Clone returns a deep enough copy for independent mutation.
func (c *Collection) Clone() *Collection {
	out := &Collection{policy: c.policy, keys: append([]string(nil), c.keys...), items: make(map[string]LineItem, len(c.items))}
	for k, item := range c.items {
		item.Payload = maps.Clone(item.Payload)
		out.items[k] = item
	}
	return out
}

// MarshalJSON encodes the items as an array.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}

// UnmarshalJSON decodes an array of items, keeping the current policy.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	policy := c.policy
	*c = *NewCollection(policy, items...)
	return nil
}
