package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidContainer is returned when the container input fails validation.
	ErrInvalidContainer = errors.New("cart: invalid container")
	// ErrNotConverged is returned when validators keep requesting recalculation.
	ErrNotConverged = errors.New("cart: calculation did not converge")
)

// Level classifies a cart error.
type Level int

const (
	// LevelWarning is informational.
	LevelWarning Level = iota
	// LevelError blocks checkout.
	LevelError
)

// String returns the lower case name of the level.
func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// MarshalJSON encodes the level by name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the level name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "warning":
		*l = LevelWarning
	case "error":
		*l = LevelError
	default:
		return fmt.Errorf("unknown error level %q", name)
	}
	return nil
}

// Error is a validation result attached to a cart.
type Error struct {
	Level      Level  `json:"level"`
	MessageKey string `json:"messageKey"`
	Message    string `json:"message"`
}

// Warning builds a warning level error.
func Warning(key, message string) Error {
	return Error{Level: LevelWarning, MessageKey: key, Message: message}
}

// Blocking builds an error level entry.
func Blocking(key, message string) Error {
	return Error{Level: LevelError, MessageKey: key, Message: message}
}

// ErrorCollection is an ordered list of cart errors without duplicates.
type ErrorCollection struct {
	items []Error
}

// Add appends errors not yet present (same key and message).
func (c *ErrorCollection) Add(errs ...Error) {
	for _, e := range errs {
		if c.contains(e) {
			continue
		}
		c.items = append(c.items, e)
	}
}

func (c *ErrorCollection) contains(e Error) bool {
	for _, existing := range c.items {
		if existing.MessageKey == e.MessageKey && existing.Message == e.Message {
			return true
		}
	}
	return false
}

// Has reports whether an error with key exists.
func (c *ErrorCollection) Has(key string) bool {
	for _, e := range c.items {
		if e.MessageKey == key {
			return true
		}
	}
	return false
}

// HasLevel reports whether an error of level exists.
func (c *ErrorCollection) HasLevel(level Level) bool {
	for _, e := range c.items {
		if e.Level == level {
			return true
		}
	}
	return false
}

// Len returns the number of errors.
func (c *ErrorCollection) Len() int { return len(c.items) }

// All returns a copy of the errors.
func (c *ErrorCollection) All() []Error {
	return append([]Error(nil), c.items...)
}

// Clone returns an independent copy.
func (c *ErrorCollection) Clone() *ErrorCollection {
	out := &ErrorCollection{}
	if c != nil {
		out.items = c.All()
	}
	return out
}

// Clear removes all errors.
func (c *ErrorCollection) Clear() { c.items = nil }

// MarshalJSON encodes the errors as an array.
func (c *ErrorCollection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.All())
}

// UnmarshalJSON decodes an array of errors.
func (c *ErrorCollection) UnmarshalJSON(data []byte) error {
	var items []Error
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	c.Clear()
	c.Add(items...)
	return nil
}
