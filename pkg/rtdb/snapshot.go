package rtdb

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Snapshot is an immutable view over a JSON-shaped subtree read from the
// store. Branch nodes are map[string]any; leaves are scalars.
type Snapshot struct {
	value any
}

// NewSnapshot wraps a raw value. The value is normalized through JSON so maps
// and numbers carry the same types regardless of backend.
func NewSnapshot(value any) (Snapshot, error) {
	normalized, err := normalizeValue(value)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{value: normalized}, nil
}

// Exists reports whether the snapshot holds any value.
func (s Snapshot) Exists() bool {
	return s.value != nil
}

// Value returns the raw underlying value.
func (s Snapshot) Value() any {
	return s.value
}

// Child returns the named child, or a non-existent snapshot.
func (s Snapshot) Child(key string) Snapshot {
	branch, ok := s.value.(map[string]any)
	if !ok {
		return Snapshot{}
	}
	return Snapshot{value: branch[key]}
}

// Keys returns the child keys in lexical order.
func (s Snapshot) Keys() []string {
	branch, ok := s.value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(branch))
	for key := range branch {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of immediate children.
func (s Snapshot) Len() int {
	branch, ok := s.value.(map[string]any)
	if !ok {
		return 0
	}
	return len(branch)
}

// Each visits children in key order until fn returns false.
func (s Snapshot) Each(fn func(key string, child Snapshot) bool) {
	for _, key := range s.Keys() {
		if !fn(key, s.Child(key)) {
			return
		}
	}
}

// Decode unmarshals the snapshot value into target via JSON.
func (s Snapshot) Decode(target any) error {
	if s.value == nil {
		return fmt.Errorf("rtdb: decode of non-existent snapshot")
	}
	data, err := json.Marshal(s.value)
	if err != nil {
		return fmt.Errorf("rtdb: encode snapshot: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("rtdb: decode snapshot: %w", err)
	}
	return nil
}

// Bool returns the scalar value as a bool, or fallback.
func (s Snapshot) Bool(fallback bool) bool {
	if v, ok := s.value.(bool); ok {
		return v
	}
	return fallback
}

// String returns the scalar value as a string, or fallback.
func (s Snapshot) String(fallback string) string {
	if v, ok := s.value.(string); ok {
		return v
	}
	return fallback
}

// Float returns the scalar value as a float64, or fallback.
func (s Snapshot) Float(fallback float64) float64 {
	switch v := s.value.(type) {
	case float64:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return fallback
}

// Int returns the scalar value as an int, or fallback. Fractional values
// truncate toward zero.
func (s Snapshot) Int(fallback int) int {
	switch v := s.value.(type) {
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	}
	return fallback
}

func normalizeValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("rtdb: normalize value: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, fmt.Errorf("rtdb: normalize value: %w", err)
	}
	return normalized, nil
}
