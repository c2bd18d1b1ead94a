// Package target defines the key-value containers a proxy mediates.
//
// A proxy holds a reference to its target, never a copy: writes made directly
// to the target are visible through the proxy and the other way round.
package target

import (
	"maps"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Target is a string-keyed container.
type Target interface {
	// Get returns the value stored under key and whether key is present.
	Get(key string) (any, bool)

	// Set stores value under key and reports whether the value was stored.
	Set(key string, value any) bool

	// Delete removes key and reports whether the removal happened.
	Delete(key string) bool

	// Has reports whether key is present, regardless of its value.
	Has(key string) bool

	// Keys returns the present keys.
	Keys() []string
}

// Pair is a key and value used to seed an Ordered target.
type Pair struct {
	Key   string
	Value any
}

// Ordered is a Target that enumerates keys in insertion order.
// Overwriting a key keeps its original position.
type Ordered struct {
	m *orderedmap.OrderedMap[string, any]
}

var _ Target = (*Ordered)(nil)

// NewOrdered creates an Ordered target seeded with pairs, in order.
func NewOrdered(pairs ...Pair) *Ordered {
	o := &Ordered{m: orderedmap.New[string, any]()}
	for _, p := range pairs {
		o.m.Set(p.Key, p.Value)
	}
	return o
}

// Get implements Target.
func (o *Ordered) Get(key string) (any, bool) {
	return o.m.Get(key)
}

// Set implements Target.
func (o *Ordered) Set(key string, value any) bool {
	o.m.Set(key, value)
	return true
}

// Delete implements Target.
func (o *Ordered) Delete(key string) bool {
	_, present := o.m.Delete(key)
	return present
}

// Has implements Target.
func (o *Ordered) Has(key string) bool {
	_, present := o.m.Get(key)
	return present
}

// Keys implements Target.
func (o *Ordered) Keys() []string {
	keys := make([]string, 0, o.m.Len())
	for pair := o.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of keys.
func (o *Ordered) Len() int {
	return o.m.Len()
}

// Map adapts a caller-owned Go map. Keys are enumerated in sorted order.
type Map map[string]any

var _ Target = Map(nil)

// Get implements Target.
func (m Map) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Set implements Target. Setting on a nil Map panics, like any nil map write.
func (m Map) Set(key string, value any) bool {
	m[key] = value
	return true
}

// Delete implements Target.
func (m Map) Delete(key string) bool {
	if _, ok := m[key]; !ok {
		return false
	}
	delete(m, key)
	return true
}

// Has implements Target.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Keys implements Target.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Sealed wraps a Target so that existing keys stay writable while writes of
// new keys and deletes fail.
type Sealed struct {
	inner Target
}

var _ Target = (*Sealed)(nil)

// Seal returns a sealed view of t.
func Seal(t Target) *Sealed {
	return &Sealed{inner: t}
}

// Get implements Target.
func (s *Sealed) Get(key string) (any, bool) {
	return s.inner.Get(key)
}

// Set implements Target. Keys not already present are refused.
func (s *Sealed) Set(key string, value any) bool {
	if !s.inner.Has(key) {
		return false
	}
	return s.inner.Set(key, value)
}

// Delete implements Target. It always reports false.
func (s *Sealed) Delete(string) bool {
	return false
}

// Has implements Target.
func (s *Sealed) Has(key string) bool {
	return s.inner.Has(key)
}

// Keys implements Target.
func (s *Sealed) Keys() []string {
	return s.inner.Keys()
}
