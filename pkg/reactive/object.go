package reactive

import (
	"fmt"
	"reflect"
	"sort"
)

// Object is a reactive wrapper around a map[string]any.
// Get records a dependency for the active computation; Set assigns and then
// re-runs the computations that have read the key.
type Object struct {
	tracker *Tracker
	raw     map[string]any
	id      targetID
}

// Reactive wraps raw. The returned Object reads and writes raw in place.
// Wrapping the same map twice returns two wrappers that share edges.
func (t *Tracker) Reactive(raw map[string]any) *Object {
	if raw == nil {
		raw = make(map[string]any)
	}
	return &Object{
		tracker: t,
		raw:     raw,
		id:      reflect.ValueOf(raw).UnsafePointer(),
	}
}

// Tracker returns the tracker this object reports to.
func (o *Object) Tracker() *Tracker {
	return o.tracker
}

// Get returns the value stored under key, or nil when absent, and records
// the read. Nested values are returned as-is.
func (o *Object) Get(key string) any {
	o.tracker.record(o.id, key)
	return o.raw[key]
}

// Set stores value under key and re-runs the dependents of key.
// Writing an unread key notifies nobody, even when it defines a new key.
// The returned error is the first failure of a re-run dependent.
func (o *Object) Set(key string, value any) error {
	o.raw[key] = value
	return o.tracker.notify(o.id, key)
}

// Has reports whether key is present. It does not record a dependency.
func (o *Object) Has(key string) bool {
	_, ok := o.raw[key]
	return ok
}

// Keys returns the keys in sorted order without recording dependencies.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.raw))
	for k := range o.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.raw)
}

// Raw returns the underlying map. Reads and writes through it are untracked.
func (o *Object) Raw() map[string]any {
	return o.raw
}

// String implements fmt.Stringer without recording dependencies.
func (o *Object) String() string {
	return fmt.Sprintf("reactive%v", o.raw)
}

// GetAs reads key through o and converts it to T.
// The read is recorded even when the conversion fails.
func GetAs[T any](o *Object, key string) (T, bool) {
	v, ok := o.Get(key).(T)
	return v, ok
}
