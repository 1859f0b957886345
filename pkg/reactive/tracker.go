package reactive

import (
	"fmt"
	"slices"
	"strings"
	"unsafe"
)

// targetID is the identity of a raw object in the edge store.
// It holds the map pointer so the object outlives its edges' creation, which
// mirrors the never-evicting store.
type targetID = unsafe.Pointer

// EdgePolicy controls what happens to a computation's edges when it re-runs.
type EdgePolicy uint8

const (
	// RetainEdges never removes an edge. A computation stays subscribed to
	// every key it has ever read.
	RetainEdges EdgePolicy = iota

	// ClearEdgesOnRun removes a computation's edges before each run, so only
	// the keys read during the latest run trigger it.
	ClearEdgesOnRun
)

// String returns the configuration name of the policy.
func (p EdgePolicy) String() string {
	switch p {
	case RetainEdges:
		return "retain"
	case ClearEdgesOnRun:
		return "clear"
	default:
		return "unknown"
	}
}

// ParseEdgePolicy parses "retain" or "clear".
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "retain":
		return RetainEdges, nil
	case "clear":
		return ClearEdgesOnRun, nil
	default:
		return RetainEdges, fmt.Errorf("reactive: unknown edge policy %q", s)
	}
}

// Observer receives tracker activity. Used for metrics; all methods are
// called synchronously on the tracker's goroutine.
type Observer interface {
	// Tracked is called when a read records a new edge.
	Tracked(key string)

	// Triggered is called when a write notifies dependents of key.
	Triggered(key string, dependents int)

	// Ran is called after every computation run with the current edge count.
	Ran(edges int)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEdgePolicy sets the edge retention policy. Default: RetainEdges.
func WithEdgePolicy(p EdgePolicy) Option {
	return func(t *Tracker) {
		t.policy = p
	}
}

// WithObserver installs an observer for tracker activity.
func WithObserver(o Observer) Option {
	return func(t *Tracker) {
		t.observer = o
	}
}

// depSet is an insertion-ordered set of computations.
type depSet struct {
	list []*Computation
}

func (s *depSet) add(c *Computation) bool {
	if slices.Contains(s.list, c) {
		return false
	}
	s.list = append(s.list, c)
	return true
}

func (s *depSet) remove(c *Computation) bool {
	if i := slices.Index(s.list, c); i != -1 {
		s.list = slices.Delete(s.list, i, i+1)
		return true
	}
	return false
}

// Tracker maintains the dependency graph between reactive objects and
// computations.
type Tracker struct {
	// deps maps target -> key -> computations that read it.
	deps map[targetID]map[string]*depSet

	// active is the currently running computation, or nil.
	active *Computation

	edges    int
	policy   EdgePolicy
	observer Observer
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		deps: make(map[targetID]map[string]*depSet),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Policy returns the tracker's edge policy.
func (t *Tracker) Policy() EdgePolicy {
	return t.policy
}

// Active returns the computation currently running, or nil.
func (t *Tracker) Active() *Computation {
	return t.active
}

// EdgeCount returns the number of (target, key, computation) edges stored.
func (t *Tracker) EdgeCount() int {
	return t.edges
}

// Run executes c immediately with c as the active computation. Reads made
// synchronously during the call, including inside nested calls, are
// attributed to c. The slot is cleared, not restored, when c returns.
func (t *Tracker) Run(c *Computation) error {
	if t.policy == ClearEdgesOnRun {
		t.clearEdges(c)
	}

	t.active = c
	defer func() {
		t.active = nil
	}()

	c.runs++
	err := c.fn()

	if t.observer != nil {
		t.observer.Ran(t.edges)
	}
	return err
}

// Effect creates a computation from fn and runs it once.
func (t *Tracker) Effect(fn func()) *Computation {
	c := NewComputation(func() error {
		fn()
		return nil
	})
	_ = t.Run(c)
	return c
}

// EffectE is Effect for bodies that can fail. The error of the first run is
// returned alongside the computation.
func (t *Tracker) EffectE(fn func() error) (*Computation, error) {
	c := NewComputation(fn)
	return c, t.Run(c)
}

// Record adds an edge from (o, key) to the active computation.
// Without an active computation it does nothing.
func (t *Tracker) Record(o *Object, key string) {
	t.record(o.id, key)
}

// Notify re-runs every computation that has read (o, key), in the order
// they first read it. It stops at the first failing computation and returns
// its error.
func (t *Tracker) Notify(o *Object, key string) error {
	return t.notify(o.id, key)
}

func (t *Tracker) record(target targetID, key string) {
	c := t.active
	if c == nil {
		return
	}

	keys := t.deps[target]
	if keys == nil {
		keys = make(map[string]*depSet)
		t.deps[target] = keys
	}
	set := keys[key]
	if set == nil {
		set = &depSet{}
		keys[key] = set
	}
	if !set.add(c) {
		return
	}

	t.edges++
	if t.policy == ClearEdgesOnRun {
		c.deps = append(c.deps, edgeRef{target: target, key: key})
	}
	if t.observer != nil {
		t.observer.Tracked(key)
	}
}

func (t *Tracker) notify(target targetID, key string) error {
	set := t.deps[target][key]
	if set == nil {
		return nil
	}

	// Runs may add or remove edges on this key; iterate a copy.
	dependents := slices.Clone(set.list)
	if t.observer != nil {
		t.observer.Triggered(key, len(dependents))
	}

	for _, c := range dependents {
		if err := t.Run(c); err != nil {
			return err
		}
	}
	return nil
}

// clearEdges removes every edge owned by c.
func (t *Tracker) clearEdges(c *Computation) {
	for _, ref := range c.deps {
		keys := t.deps[ref.target]
		if keys == nil {
			continue
		}
		set := keys[ref.key]
		if set == nil {
			continue
		}
		if set.remove(c) {
			t.edges--
		}
		if len(set.list) == 0 {
			delete(keys, ref.key)
		}
		if len(keys) == 0 {
			delete(t.deps, ref.target)
		}
	}
	c.deps = c.deps[:0]
}
