// Package reactive provides the dependency-tracking core of vrt.
//
// A Tracker maintains a graph from (reactive object, key) pairs to the
// computations that read them. Reads performed through an Object while a
// computation is active record an edge; writes re-run every computation
// edged to the written key, synchronously and depth-first.
//
// # Core Types
//
// Tracker owns the edge store and the single active-computation slot.
// Computation is a tracked callable. Object is the reactive wrapper over a
// plain map[string]any.
//
//	t := reactive.NewTracker()
//	state := t.Reactive(map[string]any{"text": "Hello"})
//
//	t.Effect(func() {
//	    fmt.Println(state.Get("text"))
//	})
//
//	state.Set("text", "World") // prints "World"
//
// # Semantics
//
// The active slot is a single slot, not a stack: Run overwrites it and clears
// it when the computation returns. There is no batching and no equality check
// on writes, so every write to a tracked key re-runs its dependents, even when
// the value is unchanged. Reactivity is shallow: nested maps returned from
// Get are plain values unless wrapped explicitly.
//
// Edges are retained forever by default (RetainEdges). ClearEdgesOnRun drops a
// computation's previous edges before each re-run, which bounds memory under
// update churn; it is opt-in because it changes which stale keys still
// trigger a computation.
//
// A Tracker is not safe for concurrent use.
package reactive
