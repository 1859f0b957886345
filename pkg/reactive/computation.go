package reactive

// Computation is a callable that the Tracker re-runs whenever a value it
// previously read changes.
type Computation struct {
	id uint64
	fn func() error

	// runs counts executions, including the initial one.
	runs int

	// deps records the edges this computation owns. Only maintained under
	// ClearEdgesOnRun.
	deps []edgeRef
}

// edgeRef identifies one (target, key) slot of the edge store.
type edgeRef struct {
	target targetID
	key    string
}

// NewComputation creates a computation that is not yet running.
// Use Tracker.Run to execute it.
func NewComputation(fn func() error) *Computation {
	return &Computation{
		id: nextID(),
		fn: fn,
	}
}

// ID returns the unique identifier for this computation.
func (c *Computation) ID() uint64 {
	return c.id
}

// Runs returns how many times the computation has executed.
func (c *Computation) Runs() int {
	return c.runs
}
