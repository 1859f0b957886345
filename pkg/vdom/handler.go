package vdom

// Handler is an event listener stored under an event-binding prop.
// Handlers are compared by pointer, so reusing the same *Handler across
// renders keeps the listener registered; a new *Handler swaps it.
type Handler struct {
	fn func(args ...any)
}

// On wraps fn as a Handler.
func On(fn func(args ...any)) *Handler {
	return &Handler{fn: fn}
}

// OnFunc wraps a function that ignores event arguments.
func OnFunc(fn func()) *Handler {
	return &Handler{fn: func(...any) { fn() }}
}

// Call invokes the handler. Calling a nil Handler does nothing.
func (h *Handler) Call(args ...any) {
	if h == nil || h.fn == nil {
		return
	}
	h.fn(args...)
}
