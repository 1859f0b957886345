package memdom

import (
	"slices"
	"strings"
)

// Children returns a copy of the element children.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// ChildAt returns the i-th element child, or nil.
func (e *Element) ChildAt(i int) *Element {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// ParentElement returns the parent, or nil.
func (e *Element) ParentElement() *Element {
	return e.parent
}

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// AttrNames returns attribute names in insertion order.
func (e *Element) AttrNames() []string {
	names := make([]string, len(e.attrs))
	for i, a := range e.attrs {
		names[i] = a.name
	}
	return names
}

// Listeners returns how many listeners are registered for event.
func (e *Element) Listeners(event string) int {
	n := 0
	for _, l := range e.listeners {
		if l.event == event {
			n++
		}
	}
	return n
}

// TextContent returns the concatenated text of e and its descendants.
func (e *Element) TextContent() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	b.WriteString(e.text)
	for _, c := range e.children {
		c.writeText(b)
	}
}

// Dispatch calls every listener registered for event, in registration
// order, with args.
func (e *Element) Dispatch(event string, args ...any) {
	var matched []listener
	for _, l := range e.listeners {
		if l.event == event {
			matched = append(matched, l)
		}
	}
	for _, l := range matched {
		l.l.Call(args...)
	}
}

// Click dispatches a "click" event with no arguments.
func (e *Element) Click() {
	e.Dispatch("click")
}
