// Package dom defines the rendering target the reconciler mutates.
//
// The reconciler never inspects a target's internal representation; it only
// calls the operations below. Errors returned by a target are treated as
// fatal and propagate to the caller of the operation that triggered them.
package dom

// Listener is an event listener. Listener identity is Go equality on the
// interface value, so implementations should be pointer types.
type Listener interface {
	Call(args ...any)
}

// Node is a live node of the rendering target.
type Node interface {
	// SetAttribute sets or overwrites an attribute.
	SetAttribute(name, value string) error

	// RemoveAttribute removes an attribute. Removing an absent attribute is
	// not an error.
	RemoveAttribute(name string) error

	// AddEventListener registers l for event.
	AddEventListener(event string, l Listener) error

	// RemoveEventListener unregisters l for event.
	RemoveEventListener(event string, l Listener) error

	// SetTextContent replaces all children with text.
	SetTextContent(text string) error

	// AppendChild moves or inserts child as the last child.
	AppendChild(child Node) error

	// InsertBefore moves or inserts child immediately before ref.
	// A nil ref appends.
	InsertBefore(child, ref Node) error

	// RemoveChild detaches child from this node.
	RemoveChild(child Node) error

	// Parent returns the parent node, or nil when detached.
	Parent() Node

	// NextSibling returns the following sibling, or nil.
	NextSibling() Node

	// FirstChild returns the first child, or nil.
	FirstChild() Node
}

// Document creates nodes.
type Document interface {
	CreateElement(tag string) (Node, error)
}
