package vdom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vrt/pkg/dom"
)

// Type identifies what a Node renders: an element Tag or a component
// definition. Two types are the same when they are == equal, so tags compare
// by name and components by pointer.
type Type interface {
	TypeName() string
}

// Tag is an element tag name such as "div".
type Tag string

// TypeName implements Type.
func (t Tag) TypeName() string { return string(t) }

// Children is the content of a Node: Text, List, or nil for none.
type Children interface {
	isChildren()
}

// Text is text content.
type Text string

// List is an ordered sequence of child nodes.
type List []*Node

func (Text) isChildren() {}
func (List) isChildren() {}

// Props holds attributes and event handlers. A nil value means absent.
type Props map[string]any

// Node is the virtual tree node.
//
// A Node is application data: the reconciler only writes El and Component,
// which turns a processed node into the "previous" record of the next pass.
type Node struct {
	Type     Type     // Tag or component definition
	Props    Props    // Attributes, event handlers or component inputs
	Children Children // Text, List or nil
	Key      any      // Reconciliation key; nil means unkeyed. Must be comparable.

	// El is the live rendering-target node, set after mount. For component
	// nodes it mirrors the root of the rendered subtree.
	El dom.Node

	// Component holds the component instance for component nodes.
	Component any
}

// H creates a Node. No validation is performed.
func H(t Type, props Props, children Children) *Node {
	return &Node{
		Type:     t,
		Props:    props,
		Children: children,
	}
}

// El creates an element node for tag.
func El(tag string, props Props, children Children) *Node {
	return H(Tag(tag), props, children)
}

// Kids builds a List, skipping nil entries.
func Kids(nodes ...*Node) List {
	list := make(List, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			list = append(list, n)
		}
	}
	return list
}

// WithKey sets the node's key and returns the node.
func (n *Node) WithKey(key any) *Node {
	n.Key = key
	return n
}

// HasKey reports whether the node carries a key.
func (n *Node) HasKey() bool {
	return n != nil && n.Key != nil
}

// IsElement reports whether the node's type is a Tag.
func (n *Node) IsElement() bool {
	if n == nil {
		return false
	}
	_, ok := n.Type.(Tag)
	return ok
}

// String returns a compact description, for logs and test failures.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("<")
	if n.Type != nil {
		b.WriteString(n.Type.TypeName())
	}
	if n.Key != nil {
		fmt.Fprintf(&b, " key=%v", n.Key)
	}
	b.WriteString(">")
	switch c := n.Children.(type) {
	case Text:
		b.WriteString(string(c))
	case List:
		for _, child := range c {
			b.WriteString(child.String())
		}
	}
	return b.String()
}

// AllKeyed reports whether every entry of list carries a key.
// An empty list is vacuously keyed.
func AllKeyed(list List) bool {
	for _, n := range list {
		if !n.HasKey() {
			return false
		}
	}
	return true
}
