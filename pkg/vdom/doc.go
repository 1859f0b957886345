// Package vdom provides the virtual tree nodes consumed by the renderer.
//
// A Node describes one unit of rendered output: a Type (an element Tag or a
// component definition), Props, Children and an optional Key. Nodes are built
// programmatically:
//
//	vdom.El("ul", nil, vdom.Kids(
//	    vdom.El("li", nil, vdom.Text("one")).WithKey(1),
//	    vdom.El("li", nil, vdom.Text("two")).WithKey(2),
//	))
//
// # Props
//
// Props whose key starts with "on" bind events and hold a *Handler:
//
//	vdom.El("button", vdom.Props{"onClick": vdom.OnFunc(save)}, vdom.Text("Save"))
//
// Every other prop is an attribute; its value is stringified with PropString
// and a nil value means absent.
//
// # Keys
//
// Keys are stable identity tokens for list reconciliation. Within one
// children list, keys should be present on every entry or on none: a list
// where some entries lack a key is diffed by position.
package vdom
