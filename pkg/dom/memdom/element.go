package memdom

import (
	"fmt"
	"slices"

	"github.com/vango-dev/vrt/pkg/dom"
	"github.com/vango-dev/vrt/pkg/oplog"
)

type attr struct {
	name  string
	value string
}

type listener struct {
	event string
	l     dom.Listener
}

// Element is a node of the in-memory tree.
type Element struct {
	doc       *Document
	id        uint64
	tag       string
	attrs     []attr
	listeners []listener
	text      string
	children  []*Element
	parent    *Element
}

var _ dom.Node = (*Element)(nil)

// ID returns the document-unique node id used in the op log.
func (e *Element) ID() uint64 { return e.id }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Document returns the document that created e.
func (e *Element) Document() *Document { return e.doc }

// SetAttribute implements dom.Node.
func (e *Element) SetAttribute(name, value string) error {
	if !ValidAttrName(name) {
		return fmt.Errorf("%w: attribute %q", ErrInvalidName, name)
	}
	e.doc.emit(oplog.Op{Kind: oplog.KindSetAttr, Node: e.id, Name: name, Value: value})
	for i := range e.attrs {
		if e.attrs[i].name == name {
			e.attrs[i].value = value
			return nil
		}
	}
	e.attrs = append(e.attrs, attr{name: name, value: value})
	return nil
}

// RemoveAttribute implements dom.Node.
func (e *Element) RemoveAttribute(name string) error {
	e.doc.emit(oplog.Op{Kind: oplog.KindRemoveAttr, Node: e.id, Name: name})
	e.attrs = slices.DeleteFunc(e.attrs, func(a attr) bool { return a.name == name })
	return nil
}

// AddEventListener implements dom.Node. Registering the same listener twice
// for one event is a no-op.
func (e *Element) AddEventListener(event string, l dom.Listener) error {
	e.doc.emit(oplog.Op{Kind: oplog.KindAddListener, Node: e.id, Name: event})
	for _, existing := range e.listeners {
		if existing.event == event && existing.l == l {
			return nil
		}
	}
	e.listeners = append(e.listeners, listener{event: event, l: l})
	return nil
}

// RemoveEventListener implements dom.Node.
func (e *Element) RemoveEventListener(event string, l dom.Listener) error {
	e.doc.emit(oplog.Op{Kind: oplog.KindRemoveListener, Node: e.id, Name: event})
	e.listeners = slices.DeleteFunc(e.listeners, func(x listener) bool {
		return x.event == event && x.l == l
	})
	return nil
}

// SetTextContent implements dom.Node.
func (e *Element) SetTextContent(text string) error {
	e.doc.emit(oplog.Op{Kind: oplog.KindSetText, Node: e.id, Value: text})
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	e.text = text
	return nil
}

// AppendChild implements dom.Node.
func (e *Element) AppendChild(child dom.Node) error {
	c, err := e.adopt(child)
	if err != nil {
		return err
	}
	e.doc.emit(oplog.Op{Kind: oplog.KindAppend, Node: c.id, Parent: e.id})
	c.detach()
	c.parent = e
	e.children = append(e.children, c)
	return nil
}

// InsertBefore implements dom.Node.
func (e *Element) InsertBefore(child, ref dom.Node) error {
	if ref == nil {
		return e.AppendChild(child)
	}
	c, err := e.adopt(child)
	if err != nil {
		return err
	}
	r, ok := ref.(*Element)
	if !ok {
		return ErrForeignNode
	}
	if r.parent != e {
		return ErrNotFound
	}
	if c == r {
		return nil
	}

	e.doc.emit(oplog.Op{Kind: oplog.KindInsert, Node: c.id, Parent: e.id, Ref: r.id})
	c.detach()
	c.parent = e
	e.children = slices.Insert(e.children, slices.Index(e.children, r), c)
	return nil
}

// RemoveChild implements dom.Node.
func (e *Element) RemoveChild(child dom.Node) error {
	c, ok := child.(*Element)
	if !ok {
		return ErrForeignNode
	}
	if c.parent != e {
		return ErrNotFound
	}
	e.doc.emit(oplog.Op{Kind: oplog.KindRemove, Node: c.id, Parent: e.id})
	c.detach()
	return nil
}

// Parent implements dom.Node.
func (e *Element) Parent() dom.Node {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// NextSibling implements dom.Node.
func (e *Element) NextSibling() dom.Node {
	if e.parent == nil {
		return nil
	}
	siblings := e.parent.children
	i := slices.Index(siblings, e)
	if i == -1 || i+1 >= len(siblings) {
		return nil
	}
	return siblings[i+1]
}

// FirstChild implements dom.Node.
func (e *Element) FirstChild() dom.Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// adopt validates that child can become a child of e.
func (e *Element) adopt(child dom.Node) (*Element, error) {
	c, ok := child.(*Element)
	if !ok || c == nil {
		return nil, ErrForeignNode
	}
	for p := e; p != nil; p = p.parent {
		if p == c {
			return nil, ErrHierarchy
		}
	}
	return c, nil
}

// detach removes e from its parent's child list without recording an op.
func (e *Element) detach() {
	if e.parent == nil {
		return
	}
	p := e.parent
	if i := slices.Index(p.children, e); i != -1 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}
