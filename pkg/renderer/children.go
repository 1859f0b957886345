package renderer

import (
	"reflect"

	"github.com/vango-dev/vrt/pkg/dom"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// patchChildren reconciles the children of an element being updated.
func (r *Renderer) patchChildren(prev, next *vdom.Node, el dom.Node) error {
	switch nc := next.Children.(type) {
	case vdom.Text:
		switch pc := prev.Children.(type) {
		case vdom.List:
			if err := r.unmountChildren(pc); err != nil {
				return err
			}
		case vdom.Text:
			if pc == nc {
				return nil
			}
		}
		return el.SetTextContent(string(nc))

	case vdom.List:
		switch pc := prev.Children.(type) {
		case vdom.List:
			if vdom.AllKeyed(pc) {
				return r.patchKeyedChildren(pc, nc, el)
			}
			return r.patchUnkeyedChildren(pc, nc, el)
		case vdom.Text:
			if err := el.SetTextContent(""); err != nil {
				return err
			}
		}
		return r.mountChildren(nc, el, nil)

	default:
		switch pc := prev.Children.(type) {
		case vdom.List:
			return r.unmountChildren(pc)
		case vdom.Text:
			if pc != "" {
				return el.SetTextContent("")
			}
		}
		return nil
	}
}

func (r *Renderer) mountChildren(list vdom.List, el, anchor dom.Node) error {
	for _, child := range list {
		if err := r.patch(nil, child, el, anchor); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) unmountChildren(list vdom.List) error {
	for _, child := range list {
		if err := r.unmount(child); err != nil {
			return err
		}
	}
	return nil
}

// patchUnkeyedChildren pairs children by position, then removes the excess
// or mounts the new tail.
func (r *Renderer) patchUnkeyedChildren(prev, next vdom.List, el dom.Node) error {
	common := min(len(prev), len(next))
	for i := 0; i < common; i++ {
		if err := r.patch(prev[i], next[i], el, nil); err != nil {
			return err
		}
	}
	if len(prev) > len(next) {
		return r.unmountChildren(prev[common:])
	}
	return r.mountChildren(next[common:], el, nil)
}

// patchKeyedChildren reuses children by key. Walking next in order, a
// matched child whose previous index is below the highest index matched so
// far is moved to right after its new predecessor; unmatched children are
// mounted there. Previous children whose key is gone are unmounted.
func (r *Renderer) patchKeyedChildren(prev, next vdom.List, el dom.Node) error {
	lastIndex := 0
	for i, n := range next {
		found := false
		for j, p := range prev {
			if !sameKey(p.Key, n.Key) {
				continue
			}
			found = true
			if err := r.patch(p, n, el, nil); err != nil {
				return err
			}
			if j < lastIndex {
				if host := hostNode(n); host != nil {
					if err := el.InsertBefore(host, anchorAfter(next, i, el)); err != nil {
						return err
					}
					r.metrics.Move()
				}
			} else {
				lastIndex = j
			}
			break
		}
		if !found {
			if err := r.patch(nil, n, el, anchorAfter(next, i, el)); err != nil {
				return err
			}
		}
	}

	for _, p := range prev {
		if !hasKey(next, p.Key) {
			if err := r.unmount(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// anchorAfter returns the node that child i of list must be inserted
// before: the next sibling of child i-1, or the container's first child.
func anchorAfter(list vdom.List, i int, container dom.Node) dom.Node {
	if i == 0 {
		return container.FirstChild()
	}
	if host := hostNode(list[i-1]); host != nil {
		return host.NextSibling()
	}
	return nil
}

func hasKey(list vdom.List, key any) bool {
	for _, n := range list {
		if sameKey(n.Key, key) {
			return true
		}
	}
	return false
}

// sameKey reports whether two keys identify the same child. Keys of
// uncomparable types (slices, maps) never match, so such children are
// remounted rather than compared.
func sameKey(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}
