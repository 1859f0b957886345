package renderer

import (
	"fmt"
	"sort"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/dom"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func (r *Renderer) mountElement(n *vdom.Node, container, anchor dom.Node) error {
	tag := string(n.Type.(vdom.Tag))
	el, err := r.doc.CreateElement(tag)
	if err != nil {
		return fmt.Errorf("renderer: create <%s>: %w", tag, err)
	}
	n.El = el

	for _, key := range sortedKeys(n.Props) {
		value := n.Props[key]
		if value == nil {
			continue
		}
		if err := r.patchProp(el, key, nil, value); err != nil {
			return err
		}
	}

	switch c := n.Children.(type) {
	case vdom.Text:
		if err := el.SetTextContent(string(c)); err != nil {
			return err
		}
	case vdom.List:
		if err := r.mountChildren(c, el, nil); err != nil {
			return err
		}
	}

	if err := container.InsertBefore(el, anchor); err != nil {
		return fmt.Errorf("renderer: insert <%s>: %w", tag, err)
	}
	r.metrics.Mount("element")
	return nil
}

func (r *Renderer) patchElement(prev, next *vdom.Node) error {
	el := prev.El
	next.El = el

	if err := r.patchProps(el, prev.Props, next.Props); err != nil {
		return err
	}
	if err := r.patchChildren(prev, next, el); err != nil {
		return err
	}
	r.metrics.Patch("element")
	return nil
}

// patchProps writes every prop whose value changed and clears every prop
// that disappeared.
func (r *Renderer) patchProps(el dom.Node, prev, next vdom.Props) error {
	for _, key := range sortedKeys(next) {
		old, value := prev[key], next[key]
		if vdom.PropsEqual(old, value) {
			continue
		}
		if err := r.patchProp(el, key, old, value); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(prev) {
		if _, ok := next[key]; ok {
			continue
		}
		if prev[key] == nil {
			continue
		}
		if err := r.patchProp(el, key, prev[key], nil); err != nil {
			return err
		}
	}
	return nil
}

// patchProp applies a single prop change. Event keys swap listeners; every
// other key sets or removes an attribute.
func (r *Renderer) patchProp(el dom.Node, key string, prev, next any) error {
	if vdom.IsEventKey(key) {
		event := vdom.EventName(key)
		if l, ok := prev.(dom.Listener); ok {
			if err := el.RemoveEventListener(event, l); err != nil {
				return err
			}
			r.metrics.PropUpdate("listener")
		}
		if next == nil {
			return nil
		}
		l, ok := next.(dom.Listener)
		if !ok {
			diag := errors.New("R003")
			r.logger.Warn(diag.Message,
				"code", diag.Code,
				"key", key,
				"type", fmt.Sprintf("%T", next))
			return nil
		}
		if err := el.AddEventListener(event, l); err != nil {
			return err
		}
		r.metrics.PropUpdate("listener")
		return nil
	}

	if next == nil {
		if err := el.RemoveAttribute(key); err != nil {
			return err
		}
		r.metrics.PropUpdate("remove")
		return nil
	}
	if err := el.SetAttribute(key, vdom.PropString(next)); err != nil {
		return err
	}
	r.metrics.PropUpdate("set")
	return nil
}

// sortedKeys returns the keys of props in a stable order so that mutation
// sequences are reproducible.
func sortedKeys(props vdom.Props) []string {
	if len(props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
