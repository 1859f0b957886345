// Package scene loads declarative vnode trees from YAML (or JSON) documents
// and plays them through a renderer frame by frame.
//
// A scene is a named list of frames; each frame is a tree:
//
//	name: list-demo
//	frames:
//	  - tag: div
//	    props: {id: app}
//	    text: hello
//	  - tag: div
//	    props: {id: app}
//	    children:
//	      - {tag: p, key: 1, text: a}
//	      - {tag: p, key: 2, text: b}
//
// Playing frame i patches frame i-1 against it, so a scene exercises the
// reconciler's update paths and its op log shows exactly which mutations a
// change costs.
//
// A scene may also define components. A component declares props, initial
// data and a render tree whose tags, text and string props interpolate
// {{name}} from the instance scope. Frame nodes mount a component by name, and a
// set map writes instance state after the frame is patched:
//
//	components:
//	  Counter:
//	    props: [label]
//	    data: {count: 0}
//	    render:
//	      tag: button
//	      text: "{{label}}: {{count}}"
//	frames:
//	  - component: Counter
//	    props: {label: Clicks}
//	  - component: Counter
//	    props: {label: Clicks}
//	    set: {count: 1}
package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/dom/memdom"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Tree is one node of a frame as written in the scene file. A node is an
// element (Tag) or a component (Component), never both.
type Tree struct {
	Tag       string         `yaml:"tag,omitempty" json:"tag,omitempty"`
	Component string         `yaml:"component,omitempty" json:"component,omitempty"`
	Key       any            `yaml:"key,omitempty" json:"key,omitempty"`
	Props     map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
	Text      *string        `yaml:"text,omitempty" json:"text,omitempty"`
	Children  []*Tree        `yaml:"children,omitempty" json:"children,omitempty"`

	// Set holds instance writes applied after the frame is patched. Only
	// component nodes of a frame may carry it.
	Set map[string]any `yaml:"set,omitempty" json:"set,omitempty"`

	line, column int
}

// UnmarshalYAML records the node's position for error reporting.
func (t *Tree) UnmarshalYAML(value *yaml.Node) error {
	type plain Tree
	if err := value.Decode((*plain)(t)); err != nil {
		return err
	}
	t.line, t.column = value.Line, value.Column
	return nil
}

// Scene is a decoded scene document.
type Scene struct {
	Name       string                   `yaml:"name" json:"name"`
	Components map[string]*ComponentDef `yaml:"components,omitempty" json:"components,omitempty"`
	Frames     []*Tree                  `yaml:"frames" json:"frames"`

	path string
}

// Load decodes and validates a scene from r.
func Load(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New("S200").Wrap(err)
	}
	return parse(data, "")
}

// LoadFile reads a scene from path. Validation errors carry the file
// position of the offending node.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("S200").Wrap(err).WithDetailf("could not read %s", path)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, errors.New("S203")
		}
		return nil, errors.New("S200").Wrap(err)
	}
	s.path = path
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scene and prepares its components. A scene needs
// frames, every node a tag or a known component, and no node may have both
// text and children. Keys must be scalars and names must serialise as HTML.
func (s *Scene) Validate() error {
	if len(s.Frames) == 0 {
		return errors.New("S203")
	}
	for _, name := range s.componentNames() {
		if err := s.validateComponent(name, s.Components[name]); err != nil {
			return err
		}
	}
	if err := s.checkCycles(); err != nil {
		return err
	}
	for i, frame := range s.Frames {
		if frame == nil {
			return errors.New("S202").WithDetailf("frame %d is empty", i)
		}
		if err := s.validateTree(frame, false); err != nil {
			return err
		}
	}
	s.compile()
	return nil
}

func (s *Scene) validateTree(t *Tree, inTemplate bool) error {
	if err := s.checkNode(t, inTemplate); err != nil {
		return s.locate(err, t.line, t.column)
	}
	for _, c := range t.Children {
		if c == nil {
			return errors.New("S202").WithDetailf("<%s> has an empty child", t.Tag)
		}
		if err := s.validateTree(c, inTemplate); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) checkNode(t *Tree, inTemplate bool) *errors.Error {
	if !validKey(t.Key) {
		return errors.New("S206").WithDetailf("key %v is a %T", t.Key, t.Key)
	}
	if t.Component != "" {
		return s.checkComponentNode(t, inTemplate)
	}
	switch {
	case t.Tag == "":
		return errors.New("S202")
	case len(t.Set) > 0:
		return errors.New("S208").WithDetailf("<%s> is not a component; only component nodes take set", t.Tag)
	case t.Text != nil && len(t.Children) > 0:
		return errors.New("S201").WithSuggestion("Use either text or children on a node, not both")
	case !memdom.ValidTagName(t.Tag) && !(inTemplate && placeholder.MatchString(t.Tag)):
		return errors.New("S209").WithDetailf("tag %q", t.Tag)
	}
	for name := range t.Props {
		if !vdom.IsEventKey(name) && !memdom.ValidAttrName(name) {
			return errors.New("S209").WithDetailf("attribute %q on <%s>", name, t.Tag)
		}
	}
	return nil
}

func (s *Scene) checkComponentNode(t *Tree, inTemplate bool) *errors.Error {
	def, ok := s.Components[t.Component]
	switch {
	case !ok:
		return errors.New("S207").WithDetailf("component %q is not defined", t.Component)
	case t.Tag != "":
		return errors.New("S208").WithDetailf("node has both tag %q and component %q", t.Tag, t.Component)
	case t.Text != nil || len(t.Children) > 0:
		return errors.New("S208").WithDetailf("%s renders its own content; remove text and children", t.Component)
	case len(t.Set) > 0 && inTemplate:
		return errors.New("S208").WithDetail("set is only allowed on frame nodes, not inside a render tree")
	}
	for key := range t.Set {
		if !def.declares(key) {
			return errors.New("S208").
				WithDetailf("%s has no prop or data field %q", t.Component, key).
				WithSuggestion("Declare the field under the component's props or data")
		}
	}
	return nil
}

// locate attaches the file position of a node to err when it is known.
func (s *Scene) locate(err *errors.Error, line, column int) *errors.Error {
	if s.path != "" && line > 0 {
		err.WithLocation(s.path, line, column)
	}
	return err
}

// validKey reports whether k can identify a node: keys must compare by
// value.
func validKey(k any) bool {
	switch k.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return true
	}
	return false
}

// Len returns the number of frames.
func (s *Scene) Len() int {
	return len(s.Frames)
}

// Frame builds the vnode tree of frame i. Every call returns fresh nodes,
// so a frame can be patched against another build of itself.
func (s *Scene) Frame(i int) (*vdom.Node, error) {
	n, _, err := s.frame(i)
	return n, err
}

func (s *Scene) frame(i int) (*vdom.Node, []write, error) {
	if i < 0 || i >= len(s.Frames) {
		return nil, nil, errors.New("S204").WithDetailf("frame %d of %d", i, len(s.Frames))
	}
	s.compile()
	var writes []write
	return s.build(s.Frames[i], nil, &writes), writes, nil
}

// build converts t to a vnode. Inside a component's render tree self is the
// instance scope used for interpolation; frame nodes pass nil and collect
// their set writes.
func (s *Scene) build(t *Tree, self *renderer.Proxy, writes *[]write) *vdom.Node {
	var props vdom.Props
	if len(t.Props) > 0 {
		props = make(vdom.Props, len(t.Props))
		for k, v := range t.Props {
			if str, ok := v.(string); ok {
				v = interpolate(str, self)
			}
			props[k] = v
		}
	}

	if t.Component != "" {
		n := s.Components[t.Component].def.Node(props).WithKey(t.Key)
		if len(t.Set) > 0 && writes != nil {
			*writes = append(*writes, write{node: n, set: t.Set})
		}
		return n
	}

	var children vdom.Children
	switch {
	case t.Text != nil:
		children = vdom.Text(interpolate(*t.Text, self))
	case t.Children != nil:
		list := make(vdom.List, 0, len(t.Children))
		for _, c := range t.Children {
			list = append(list, s.build(c, self, writes))
		}
		children = list
	}

	return vdom.El(interpolate(t.Tag, self), props, children).WithKey(t.Key)
}

// String returns the scene's name and frame count.
func (s *Scene) String() string {
	return fmt.Sprintf("%s (%d frames)", s.Name, len(s.Frames))
}
