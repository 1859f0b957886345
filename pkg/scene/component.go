package scene

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// ComponentDef is a component as written in the scene file.
type ComponentDef struct {
	// Props lists the node props the component receives as props. Other
	// props on a component node become attrs.
	Props []string `yaml:"props,omitempty" json:"props,omitempty"`

	// Data is the initial state of every instance.
	Data map[string]any `yaml:"data,omitempty" json:"data,omitempty"`

	// Render is the component's tree. Its tags, text and string props may
	// interpolate {{name}} from the instance scope.
	Render *Tree `yaml:"render" json:"render"`

	line, column int
	def          *renderer.Component
}

// UnmarshalYAML records the definition's position for error reporting.
func (c *ComponentDef) UnmarshalYAML(value *yaml.Node) error {
	type plain ComponentDef
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line, c.column = value.Line, value.Column
	return nil
}

// Component returns the runtime definition built for c, or nil before the
// scene is validated.
func (c *ComponentDef) Component() *renderer.Component {
	return c.def
}

func (c *ComponentDef) declares(key string) bool {
	if _, ok := c.Data[key]; ok {
		return true
	}
	return slices.Contains(c.Props, key)
}

// write is a frame's set map bound to the component node it targets.
type write struct {
	node *vdom.Node
	set  map[string]any
}

func (s *Scene) componentNames() []string {
	return slices.Sorted(maps.Keys(s.Components))
}

func (s *Scene) validateComponent(name string, c *ComponentDef) error {
	if c == nil || c.Render == nil {
		err := errors.New("S208").
			WithDetailf("component %s has no render tree", name).
			WithExample(name + ":\n  render:\n    tag: div\n    text: \"{{title}}\"")
		if c != nil {
			s.locate(err, c.line, c.column)
		}
		return err
	}
	for _, p := range c.Props {
		if p == "" || vdom.IsEventKey(p) {
			return s.locate(errors.New("S208").WithDetailf("component %s declares invalid prop %q", name, p), c.line, c.column)
		}
	}
	return s.validateTree(c.Render, true)
}

// checkCycles rejects components that render themselves, directly or
// through other components.
func (s *Scene) checkCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(s.Components))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			c := s.Components[name]
			return s.locate(errors.New("S208").
				WithDetailf("component %s renders itself: %s", name, strings.Join(append(slices.Clone(path), name), " -> ")),
				c.line, c.column)
		case done:
			return nil
		}
		state[name] = visiting
		for _, ref := range componentRefs(s.Components[name].Render) {
			if _, ok := s.Components[ref]; !ok {
				continue
			}
			if err := visit(ref, append(slices.Clone(path), name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, name := range s.componentNames() {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

func componentRefs(t *Tree) []string {
	if t == nil {
		return nil
	}
	var refs []string
	if t.Component != "" {
		refs = append(refs, t.Component)
	}
	for _, c := range t.Children {
		refs = append(refs, componentRefs(c)...)
	}
	return refs
}

// compile builds the runtime component of every definition once, so every
// frame's nodes share one *renderer.Component per name.
func (s *Scene) compile() {
	for _, name := range s.componentNames() {
		c := s.Components[name]
		if c.def != nil {
			continue
		}
		props := make(renderer.PropsSchema, len(c.Props))
		for _, p := range c.Props {
			props[p] = renderer.Any
		}
		data := c.Data
		render := c.Render
		c.def = &renderer.Component{
			Name:  name,
			Props: props,
			Data: func() map[string]any {
				return maps.Clone(data)
			},
			Render: func(self *renderer.Proxy) *vdom.Node {
				return s.build(render, self, nil)
			},
		}
	}
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// interpolate replaces {{name}} with the value self resolves for name. A
// nil scope leaves text unchanged, as does text without placeholders.
func interpolate(text string, self *renderer.Proxy) string {
	if self == nil || !strings.Contains(text, "{{") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		v := self.Get(placeholder.FindStringSubmatch(m)[1])
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}
