package renderer

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/pkg/dom"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// PropType documents the expected type of a declared prop. Values are never
// checked against it; declaring a prop only routes it to the instance's
// props instead of its attrs.
type PropType uint8

const (
	Any PropType = iota
	String
	Number
	Bool
	Object
	Array
	Function
)

// String returns the name of the prop type.
func (t PropType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Object:
		return "object"
	case Array:
		return "array"
	case Function:
		return "function"
	default:
		return "any"
	}
}

// PropsSchema maps declared prop names to their types.
type PropsSchema map[string]PropType

// Component is a component definition. Use a pointer as a node's Type:
// nodes are the same component when they hold the same *Component.
type Component struct {
	// Name identifies the component in logs, metrics and spans.
	Name string

	// Props declares which node props the component receives as props.
	// Undeclared props become attrs.
	Props PropsSchema

	// Data returns the initial state, made reactive per instance.
	Data func() map[string]any

	// Setup runs once per instance, before the first render. The returned
	// bindings take priority over data and props in the render scope.
	Setup func(props *reactive.Object, ctx *SetupContext) map[string]any

	// Render returns the component's tree. It runs inside a tracked
	// computation, so reactive reads made here re-render the component.
	Render func(self *Proxy) *vdom.Node
}

// TypeName implements vdom.Type.
func (c *Component) TypeName() string {
	if c.Name != "" {
		return c.Name
	}
	return "Component"
}

// Node creates a node of this component.
func (c *Component) Node(props vdom.Props) *vdom.Node {
	return vdom.H(c, props, nil)
}

// Instance is a mounted component.
type Instance struct {
	Def *Component

	// Node is the node the instance was mounted from. Emit reads handlers
	// from its props.
	Node *vdom.Node

	Props      *reactive.Object
	Attrs      map[string]any
	SetupState map[string]any
	Data       *reactive.Object

	// SubTree is the tree produced by the latest render.
	SubTree *vdom.Node

	IsMounted bool

	beforeMount  func()
	mounted      func()
	beforeUpdate func()
	updated      func()

	renderer  *Renderer
	current   *vdom.Node
	container dom.Node
	anchor    dom.Node
	render    *reactive.Computation
	proxy     *Proxy
}

// Name returns the component's name.
func (i *Instance) Name() string {
	return i.Def.TypeName()
}

// Proxy returns the instance's render scope.
func (i *Instance) Proxy() *Proxy {
	return i.proxy
}

// Computation returns the tracked render computation.
func (i *Instance) Computation() *reactive.Computation {
	return i.render
}

// Emit invokes the handler bound to event on the node the instance was
// mounted from. The handler for "create" is the "onCreate" prop. A missing
// handler does nothing.
func (i *Instance) Emit(event string, args ...any) {
	if event == "" || i.Node == nil {
		return
	}
	if l, ok := i.Node.Props[vdom.HandlerName(event)].(dom.Listener); ok {
		l.Call(args...)
	}
}

// HasPropsChanged reports whether two prop maps differ by count or by any
// value (shallow comparison).
func HasPropsChanged(prev, next vdom.Props) bool {
	if len(prev) != len(next) {
		return true
	}
	for key, value := range next {
		old, ok := prev[key]
		if !ok || !vdom.PropsEqual(old, value) {
			return true
		}
	}
	return false
}

func (r *Renderer) mountComponent(def *Component, n *vdom.Node, container, anchor dom.Node) error {
	inst := r.newInstance(def, n)
	n.Component = inst
	inst.container = container
	inst.anchor = anchor

	r.setupComponent(inst)
	r.metrics.Mount("component")
	r.logger.Debug("mount component", "component", inst.Name())

	inst.render = reactive.NewComputation(func() error {
		return r.renderComponent(inst)
	})
	return r.tracker.Run(inst.render)
}

func (r *Renderer) newInstance(def *Component, n *vdom.Node) *Instance {
	inst := &Instance{
		Def:        def,
		Node:       n,
		Attrs:      make(map[string]any),
		SetupState: make(map[string]any),
		renderer:   r,
		current:    n,
	}

	props := make(map[string]any, len(def.Props))
	for key := range def.Props {
		props[key] = nil
	}
	for key, value := range n.Props {
		if _, declared := def.Props[key]; declared {
			props[key] = value
		} else {
			inst.Attrs[key] = value
		}
	}
	inst.Props = r.tracker.Reactive(props)

	var data map[string]any
	if def.Data != nil {
		data = def.Data()
	}
	inst.Data = r.tracker.Reactive(data)

	inst.proxy = &Proxy{inst: inst}
	return inst
}

// setupComponent runs Setup with the current-instance slot pointing at inst.
func (r *Renderer) setupComponent(inst *Instance) {
	if inst.Def.Setup == nil {
		return
	}
	ctx := &SetupContext{inst: inst}

	r.current = inst
	defer func() {
		r.current = nil
	}()

	if state := inst.Def.Setup(inst.Props, ctx); state != nil {
		inst.SetupState = state
	}
}

// renderComponent is the body of an instance's render computation.
func (r *Renderer) renderComponent(inst *Instance) error {
	phase := "update"
	if !inst.IsMounted {
		phase = "mount"
	}
	_, span := r.tracer.Start(context.Background(), "vrt.render",
		trace.WithAttributes(
			attribute.String("vrt.component", inst.Name()),
			attribute.String("vrt.phase", phase),
		),
	)
	defer span.End()

	err := r.runRender(inst)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	r.metrics.Render(inst.Name(), phase)
	return nil
}

func (r *Renderer) runRender(inst *Instance) error {
	if inst.Def.Render == nil {
		return fmt.Errorf("renderer: component %s has no Render", inst.Name())
	}
	subTree := inst.Def.Render(inst.proxy)

	if !inst.IsMounted {
		invokeHook(inst.beforeMount)
		if err := r.patch(nil, subTree, inst.container, inst.anchor); err != nil {
			return err
		}
		inst.commit(subTree)
		inst.IsMounted = true
		invokeHook(inst.mounted)
		return nil
	}

	invokeHook(inst.beforeUpdate)
	container := inst.container
	if host := hostNode(inst.SubTree); host != nil && host.Parent() != nil {
		container = host.Parent()
	}
	if err := r.patch(inst.SubTree, subTree, container, nil); err != nil {
		return err
	}
	inst.commit(subTree)
	invokeHook(inst.updated)
	return nil
}

// commit stores the rendered tree and mirrors its root on the component node.
func (i *Instance) commit(subTree *vdom.Node) {
	i.SubTree = subTree
	if i.current != nil {
		i.current.El = hostNode(subTree)
	}
}

func (r *Renderer) updateComponent(prev, next *vdom.Node) error {
	inst, ok := prev.Component.(*Instance)
	if !ok {
		return fmt.Errorf("renderer: component node %s was never mounted", prev.Type.TypeName())
	}
	next.Component = inst
	next.El = prev.El
	inst.current = next

	if HasPropsChanged(prev.Props, next.Props) {
		clear(inst.Attrs)
		for key, value := range next.Props {
			if _, declared := inst.Def.Props[key]; !declared {
				inst.Attrs[key] = value
			}
		}

		keys := make([]string, 0, len(inst.Def.Props))
		for key := range inst.Def.Props {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := inst.Props.Set(key, next.Props[key]); err != nil {
				return err
			}
		}
	}

	next.El = hostNode(inst.SubTree)
	r.metrics.Patch("component")
	return nil
}
