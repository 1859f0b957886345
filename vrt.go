// Package vrt is a minimal reactive UI runtime.
//
// Reactive objects record which computations read which keys; writes
// re-run those computations. Components render trees of nodes, and the
// renderer patches each new tree against the previous one onto a
// dom.Document.
//
//	doc := memdom.NewDocument()
//	r := vrt.New(doc)
//
//	counter := &vrt.Component{
//	    Name: "Counter",
//	    Data: func() map[string]any { return map[string]any{"count": 0} },
//	    Render: func(self *vrt.Proxy) *vrt.Node {
//	        n := self.Get("count").(int)
//	        return vrt.El("button", vrt.Props{
//	            "onClick": vrt.OnFunc(func() { self.Set("count", n+1) }),
//	        }, vrt.Text(strconv.Itoa(n)))
//	    },
//	}
//
//	root := doc.NewElement("div")
//	_ = r.Render(counter.Node(nil), root)
package vrt

import (
	"github.com/vango-dev/vrt/pkg/dom"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Nodes.
type (
	Node     = vdom.Node
	Props    = vdom.Props
	Text     = vdom.Text
	List     = vdom.List
	Tag      = vdom.Tag
	Children = vdom.Children
	Handler  = vdom.Handler
)

// Reactivity.
type (
	Tracker     = reactive.Tracker
	Object      = reactive.Object
	Computation = reactive.Computation
	EdgePolicy  = reactive.EdgePolicy
)

// Components.
type (
	Renderer     = renderer.Renderer
	Component    = renderer.Component
	Instance     = renderer.Instance
	Proxy        = renderer.Proxy
	SetupContext = renderer.SetupContext
	PropsSchema  = renderer.PropsSchema
	PropType     = renderer.PropType
	Option       = renderer.Option
)

// Prop types.
const (
	PropAny      = renderer.Any
	PropString   = renderer.String
	PropNumber   = renderer.Number
	PropBool     = renderer.Bool
	PropObject   = renderer.Object
	PropArray    = renderer.Array
	PropFunction = renderer.Function
)

// Edge policies.
const (
	RetainEdges     = reactive.RetainEdges
	ClearEdgesOnRun = reactive.ClearEdgesOnRun
)

var (
	H      = vdom.H
	El     = vdom.El
	Kids   = vdom.Kids
	On     = vdom.On
	OnFunc = vdom.OnFunc

	WithTracker = renderer.WithTracker
	WithLogger  = renderer.WithLogger
	WithMetrics = renderer.WithMetrics
	WithTracer  = renderer.WithTracer

	OnBeforeMount  = renderer.OnBeforeMount
	OnMounted      = renderer.OnMounted
	OnBeforeUpdate = renderer.OnBeforeUpdate
	OnUpdated      = renderer.OnUpdated
)

// New creates a renderer targeting doc. Without WithTracker it gets a
// fresh tracker.
func New(doc dom.Document, opts ...Option) *Renderer {
	return renderer.New(doc, opts...)
}

// NewTracker creates a dependency tracker.
func NewTracker(opts ...reactive.Option) *Tracker {
	return reactive.NewTracker(opts...)
}

// Reactive wraps raw in an object tracked by t.
func Reactive(t *Tracker, raw map[string]any) *Object {
	return t.Reactive(raw)
}
