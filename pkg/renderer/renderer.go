package renderer

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/pkg/dom"
	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// TracerName is the default instrumentation name for component spans.
const TracerName = "github.com/vango-dev/vrt/pkg/renderer"

// Option configures a Renderer.
type Option func(*Renderer)

// WithTracker sets the dependency tracker. Default: a new tracker.
func WithTracker(t *reactive.Tracker) Option {
	return func(r *Renderer) {
		r.tracker = t
	}
}

// WithLogger sets the logger for diagnostics. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// WithMetrics sets the metrics collector. Default: nil (no metrics).
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for component render spans.
// Default: otel.Tracer(TracerName) from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Renderer) {
		r.tracer = t
	}
}

// Renderer reconciles virtual trees against a dom.Document.
type Renderer struct {
	doc     dom.Document
	tracker *reactive.Tracker
	logger  *slog.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer

	// current is the instance whose setup is running, or nil.
	current *Instance

	// roots remembers the last tree rendered into each container by Render.
	roots map[dom.Node]*vdom.Node
}

// New creates a Renderer that creates nodes through doc.
func New(doc dom.Document, opts ...Option) *Renderer {
	r := &Renderer{
		doc:   doc,
		roots: make(map[dom.Node]*vdom.Node),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracker == nil {
		r.tracker = reactive.NewTracker()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(TracerName)
	}
	return r
}

// Tracker returns the renderer's dependency tracker.
func (r *Renderer) Tracker() *reactive.Tracker {
	return r.tracker
}

// Document returns the document nodes are created in.
func (r *Renderer) Document() dom.Document {
	return r.doc
}

// CurrentInstance returns the instance whose setup is running, or nil.
func (r *Renderer) CurrentInstance() *Instance {
	return r.current
}

// Patch reconciles prev against next inside container.
//
// prev is nil on first mount. anchor, when non-nil, is the sibling a newly
// created node is inserted before; nil appends. container may be nil when
// prev is mounted, in which case prev's parent is used. After Patch returns, next
// (and every node below it) holds its live target node in El.
func (r *Renderer) Patch(prev, next *vdom.Node, container, anchor dom.Node) error {
	start := time.Now()
	err := r.patch(prev, next, container, anchor)
	r.metrics.ObservePatch(time.Since(start))
	return err
}

// Render patches node into container against whatever was rendered there
// before. A nil node unmounts the previous tree.
func (r *Renderer) Render(node *vdom.Node, container dom.Node) error {
	prev := r.roots[container]
	if node == nil {
		if prev == nil {
			return nil
		}
		delete(r.roots, container)
		return r.unmount(prev)
	}
	if err := r.Patch(prev, node, container, nil); err != nil {
		return err
	}
	r.roots[container] = node
	return nil
}

// Root returns the tree last rendered into container by Render.
func (r *Renderer) Root(container dom.Node) *vdom.Node {
	return r.roots[container]
}

func (r *Renderer) patch(prev, next *vdom.Node, container, anchor dom.Node) error {
	if prev == next {
		return nil
	}
	if next == nil {
		return r.unmount(prev)
	}
	if container == nil {
		if el := hostNode(prev); el != nil {
			container = el.Parent()
		}
	}

	if prev != nil && prev.Type != next.Type {
		// Replace in place: the new node takes the old one's position.
		if anchor == nil {
			if el := hostNode(prev); el != nil {
				anchor = el.NextSibling()
			}
		}
		if err := r.unmount(prev); err != nil {
			return err
		}
		prev = nil
	}
	if prev == nil && container == nil {
		return fmt.Errorf("renderer: mount %s: no container", typeName(next))
	}

	switch t := next.Type.(type) {
	case vdom.Tag:
		if prev == nil {
			return r.mountElement(next, container, anchor)
		}
		return r.patchElement(prev, next)
	case *Component:
		if prev == nil {
			return r.mountComponent(t, next, container, anchor)
		}
		return r.updateComponent(prev, next)
	case nil:
		return fmt.Errorf("renderer: node has no type")
	default:
		return fmt.Errorf("renderer: unsupported node type %T", next.Type)
	}
}

// unmount removes n's live node from its parent. Descendants go with it;
// nothing else is torn down.
func (r *Renderer) unmount(n *vdom.Node) error {
	el := hostNode(n)
	if el == nil {
		return nil
	}
	parent := el.Parent()
	if parent == nil {
		return nil
	}
	if err := parent.RemoveChild(el); err != nil {
		return fmt.Errorf("renderer: unmount <%s>: %w", n.Type.TypeName(), err)
	}
	r.metrics.Unmount()
	return nil
}

func typeName(n *vdom.Node) string {
	if n.Type == nil {
		return "<nil>"
	}
	return n.Type.TypeName()
}

// hostNode returns the target node that represents n. For components this
// is the root of the latest subtree.
func hostNode(n *vdom.Node) dom.Node {
	if n == nil {
		return nil
	}
	if inst, ok := n.Component.(*Instance); ok {
		return hostNode(inst.SubTree)
	}
	return n.El
}
