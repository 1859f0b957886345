package scene

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/dom/memdom"
	"github.com/vango-dev/vrt/pkg/oplog"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Player renders a scene's frames in order into an in-memory container.
type Player struct {
	scene   *Scene
	doc     *memdom.Document
	root    *memdom.Element
	r       *renderer.Renderer
	index   int
	current *vdom.Node
}

// NewPlayer creates a player rendering into a fresh <div> of doc.
func NewPlayer(s *Scene, doc *memdom.Document, opts ...renderer.Option) *Player {
	return &Player{
		scene: s,
		doc:   doc,
		root:  doc.NewElement("div"),
		r:     renderer.New(doc, opts...),
		index: -1,
	}
}

// Scene returns the scene being played.
func (p *Player) Scene() *Scene { return p.scene }

// Root returns the container frames are rendered into.
func (p *Player) Root() *memdom.Element { return p.root }

// Document returns the player's document.
func (p *Player) Document() *memdom.Document { return p.doc }

// Index returns the index of the frame on screen, or -1 before the first.
func (p *Player) Index() int { return p.index }

// Done reports whether the last frame is on screen.
func (p *Player) Done() bool { return p.index >= p.scene.Len()-1 }

// HTML returns the container's inner HTML.
func (p *Player) HTML() string { return p.root.InnerHTML() }

// Next patches the following frame against the current one, applies the
// frame's set writes and returns the ops both recorded. After the last
// frame it returns io.EOF.
func (p *Player) Next() ([]oplog.Op, error) {
	if p.Done() {
		return nil, io.EOF
	}
	next, writes, err := p.scene.frame(p.index + 1)
	if err != nil {
		return nil, err
	}

	mark := len(p.doc.Ops())
	if err := p.r.Patch(p.current, next, p.root, nil); err != nil {
		return nil, p.frameError(err)
	}
	p.current = next
	p.index++
	if err := p.apply(writes); err != nil {
		return opsSince(p.doc, mark), p.frameError(err)
	}
	return opsSince(p.doc, mark), nil
}

// apply writes each set map through the mounted instance's proxy, so data
// and prop writes re-render the component like a handler would.
func (p *Player) apply(writes []write) error {
	for _, w := range writes {
		inst, ok := w.node.Component.(*renderer.Instance)
		if !ok {
			return fmt.Errorf("scene: %s was not mounted", w.node.Type.TypeName())
		}
		proxy := inst.Proxy()
		for _, key := range slices.Sorted(maps.Keys(w.set)) {
			if !proxy.Set(key, w.set[key]) {
				return fmt.Errorf("scene: %s has no field %q", inst.Name(), key)
			}
			if err := proxy.Err(); err != nil {
				return fmt.Errorf("scene: set %s.%s: %w", inst.Name(), key, err)
			}
		}
	}
	return nil
}

func (p *Player) frameError(err error) error {
	return errors.New("S205").Wrap(err).WithDetailf("frame %d of %s", p.index+1, p.scene.Name)
}

// PlayAll plays every remaining frame and returns the ops they recorded.
func (p *Player) PlayAll() ([]oplog.Op, error) {
	var all []oplog.Op
	for !p.Done() {
		ops, err := p.Next()
		if err != nil {
			return all, err
		}
		all = append(all, ops...)
	}
	return all, nil
}

// Reset unmounts the current frame so that the next call to Next starts
// from the first frame again.
func (p *Player) Reset() ([]oplog.Op, error) {
	mark := len(p.doc.Ops())
	if p.current != nil {
		if err := p.r.Patch(p.current, nil, p.root, nil); err != nil {
			return nil, err
		}
	}
	p.current = nil
	p.index = -1
	return opsSince(p.doc, mark), nil
}

func opsSince(doc *memdom.Document, mark int) []oplog.Op {
	ops := doc.Ops()
	if mark > len(ops) {
		// The log was reset in between; everything left is new.
		return ops
	}
	return ops[mark:]
}
