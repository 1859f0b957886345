package memdom

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vango-dev/vrt/pkg/dom"
	"github.com/vango-dev/vrt/pkg/oplog"
)

var (
	// ErrNotFound is returned when a node is expected to be a child of the
	// receiver and is not.
	ErrNotFound = errors.New("memdom: node is not a child of this node")

	// ErrHierarchy is returned when inserting a node into itself or one of
	// its descendants.
	ErrHierarchy = errors.New("memdom: node cannot be inserted into its own subtree")

	// ErrForeignNode is returned for nodes that were not created by memdom.
	ErrForeignNode = errors.New("memdom: node was not created by memdom")

	// ErrEmptyTag is returned by CreateElement for an empty tag.
	ErrEmptyTag = errors.New("memdom: empty tag name")

	// ErrInvalidName is returned for tag and attribute names that cannot be
	// serialised as HTML.
	ErrInvalidName = errors.New("memdom: invalid name")
)

// Document creates elements and records the mutations applied to them.
type Document struct {
	nextID    uint64
	seq       uint64
	recording bool
	ops       []oplog.Op
	subs      []*subscription
}

type subscription struct {
	fn func(oplog.Op)
}

// Option configures a Document.
type Option func(*Document)

// WithRecording enables or disables op recording. Default: enabled.
// Subscribers registered with OnOp are called either way.
func WithRecording(on bool) Option {
	return func(d *Document) {
		d.recording = on
	}
}

// NewDocument creates an empty document.
func NewDocument(opts ...Option) *Document {
	d := &Document{recording: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateElement implements dom.Document.
func (d *Document) CreateElement(tag string) (dom.Node, error) {
	if tag == "" {
		return nil, ErrEmptyTag
	}
	if !ValidTagName(tag) {
		return nil, fmt.Errorf("%w: tag %q", ErrInvalidName, tag)
	}
	return d.NewElement(tag), nil
}

// NewElement creates a detached element. It is the typed form of
// CreateElement, used for containers. tag is not validated.
func (d *Document) NewElement(tag string) *Element {
	d.nextID++
	e := &Element{doc: d, id: d.nextID, tag: tag}
	d.emit(oplog.Op{Kind: oplog.KindCreate, Node: e.id, Tag: tag})
	return e
}

// Ops returns a copy of the recorded ops.
func (d *Document) Ops() []oplog.Op {
	return slices.Clone(d.ops)
}

// ResetOps discards the recorded ops. Sequence numbers keep increasing.
func (d *Document) ResetOps() {
	d.ops = nil
}

// OnOp registers fn to be called for every mutation. The returned function
// removes the subscription.
func (d *Document) OnOp(fn func(oplog.Op)) (cancel func()) {
	sub := &subscription{fn: fn}
	d.subs = append(d.subs, sub)
	return func() {
		if i := slices.Index(d.subs, sub); i != -1 {
			d.subs = slices.Delete(d.subs, i, i+1)
		}
	}
}

func (d *Document) emit(op oplog.Op) {
	d.seq++
	op.Seq = d.seq
	if d.recording {
		d.ops = append(d.ops, op)
	}
	for _, sub := range slices.Clone(d.subs) {
		sub.fn(op)
	}
}
