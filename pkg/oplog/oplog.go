// Package oplog records the mutations applied to a rendering target and
// encodes them as text, JSON or msgpack.
package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Kind is the mutation type.
type Kind string

const (
	KindCreate         Kind = "create"
	KindSetAttr        Kind = "set-attr"
	KindRemoveAttr     Kind = "remove-attr"
	KindAddListener    Kind = "add-listener"
	KindRemoveListener Kind = "remove-listener"
	KindSetText        Kind = "set-text"
	KindAppend         Kind = "append"
	KindInsert         Kind = "insert"
	KindRemove         Kind = "remove"
)

// Op is a single recorded mutation. Node, Parent and Ref are node ids
// assigned by the target; zero means "none".
type Op struct {
	Seq    uint64 `json:"seq" msgpack:"seq"`
	Kind   Kind   `json:"kind" msgpack:"kind"`
	Node   uint64 `json:"node" msgpack:"node"`
	Parent uint64 `json:"parent,omitempty" msgpack:"parent,omitempty"`
	Ref    uint64 `json:"ref,omitempty" msgpack:"ref,omitempty"`
	Tag    string `json:"tag,omitempty" msgpack:"tag,omitempty"`
	Name   string `json:"name,omitempty" msgpack:"name,omitempty"`
	Value  string `json:"value,omitempty" msgpack:"value,omitempty"`
}

// String renders the op as a single human-readable line.
func (o Op) String() string {
	switch o.Kind {
	case KindCreate:
		return fmt.Sprintf("%d create #%d <%s>", o.Seq, o.Node, o.Tag)
	case KindSetAttr:
		return fmt.Sprintf("%d set-attr #%d %s=%q", o.Seq, o.Node, o.Name, o.Value)
	case KindRemoveAttr:
		return fmt.Sprintf("%d remove-attr #%d %s", o.Seq, o.Node, o.Name)
	case KindAddListener:
		return fmt.Sprintf("%d add-listener #%d %s", o.Seq, o.Node, o.Name)
	case KindRemoveListener:
		return fmt.Sprintf("%d remove-listener #%d %s", o.Seq, o.Node, o.Name)
	case KindSetText:
		return fmt.Sprintf("%d set-text #%d %q", o.Seq, o.Node, o.Value)
	case KindAppend:
		return fmt.Sprintf("%d append #%d into #%d", o.Seq, o.Node, o.Parent)
	case KindInsert:
		return fmt.Sprintf("%d insert #%d into #%d before #%d", o.Seq, o.Node, o.Parent, o.Ref)
	case KindRemove:
		return fmt.Sprintf("%d remove #%d from #%d", o.Seq, o.Node, o.Parent)
	default:
		return fmt.Sprintf("%d %s #%d", o.Seq, o.Kind, o.Node)
	}
}

// Count returns how many ops of each kind are in ops.
func Count(ops []Op) map[Kind]int {
	counts := make(map[Kind]int)
	for _, op := range ops {
		counts[op.Kind]++
	}
	return counts
}

// Format is an op-log encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatMsgpack
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "txt"
	}
}

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMsgpack:
		return "application/msgpack"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat parses "text", "json" or "msgpack".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatText, fmt.Errorf("oplog: unknown format %q", s)
	}
}

// Encode writes ops to w in the given format.
func Encode(w io.Writer, ops []Op, f Format) error {
	if ops == nil {
		ops = []Op{}
	}
	switch f {
	case FormatText:
		bw := bufio.NewWriter(w)
		for _, op := range ops {
			if _, err := fmt.Fprintln(bw, op.String()); err != nil {
				return err
			}
		}
		return bw.Flush()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ops)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(ops)
	default:
		return fmt.Errorf("oplog: unknown format %d", f)
	}
}

// Decode reads ops written by Encode. The text format is not decodable.
func Decode(r io.Reader, f Format) ([]Op, error) {
	var ops []Op
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&ops); err != nil {
			return nil, fmt.Errorf("oplog: decode json: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&ops); err != nil {
			return nil, fmt.Errorf("oplog: decode msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("oplog: %s format cannot be decoded", f)
	}
	return ops, nil
}
