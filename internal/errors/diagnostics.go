package errors

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// maxSites bounds the distinct sites kept per diagnostic.
const maxSites = 5

// Diagnostic is the tally of one runtime diagnostic code.
type Diagnostic struct {
	Code  string
	Count int

	// Sites are distinct "component.key" pairs the diagnostic was raised
	// for, in first-seen order, at most five.
	Sites []string
}

type tally struct {
	mu    sync.Mutex
	codes map[string]*Diagnostic
}

func (t *tally) add(code, site string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.codes[code]
	if !ok {
		d = &Diagnostic{Code: code}
		t.codes[code] = d
	}
	d.Count++
	if site != "" && len(d.Sites) < maxSites && !slices.Contains(d.Sites, site) {
		d.Sites = append(d.Sites, site)
	}
}

// DiagnosticHandler is a slog.Handler that counts runtime diagnostics (log
// records whose "code" attribute is a registered runtime code) and passes
// every record on to the wrapped handler. Diagnostics are counted even when
// the wrapped handler's level drops them.
type DiagnosticHandler struct {
	next  slog.Handler
	tally *tally

	// bound holds top-level attrs added with WithAttrs.
	bound   []slog.Attr
	grouped bool
}

// NewDiagnosticHandler wraps next.
func NewDiagnosticHandler(next slog.Handler) *DiagnosticHandler {
	return &DiagnosticHandler{
		next:  next,
		tally: &tally{codes: make(map[string]*Diagnostic)},
	}
}

// Enabled implements slog.Handler. Warnings are always enabled so they can
// be counted.
func (h *DiagnosticHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *DiagnosticHandler) Handle(ctx context.Context, r slog.Record) error {
	var code, component, key string
	collect := func(a slog.Attr) {
		switch a.Key {
		case "code":
			code = a.Value.String()
		case "component":
			component = a.Value.String()
		case "key":
			key = a.Value.String()
		}
	}
	for _, a := range h.bound {
		collect(a)
	}
	if !h.grouped {
		r.Attrs(func(a slog.Attr) bool {
			collect(a)
			return true
		})
	}
	if isRuntimeCode(code) {
		h.tally.add(code, site(component, key))
	}

	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *DiagnosticHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	if !h.grouped {
		c.bound = append(slices.Clone(h.bound), attrs...)
	}
	return &c
}

// WithGroup implements slog.Handler. Attrs inside a group are not counted.
func (h *DiagnosticHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	c.grouped = c.grouped || name != ""
	return &c
}

// Diagnostics returns the tallies so far, ordered by code.
func (h *DiagnosticHandler) Diagnostics() []Diagnostic {
	h.tally.mu.Lock()
	defer h.tally.mu.Unlock()
	out := make([]Diagnostic, 0, len(h.tally.codes))
	for _, d := range h.tally.codes {
		c := *d
		c.Sites = slices.Clone(d.Sites)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Diagnostic) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

func isRuntimeCode(code string) bool {
	if code == "" {
		return false
	}
	t, ok := registry[code]
	return ok && t.Category == CategoryRuntime
}

func site(component, key string) string {
	switch {
	case component == "":
		return key
	case key == "":
		return component
	}
	return component + "." + key
}
