package renderer

import (
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/reactive"
)

// Proxy is a component's render scope. Names resolve against the setup
// bindings first, then data, then declared props.
type Proxy struct {
	inst *Instance
	err  error
}

// Get returns the value bound to key. Reads of data and props are tracked.
// An unknown key logs a diagnostic and returns nil.
func (p *Proxy) Get(key string) any {
	inst := p.inst
	if v, ok := inst.SetupState[key]; ok {
		return v
	}
	if inst.Data.Has(key) {
		return inst.Data.Get(key)
	}
	if inst.Props.Has(key) {
		return inst.Props.Get(key)
	}
	p.diagnose("R001", key)
	return nil
}

// Set writes value to the binding for key and reports whether one existed.
// Writes to data and props re-run their dependents synchronously; an error
// from those runs is logged and kept for Err. An unknown key logs a
// diagnostic and returns false.
func (p *Proxy) Set(key string, value any) bool {
	inst := p.inst
	p.err = nil
	if _, ok := inst.SetupState[key]; ok {
		inst.SetupState[key] = value
		return true
	}

	var target *reactive.Object
	switch {
	case inst.Data.Has(key):
		target = inst.Data
	case inst.Props.Has(key):
		target = inst.Props
	default:
		p.diagnose("R002", key)
		return false
	}

	if err := target.Set(key, value); err != nil {
		p.err = err
		inst.renderer.logger.Error("update failed",
			"component", inst.Name(),
			"key", key,
			"error", err)
	}
	return true
}

// Err returns the error raised by the latest write through Set, or nil.
func (p *Proxy) Err() error {
	return p.err
}

// Attrs returns the instance's undeclared props.
func (p *Proxy) Attrs() map[string]any {
	return p.inst.Attrs
}

// Emit forwards to the instance's Emit.
func (p *Proxy) Emit(event string, args ...any) {
	p.inst.Emit(event, args...)
}

// Instance returns the component instance behind the proxy.
func (p *Proxy) Instance() *Instance {
	return p.inst
}

func (p *Proxy) diagnose(code, key string) {
	diag := errors.New(code)
	p.inst.renderer.logger.Warn(diag.Message,
		"code", diag.Code,
		"component", p.inst.Name(),
		"key", key)
}
