package renderer

import "github.com/vango-dev/vrt/internal/errors"

type hook uint8

const (
	hookBeforeMount hook = iota
	hookMounted
	hookBeforeUpdate
	hookUpdated
)

func (h hook) String() string {
	switch h {
	case hookBeforeMount:
		return "beforeMount"
	case hookMounted:
		return "mounted"
	case hookBeforeUpdate:
		return "beforeUpdate"
	default:
		return "updated"
	}
}

// SetupContext is passed to a component's Setup.
type SetupContext struct {
	inst *Instance
}

// Attrs returns the undeclared props of the instance being set up.
func (c *SetupContext) Attrs() map[string]any {
	return c.inst.Attrs
}

// Emit invokes the parent's handler for event. See Instance.Emit.
func (c *SetupContext) Emit(event string, args ...any) {
	c.inst.Emit(event, args...)
}

// OnBeforeMount registers fn to run after the first render, before its tree
// is attached.
func (c *SetupContext) OnBeforeMount(fn func()) { c.register(hookBeforeMount, fn) }

// OnMounted registers fn to run once the first tree is attached.
func (c *SetupContext) OnMounted(fn func()) { c.register(hookMounted, fn) }

// OnBeforeUpdate registers fn to run before each re-render is patched.
func (c *SetupContext) OnBeforeUpdate(fn func()) { c.register(hookBeforeUpdate, fn) }

// OnUpdated registers fn to run after each re-render is patched.
func (c *SetupContext) OnUpdated(fn func()) { c.register(hookUpdated, fn) }

// register attaches fn to the renderer's current instance. Each slot holds
// one hook; registering again replaces it. Outside setup nothing happens.
func (c *SetupContext) register(h hook, fn func()) {
	r := c.inst.renderer
	target := r.current
	if target == nil {
		diag := errors.New("R004")
		r.logger.Warn(diag.Message,
			"code", diag.Code,
			"component", c.inst.Name(),
			"hook", h.String())
		return
	}

	switch h {
	case hookBeforeMount:
		target.beforeMount = fn
	case hookMounted:
		target.mounted = fn
	case hookBeforeUpdate:
		target.beforeUpdate = fn
	case hookUpdated:
		target.updated = fn
	}
}

// OnBeforeMount registers a beforeMount hook on the instance being set up.
func OnBeforeMount(ctx *SetupContext, fn func()) { ctx.OnBeforeMount(fn) }

// OnMounted registers a mounted hook on the instance being set up.
func OnMounted(ctx *SetupContext, fn func()) { ctx.OnMounted(fn) }

// OnBeforeUpdate registers a beforeUpdate hook on the instance being set up.
func OnBeforeUpdate(ctx *SetupContext, fn func()) { ctx.OnBeforeUpdate(fn) }

// OnUpdated registers an updated hook on the instance being set up.
func OnUpdated(ctx *SetupContext, fn func()) { ctx.OnUpdated(fn) }

func invokeHook(fn func()) {
	if fn != nil {
		fn()
	}
}
