package renderer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/vrt/pkg/dom/memdom"
	"github.com/vango-dev/vrt/pkg/reactive"
	"github.com/vango-dev/vrt/pkg/vdom"
)

func TestComponentData(t *testing.T) {
	f := newFixture(t)
	comp := &Component{
		Name: "Title",
		Data: func() map[string]any {
			return map[string]any{"title": "Hello Component"}
		},
		Render: func(self *Proxy) *vdom.Node {
			return vdom.El("div", vdom.Props{
				"onClick": vdom.OnFunc(func() {
					self.Set("title", "Component state updated")
				}),
			}, vdom.Text(fmt.Sprint(self.Get("title"))))
		},
	}
	node := comp.Node(nil)

	f.patch(t, nil, node)
	if got, want := f.html(), "<div>Hello Component</div>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	f.root.ChildAt(0).Click()
	if got, want := f.html(), "<div>Component state updated</div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if node.El != f.root.ChildAt(0) {
		t.Error("component node El should mirror the rendered root")
	}
	if n := f.root.ChildAt(0).Listeners("click"); n != 1 {
		t.Errorf("Listeners(click) = %d, want 1", n)
	}
}

func TestComponentProps(t *testing.T) {
	f := newFixture(t)
	renders := 0
	comp := &Component{
		Name:  "Message",
		Props: PropsSchema{"msg": String},
		Data:  func() map[string]any { return map[string]any{} },
		Render: func(self *Proxy) *vdom.Node {
			renders++
			return vdom.El("div", nil, vdom.Text(fmt.Sprint(self.Get("msg"))))
		},
	}
	v1 := comp.Node(vdom.Props{"msg": "Hello Props"})
	v2 := comp.Node(vdom.Props{"msg": "Props updated"})

	f.patch(t, nil, v1)
	if got, want := f.html(), "<div>Hello Props</div>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	if err := f.r.Patch(v1, v2, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got, want := f.html(), "<div>Props updated</div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if v1.Component != v2.Component {
		t.Error("update should reuse the instance")
	}
	if v2.El != v1.El {
		t.Error("update should keep the rendered root")
	}
	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}

	// Unchanged props do not re-render.
	v3 := comp.Node(vdom.Props{"msg": "Props updated"})
	if err := f.r.Patch(v2, v3, nil, nil); err != nil {
		t.Fatal(err)
	}
	if renders != 2 {
		t.Errorf("renders after unchanged props = %d, want 2", renders)
	}
}

func TestComponentAttrs(t *testing.T) {
	f := newFixture(t)
	var inst *Instance
	comp := &Component{
		Props: PropsSchema{"msg": String},
		Render: func(self *Proxy) *vdom.Node {
			inst = self.Instance()
			return vdom.El("div", nil, nil)
		},
	}
	v1 := comp.Node(vdom.Props{"msg": "a", "class": "x"})
	f.patch(t, nil, v1)

	if inst.Props.Get("msg") != "a" {
		t.Errorf("props[msg] = %v", inst.Props.Get("msg"))
	}
	if inst.Props.Has("class") {
		t.Error("undeclared prop should not be in props")
	}
	if inst.Attrs["class"] != "x" {
		t.Errorf("attrs[class] = %v", inst.Attrs["class"])
	}

	v2 := comp.Node(vdom.Props{"msg": "a", "class": "y"})
	if err := f.r.Patch(v1, v2, f.root, nil); err != nil {
		t.Fatal(err)
	}
	if inst.Attrs["class"] != "y" {
		t.Errorf("attrs[class] after update = %v, want y", inst.Attrs["class"])
	}
}

func TestComponentSetupReactive(t *testing.T) {
	f := newFixture(t)
	var person *reactive.Object
	comp := &Component{
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			person = props.Tracker().Reactive(map[string]any{"name": "Tom"})
			return map[string]any{"person": person}
		},
		Render: func(self *Proxy) *vdom.Node {
			p := self.Get("person").(*reactive.Object)
			return vdom.El("div", nil, vdom.Text(fmt.Sprint(p.Get("name"))))
		},
	}

	f.patch(t, nil, comp.Node(nil))
	if got, want := f.html(), "<div>Tom</div>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}

	if err := person.Set("name", "Jerry"); err != nil {
		t.Fatal(err)
	}
	if got, want := f.html(), "<div>Jerry</div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestComponentEmitDuringSetup(t *testing.T) {
	f := newFixture(t)
	var got []any
	comp := &Component{
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			ctx.Emit("create", true)
			return nil
		},
		Render: func(self *Proxy) *vdom.Node {
			return vdom.El("div", nil, vdom.Text(""))
		},
	}
	node := comp.Node(vdom.Props{
		"onCreate": vdom.On(func(args ...any) { got = args }),
	})

	f.patch(t, nil, node)

	if len(got) != 1 || got[0] != true {
		t.Errorf("emit args = %v, want [true]", got)
	}
}

func TestComponentEmitWithoutHandler(t *testing.T) {
	f := newFixture(t)
	comp := &Component{
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			ctx.Emit("missing", 1)
			ctx.Emit("")
			return nil
		},
		Render: func(self *Proxy) *vdom.Node { return vdom.El("div", nil, nil) },
	}
	f.patch(t, nil, comp.Node(nil))
}

func TestComponentLifecycleOrder(t *testing.T) {
	f := newFixture(t)
	var events []string
	comp := &Component{
		Data: func() map[string]any { return map[string]any{"n": 0} },
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			OnBeforeMount(ctx, func() {
				events = append(events, fmt.Sprintf("beforeMount:%d", len(f.root.Children())))
			})
			OnMounted(ctx, func() {
				events = append(events, fmt.Sprintf("mounted:%d", len(f.root.Children())))
			})
			OnBeforeUpdate(ctx, func() {
				events = append(events, "beforeUpdate:"+f.root.TextContent())
			})
			OnUpdated(ctx, func() {
				events = append(events, "updated:"+f.root.TextContent())
			})
			return nil
		},
		Render: func(self *Proxy) *vdom.Node {
			events = append(events, "render")
			return vdom.El("p", nil, vdom.Text(fmt.Sprint(self.Get("n"))))
		},
	}
	node := comp.Node(nil)
	f.patch(t, nil, node)

	inst := node.Component.(*Instance)
	if !inst.IsMounted {
		t.Error("instance should be mounted")
	}
	inst.Proxy().Set("n", 1)

	want := "render,beforeMount:0,mounted:1,render,beforeUpdate:0,updated:1"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestHookWithoutHookIsNoop(t *testing.T) {
	f := newFixture(t)
	comp := &Component{
		Data:   func() map[string]any { return map[string]any{"n": 0} },
		Render: func(self *Proxy) *vdom.Node { return vdom.El("p", nil, vdom.Text(fmt.Sprint(self.Get("n")))) },
	}
	node := comp.Node(nil)
	f.patch(t, nil, node)
	node.Component.(*Instance).Proxy().Set("n", 2)
	if got := f.html(); got != "<p>2</p>" {
		t.Errorf("html = %q", got)
	}
}

func TestHookRegisteredAfterSetupIsDropped(t *testing.T) {
	f := newFixture(t)
	var saved *SetupContext
	calls := 0
	comp := &Component{
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			saved = ctx
			return nil
		},
		Render: func(self *Proxy) *vdom.Node { return vdom.El("p", nil, nil) },
	}
	f.patch(t, nil, comp.Node(nil))

	if f.r.CurrentInstance() != nil {
		t.Fatal("current instance should be cleared after setup")
	}
	saved.OnMounted(func() { calls++ })
	if !strings.Contains(f.logs.String(), "code=R004") {
		t.Errorf("expected R004 diagnostic, logs: %s", f.logs.String())
	}

	f.patch(t, nil, (&Component{Render: func(*Proxy) *vdom.Node { return vdom.El("i", nil, nil) }}).Node(nil))
	if calls != 0 {
		t.Errorf("hook registered outside setup ran %d times", calls)
	}
}

func TestHookRegisteredTwiceReplaces(t *testing.T) {
	f := newFixture(t)
	var got []string
	comp := &Component{
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			ctx.OnMounted(func() { got = append(got, "first") })
			ctx.OnMounted(func() { got = append(got, "second") })
			return nil
		},
		Render: func(self *Proxy) *vdom.Node { return vdom.El("p", nil, nil) },
	}
	f.patch(t, nil, comp.Node(nil))
	if strings.Join(got, ",") != "second" {
		t.Errorf("mounted hooks = %v, want [second]", got)
	}
}

func TestProxyResolution(t *testing.T) {
	f := newFixture(t)
	var self *Proxy
	comp := &Component{
		Props: PropsSchema{"shared": Any, "fromProps": Any},
		Data: func() map[string]any {
			return map[string]any{"shared": "data", "fromData": "data"}
		},
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			return map[string]any{"shared": "setup"}
		},
		Render: func(p *Proxy) *vdom.Node {
			self = p
			return vdom.El("div", nil, nil)
		},
	}
	f.patch(t, nil, comp.Node(vdom.Props{"shared": "props", "fromProps": "props"}))

	tests := []struct {
		key  string
		want any
	}{
		{"shared", "setup"},
		{"fromData", "data"},
		{"fromProps", "props"},
	}
	for _, tt := range tests {
		if got := self.Get(tt.key); got != tt.want {
			t.Errorf("Get(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}

	if self.Get("missing") != nil {
		t.Error("undeclared read should return nil")
	}
	if !strings.Contains(f.logs.String(), "code=R001") {
		t.Errorf("expected R001 diagnostic, logs: %s", f.logs.String())
	}

	if self.Set("missing", 1) {
		t.Error("undeclared write should fail")
	}
	if !strings.Contains(f.logs.String(), "code=R002") {
		t.Errorf("expected R002 diagnostic, logs: %s", f.logs.String())
	}

	if !self.Set("shared", "changed") || self.Instance().SetupState["shared"] != "changed" {
		t.Error("write should go to setup state first")
	}
	if !self.Set("fromProps", "changed") || self.Instance().Props.Get("fromProps") != "changed" {
		t.Error("write should reach props")
	}
	if self.Err() != nil {
		t.Errorf("Err() = %v", self.Err())
	}
}

func TestSetupStateWriteDoesNotRerender(t *testing.T) {
	f := newFixture(t)
	renders := 0
	comp := &Component{
		Setup: func(props *reactive.Object, ctx *SetupContext) map[string]any {
			return map[string]any{"label": "a"}
		},
		Render: func(self *Proxy) *vdom.Node {
			renders++
			return vdom.El("p", nil, vdom.Text(fmt.Sprint(self.Get("label"))))
		},
	}
	node := comp.Node(nil)
	f.patch(t, nil, node)
	node.Component.(*Instance).Proxy().Set("label", "b")

	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if got := f.html(); got != "<p>a</p>" {
		t.Errorf("html = %q, want unchanged", got)
	}
}

func TestNestedComponents(t *testing.T) {
	f := newFixture(t)
	childRenders := 0
	child := &Component{
		Name:  "Child",
		Props: PropsSchema{"label": String},
		Render: func(self *Proxy) *vdom.Node {
			childRenders++
			return vdom.El("span", nil, vdom.Text(fmt.Sprint(self.Get("label"))))
		},
	}
	var clicks []any
	parent := &Component{
		Name: "Parent",
		Data: func() map[string]any { return map[string]any{"label": "one"} },
		Render: func(self *Proxy) *vdom.Node {
			return vdom.El("div", nil, vdom.Kids(
				vdom.El("h1", nil, vdom.Text("title")),
				child.Node(vdom.Props{
					"label":  self.Get("label"),
					"onPick": vdom.On(func(args ...any) { clicks = append(clicks, args...) }),
				}),
			))
		},
	}
	node := parent.Node(nil)
	f.patch(t, nil, node)

	if got, want := f.html(), "<div><h1>title</h1><span>one</span></div>"; got != want {
		t.Fatalf("html = %q, want %q", got, want)
	}
	root := node.Component.(*Instance)
	childInst := root.SubTree.Children.(vdom.List)[1].Component.(*Instance)

	root.Proxy().Set("label", "two")

	if got, want := f.html(), "<div><h1>title</h1><span>two</span></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if again := root.SubTree.Children.(vdom.List)[1].Component.(*Instance); again != childInst {
		t.Error("child instance should be reused")
	}

	childInst.Emit("pick", "x")
	if len(clicks) != 1 || clicks[0] != "x" {
		t.Errorf("emit reached %v, want [x]", clicks)
	}
}

func TestComponentReplacedByElement(t *testing.T) {
	f := newFixture(t)
	comp := &Component{Render: func(*Proxy) *vdom.Node { return vdom.El("p", nil, vdom.Text("c")) }}
	prev := vdom.El("div", nil, vdom.Kids(comp.Node(nil), vdom.El("i", nil, nil)))
	f.patch(t, nil, prev)

	next := vdom.El("div", nil, vdom.Kids(vdom.El("b", nil, nil), vdom.El("i", nil, nil)))
	f.patch(t, prev, next)

	if got, want := f.html(), "<div><b></b><i></i></div>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
}

func TestComponentRootTypeChange(t *testing.T) {
	f := newFixture(t)
	comp := &Component{
		Data: func() map[string]any { return map[string]any{"open": false} },
		Render: func(self *Proxy) *vdom.Node {
			if self.Get("open") == true {
				return vdom.El("section", nil, vdom.Text("open"))
			}
			return vdom.El("p", nil, vdom.Text("closed"))
		},
	}
	node := comp.Node(nil)
	f.patch(t, nil, node)
	node.Component.(*Instance).Proxy().Set("open", true)

	if got, want := f.html(), "<section>open</section>"; got != want {
		t.Errorf("html = %q, want %q", got, want)
	}
	if el, ok := node.El.(*memdom.Element); !ok || el.Tag() != "section" {
		t.Errorf("component El = %v, want the new <section>", node.El)
	}

	if err := f.r.Patch(node, nil, f.root, nil); err != nil {
		t.Fatal(err)
	}
	if got := f.html(); got != "" {
		t.Errorf("html after unmount = %q", got)
	}
}

func TestComponentWithoutRender(t *testing.T) {
	f := newFixture(t)
	if err := f.r.Patch(nil, (&Component{Name: "Broken"}).Node(nil), f.root, nil); err == nil {
		t.Error("expected error for component without Render")
	}
}

func TestHasPropsChanged(t *testing.T) {
	h := vdom.OnFunc(func() {})
	style := map[string]any{"color": "red"}
	tests := []struct {
		name string
		prev vdom.Props
		next vdom.Props
		want bool
	}{
		{"both empty", nil, vdom.Props{}, false},
		{"same values", vdom.Props{"a": 1, "b": "x"}, vdom.Props{"a": 1, "b": "x"}, false},
		{"same handler", vdom.Props{"onClick": h}, vdom.Props{"onClick": h}, false},
		{"different count", vdom.Props{"a": 1}, vdom.Props{"a": 1, "b": 2}, true},
		{"different value", vdom.Props{"a": 1}, vdom.Props{"a": 2}, true},
		{"renamed key", vdom.Props{"a": nil}, vdom.Props{"b": nil}, true},
		{"new handler", vdom.Props{"onClick": h}, vdom.Props{"onClick": vdom.OnFunc(func() {})}, true},
		{"same map", vdom.Props{"style": style}, vdom.Props{"style": style}, false},
		{"equal map copy", vdom.Props{"style": style}, vdom.Props{"style": map[string]any{"color": "red"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPropsChanged(tt.prev, tt.next); got != tt.want {
				t.Errorf("HasPropsChanged() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPropTypeString(t *testing.T) {
	if String.String() != "string" || Any.String() != "any" || Function.String() != "function" {
		t.Error("unexpected PropType names")
	}
}
