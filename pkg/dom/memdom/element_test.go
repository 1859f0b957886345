package memdom

import (
	"errors"
	"testing"

	"github.com/vango-dev/vrt/pkg/oplog"
)

type testListener struct {
	calls [][]any
}

func (l *testListener) Call(args ...any) {
	l.calls = append(l.calls, args)
}

func TestAppendAndInsert(t *testing.T) {
	doc := NewDocument()
	root := doc.NewElement("div")
	a := doc.NewElement("a")
	b := doc.NewElement("b")
	c := doc.NewElement("i")

	if err := root.AppendChild(a); err != nil {
		t.Fatal(err)
	}
	if err := root.AppendChild(c); err != nil {
		t.Fatal(err)
	}
	if err := root.InsertBefore(b, c); err != nil {
		t.Fatal(err)
	}

	if got := root.InnerHTML(); got != "<a></a><b></b><i></i>" {
		t.Errorf("InnerHTML() = %q", got)
	}
	if root.FirstChild() != a {
		t.Error("FirstChild() should be <a>")
	}
	if a.NextSibling() != b || b.NextSibling() != c {
		t.Error("siblings out of order")
	}
	if c.NextSibling() != nil {
		t.Error("last child should have no next sibling")
	}
	if b.Parent() != root {
		t.Error("Parent() should be root")
	}
}

func TestInsertMovesExistingChild(t *testing.T) {
	doc := NewDocument()
	root := doc.NewElement("div")
	a := doc.NewElement("a")
	b := doc.NewElement("b")
	_ = root.AppendChild(a)
	_ = root.AppendChild(b)

	if err := root.InsertBefore(b, a); err != nil {
		t.Fatal(err)
	}
	if got := root.InnerHTML(); got != "<b></b><a></a>" {
		t.Errorf("InnerHTML() = %q", got)
	}

	// Appending an existing child moves it to the end.
	if err := root.AppendChild(b); err != nil {
		t.Fatal(err)
	}
	if got := root.InnerHTML(); got != "<a></a><b></b>" {
		t.Errorf("InnerHTML() = %q", got)
	}
	if n := len(root.Children()); n != 2 {
		t.Errorf("len(Children()) = %d, want 2", n)
	}
}

func TestInsertBeforeSelfIsNoop(t *testing.T) {
	doc := NewDocument()
	root := doc.NewElement("div")
	a := doc.NewElement("a")
	_ = root.AppendChild(a)
	doc.ResetOps()

	if err := root.InsertBefore(a, a); err != nil {
		t.Fatal(err)
	}
	if len(doc.Ops()) != 0 {
		t.Errorf("expected no ops, got %v", doc.Ops())
	}
}

func TestInsertErrors(t *testing.T) {
	doc := NewDocument()
	root := doc.NewElement("div")
	child := doc.NewElement("p")
	stranger := doc.NewElement("span")
	_ = root.AppendChild(child)

	if err := root.InsertBefore(doc.NewElement("a"), stranger); !errors.Is(err, ErrNotFound) {
		t.Errorf("InsertBefore with foreign ref: err = %v, want ErrNotFound", err)
	}
	if err := root.RemoveChild(stranger); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveChild of non-child: err = %v, want ErrNotFound", err)
	}
	if err := child.AppendChild(root); !errors.Is(err, ErrHierarchy) {
		t.Errorf("AppendChild of ancestor: err = %v, want ErrHierarchy", err)
	}
	if _, err := doc.CreateElement(""); !errors.Is(err, ErrEmptyTag) {
		t.Errorf("CreateElement(\"\"): err = %v, want ErrEmptyTag", err)
	}
}

func TestInvalidNames(t *testing.T) {
	doc := NewDocument()
	for _, tag := range []string{"1div", "di v", "a>b", "x/y", "<p", "data_x"} {
		if _, err := doc.CreateElement(tag); !errors.Is(err, ErrInvalidName) {
			t.Errorf("CreateElement(%q): err = %v, want ErrInvalidName", tag, err)
		}
	}
	if _, err := doc.CreateElement("my-widget2"); err != nil {
		t.Errorf("CreateElement(my-widget2): %v", err)
	}

	el := doc.NewElement("div")
	for _, name := range []string{"", "on click", `x"y`, "a=b", "x>", "a/b", "new\nline", "it's"} {
		if err := el.SetAttribute(name, "v"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("SetAttribute(%q): err = %v, want ErrInvalidName", name, err)
		}
	}
	for _, name := range []string{"class", "data-id", "aria-label", "xml:lang", "@click"} {
		if err := el.SetAttribute(name, "v"); err != nil {
			t.Errorf("SetAttribute(%q): %v", name, err)
		}
	}
	if got, want := el.OuterHTML(), `<div class="v" data-id="v" aria-label="v" xml:lang="v" @click="v"></div>`; got != want {
		t.Errorf("OuterHTML() = %q, want %q", got, want)
	}
}

func TestSetTextContentDropsChildren(t *testing.T) {
	doc := NewDocument()
	root := doc.NewElement("div")
	child := doc.NewElement("p")
	_ = root.AppendChild(child)

	if err := root.SetTextContent("a < b"); err != nil {
		t.Fatal(err)
	}
	if got := root.OuterHTML(); got != "<div>a &lt; b</div>" {
		t.Errorf("OuterHTML() = %q", got)
	}
	if child.Parent() != nil {
		t.Error("dropped child should be detached")
	}
	if got := root.TextContent(); got != "a < b" {
		t.Errorf("TextContent() = %q", got)
	}
}

func TestAttributes(t *testing.T) {
	doc := NewDocument()
	el := doc.NewElement("input")

	_ = el.SetAttribute("type", "text")
	_ = el.SetAttribute("value", `say "hi"`)
	_ = el.SetAttribute("type", "search")

	if got := el.OuterHTML(); got != `<input type="search" value="say &quot;hi&quot;">` {
		t.Errorf("OuterHTML() = %q", got)
	}

	_ = el.RemoveAttribute("type")
	if _, ok := el.Attr("type"); ok {
		t.Error("type should be removed")
	}
	if names := el.AttrNames(); len(names) != 1 || names[0] != "value" {
		t.Errorf("AttrNames() = %v", names)
	}
}

func TestListeners(t *testing.T) {
	doc := NewDocument()
	el := doc.NewElement("button")
	first := &testListener{}
	second := &testListener{}

	_ = el.AddEventListener("click", first)
	_ = el.AddEventListener("click", first)
	_ = el.AddEventListener("click", second)

	el.Dispatch("click", 1, "x")
	if len(first.calls) != 1 || len(second.calls) != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", len(first.calls), len(second.calls))
	}
	if first.calls[0][0] != 1 || first.calls[0][1] != "x" {
		t.Errorf("args = %v", first.calls[0])
	}

	_ = el.RemoveEventListener("click", first)
	el.Click()
	if len(first.calls) != 1 || len(second.calls) != 2 {
		t.Errorf("after removal calls = %d/%d, want 1/2", len(first.calls), len(second.calls))
	}
	if n := el.Listeners("click"); n != 1 {
		t.Errorf("Listeners(click) = %d, want 1", n)
	}
}

func TestOpsRecording(t *testing.T) {
	doc := NewDocument()
	root := doc.NewElement("div")
	p := doc.NewElement("p")
	_ = root.AppendChild(p)
	_ = root.RemoveChild(p)

	ops := doc.Ops()
	want := []oplog.Kind{oplog.KindCreate, oplog.KindCreate, oplog.KindAppend, oplog.KindRemove}
	if len(ops) != len(want) {
		t.Fatalf("got %d ops, want %d: %v", len(ops), len(want), ops)
	}
	for i, k := range want {
		if ops[i].Kind != k {
			t.Errorf("ops[%d].Kind = %s, want %s", i, ops[i].Kind, k)
		}
		if ops[i].Seq != uint64(i+1) {
			t.Errorf("ops[%d].Seq = %d, want %d", i, ops[i].Seq, i+1)
		}
	}
	if ops[2].Parent != root.ID() || ops[2].Node != p.ID() {
		t.Errorf("append op = %+v", ops[2])
	}
}

func TestOnOp(t *testing.T) {
	doc := NewDocument(WithRecording(false))
	var seen []oplog.Op
	cancel := doc.OnOp(func(op oplog.Op) { seen = append(seen, op) })

	doc.NewElement("div")
	cancel()
	doc.NewElement("div")

	if len(seen) != 1 {
		t.Errorf("subscriber saw %d ops, want 1", len(seen))
	}
	if len(doc.Ops()) != 0 {
		t.Error("recording disabled, expected no stored ops")
	}
}
