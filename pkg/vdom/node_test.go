package vdom

import "testing"

func TestH(t *testing.T) {
	props := Props{"class": "card"}
	n := H(Tag("div"), props, Text("hello"))

	if n.Type != Tag("div") {
		t.Errorf("Type = %v, want div", n.Type)
	}
	if n.Props["class"] != "card" {
		t.Errorf("Props[class] = %v, want card", n.Props["class"])
	}
	if n.Children != Text("hello") {
		t.Errorf("Children = %v, want hello", n.Children)
	}
	if n.HasKey() {
		t.Error("new node should not have a key")
	}
	if n.El != nil || n.Component != nil {
		t.Error("new node should not be attached")
	}
}

func TestWithKey(t *testing.T) {
	n := El("li", nil, nil).WithKey(3)
	if !n.HasKey() || n.Key != 3 {
		t.Errorf("Key = %v, want 3", n.Key)
	}

	var nilNode *Node
	if nilNode.HasKey() {
		t.Error("nil node has no key")
	}
}

func TestKids(t *testing.T) {
	list := Kids(El("a", nil, nil), nil, El("b", nil, nil))
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[1].Type != Tag("b") {
		t.Errorf("list[1].Type = %v, want b", list[1].Type)
	}
}

func TestAllKeyed(t *testing.T) {
	tests := []struct {
		name string
		list List
		want bool
	}{
		{"empty", List{}, true},
		{"nil", nil, true},
		{"all keyed", Kids(El("a", nil, nil).WithKey(1), El("b", nil, nil).WithKey(2)), true},
		{"mixed", Kids(El("a", nil, nil).WithKey(1), El("b", nil, nil)), false},
		{"none", Kids(El("a", nil, nil), El("b", nil, nil)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllKeyed(tt.list); got != tt.want {
				t.Errorf("AllKeyed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeString(t *testing.T) {
	n := El("ul", nil, Kids(El("li", nil, Text("1")).WithKey(1)))
	if got := n.String(); got != "<ul><li key=1>1" {
		t.Errorf("String() = %q", got)
	}
	if !n.IsElement() {
		t.Error("IsElement() = false for tag node")
	}
}

func TestHandlerCall(t *testing.T) {
	var got []any
	h := On(func(args ...any) { got = args })
	h.Call(1, "a")
	if len(got) != 2 || got[0] != 1 {
		t.Errorf("args = %v", got)
	}

	calls := 0
	OnFunc(func() { calls++ }).Call("ignored")
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	var nilHandler *Handler
	nilHandler.Call() // must not panic
}
