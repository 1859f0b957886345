// Package renderer reconciles virtual node trees against a rendering target
// and runs components.
//
// A Renderer owns a dom.Document, a reactive.Tracker and the current-instance
// slot used while a component's setup runs. Patch compares a previous and a
// next vdom.Node and applies the minimal set of mutations to the target:
//
//	doc := memdom.NewDocument()
//	root := doc.NewElement("div")
//	r := renderer.New(doc)
//
//	prev := vdom.El("ul", nil, vdom.Kids(
//	    vdom.El("li", nil, vdom.Text("a")).WithKey(1),
//	    vdom.El("li", nil, vdom.Text("b")).WithKey(2),
//	))
//	_ = r.Patch(nil, prev, root, nil)
//
//	next := vdom.El("ul", nil, vdom.Kids(
//	    vdom.El("li", nil, vdom.Text("b")).WithKey(2),
//	    vdom.El("li", nil, vdom.Text("a")).WithKey(1),
//	))
//	_ = r.Patch(prev, next, root, nil) // moves one <li>, creates nothing
//
// # Components
//
// A Component declares its props, an optional Data function, an optional
// Setup function and a Render function. Each mounted component gets an
// Instance whose render runs inside a tracked computation: writes to any
// reactive value read during render re-render the component synchronously.
//
//	counter := &renderer.Component{
//	    Name: "Counter",
//	    Data: func() map[string]any { return map[string]any{"count": 0} },
//	    Render: func(self *renderer.Proxy) *vdom.Node {
//	        n := self.Get("count").(int)
//	        return vdom.El("button", vdom.Props{
//	            "onClick": vdom.OnFunc(func() { self.Set("count", n+1) }),
//	        }, vdom.Text(strconv.Itoa(n)))
//	    },
//	}
//
// Everything runs on the caller's goroutine. A Renderer is not safe for
// concurrent use.
package renderer
