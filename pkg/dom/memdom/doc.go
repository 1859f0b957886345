// Package memdom is an in-memory rendering target.
//
// It implements dom.Document and dom.Node over a plain element tree, records
// every mutation as an oplog.Op, serialises subtrees to HTML and dispatches
// events to registered listeners. It backs the renderer tests, the CLI and
// the inspector.
//
//	doc := memdom.NewDocument()
//	root := doc.NewElement("div")
//	r := renderer.New(doc)
//	r.Patch(nil, vdom.H(vdom.Tag("p"), nil, vdom.Text("hi")), root, nil)
//	root.InnerHTML() // "<p>hi</p>"
//
// Text content is modelled as a single text value that precedes any element
// children; SetTextContent drops the children and replaces the text.
package memdom
