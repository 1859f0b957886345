package memdom

import "strings"

// voidElements are elements serialised without a closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// OuterHTML serialises e and its subtree.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	e.writeHTML(&b)
	return b.String()
}

// InnerHTML serialises the content of e.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	e.writeInner(&b)
	return b.String()
}

// String implements fmt.Stringer.
func (e *Element) String() string {
	return e.OuterHTML()
}

func (e *Element) writeHTML(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(e.tag)
	for _, a := range e.attrs {
		b.WriteByte(' ')
		b.WriteString(a.name)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.value))
		b.WriteByte('"')
	}
	b.WriteByte('>')

	if voidElements[e.tag] {
		return
	}

	e.writeInner(b)

	b.WriteString("</")
	b.WriteString(e.tag)
	b.WriteByte('>')
}

func (e *Element) writeInner(b *strings.Builder) {
	b.WriteString(escapeHTML(e.text))
	for _, c := range e.children {
		c.writeHTML(b)
	}
}

// escapeHTML escapes text for inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for inclusion in a double-quoted attribute value.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
