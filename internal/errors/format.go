package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ANSI styles for terminal output.
const (
	styleReset  = "\033[0m"
	styleRed    = "\033[31m"
	styleYellow = "\033[33m"
	styleBlue   = "\033[34m"
	styleCyan   = "\033[36m"
	styleBold   = "\033[1m"
)

type palette bool

func (p palette) paint(style, text string) string {
	if !p || text == "" {
		return text
	}
	return style + text + styleReset
}

// Severity returns "warning" for runtime diagnostics, which never stop a
// render, and "error" for everything else.
func (e *Error) Severity() string {
	if e.Category == CategoryRuntime {
		return "warning"
	}
	return "error"
}

// Format returns the error laid out for a terminal, without colors:
//
//	error[S201]: Node has both text and children
//	 --> scenes/list.yaml:3:5
//	  |
//	1 | name: broken
//	2 | frames:
//	3 |   - tag: ul
//	  |     ^
//	4 |     text: hello
//	5 |     children:
//	  = A node's children are either a text string or a list of nodes.
//	  = hint: Use either text or children on a node, not both
//	  = see https://vango.dev/vrt/errors/S201
func (e *Error) Format() string {
	return e.format(false)
}

func (e *Error) format(color palette) string {
	var b strings.Builder

	head := e.Severity()
	if e.Code != "" {
		head += "[" + e.Code + "]"
	}
	headStyle := styleRed
	if e.Severity() == "warning" {
		headStyle = styleYellow
	}
	b.WriteString(color.paint(styleBold+headStyle, head))
	b.WriteString(color.paint(styleBold, ": "+e.Message))
	b.WriteByte('\n')

	width := 1
	if e.Location != nil {
		last := e.Location.Line
		if n := len(e.Context); n > 0 {
			last = e.contextFirstLine() + n - 1
		}
		width = len(strconv.Itoa(last))
	}
	gutter := strings.Repeat(" ", width)
	bar := color.paint(styleBlue, "|")

	if e.Location != nil {
		fmt.Fprintf(&b, "%s%s %s\n", gutter, color.paint(styleBlue, "-->"), e.Location)
		if len(e.Context) > 0 {
			fmt.Fprintf(&b, "%s %s\n", gutter, bar)
			first := e.contextFirstLine()
			for i, line := range e.Context {
				n := first + i
				fmt.Fprintf(&b, "%s %s %s\n", color.paint(styleBlue, fmt.Sprintf("%*d", width, n)), bar, line)
				if n == e.Location.Line && e.Location.Column > 0 {
					caret := strings.Repeat(" ", e.Location.Column-1) + "^"
					fmt.Fprintf(&b, "%s %s %s\n", gutter, bar, color.paint(styleBold+styleRed, caret))
				}
			}
		}
	}

	note := func(label, text string) {
		lines := wrapText(text, 72)
		for i, line := range lines {
			if i == 0 && label != "" {
				line = color.paint(styleBold, label+":") + " " + line
			} else if i > 0 && label != "" {
				line = strings.Repeat(" ", len(label)+2) + line
			}
			fmt.Fprintf(&b, "%s %s %s\n", gutter, color.paint(styleBlue, "="), line)
		}
	}
	note("", e.Detail)
	if e.Wrapped != nil {
		note("caused by", e.Wrapped.Error())
	}
	note("hint", e.Suggestion)
	if e.Example != "" {
		fmt.Fprintf(&b, "%s %s %s\n", gutter, color.paint(styleBlue, "="), color.paint(styleBold, "example:"))
		for _, line := range strings.Split(e.Example, "\n") {
			fmt.Fprintf(&b, "%s       %s\n", gutter, color.paint(styleCyan, line))
		}
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "%s %s see %s\n", gutter, color.paint(styleBlue, "="), e.DocURL)
	}
	return b.String()
}

// contextFirstLine returns the file line of Context[0].
func (e *Error) contextFirstLine() int {
	if e.contextStart > 0 {
		return e.contextStart
	}
	return max(1, e.Location.Line-len(e.Context)/2)
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	type location struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}
	v := struct {
		Code       string    `json:"code,omitempty"`
		Category   Category  `json:"category"`
		Message    string    `json:"message"`
		Detail     string    `json:"detail,omitempty"`
		Location   *location `json:"location,omitempty"`
		Suggestion string    `json:"suggestion,omitempty"`
		Cause      string    `json:"cause,omitempty"`
		DocURL     string    `json:"docUrl,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Location != nil {
		v.Location = &location{e.Location.File, e.Location.Line, e.Location.Column}
	}
	if e.Wrapped != nil {
		v.Cause = e.Wrapped.Error()
	}
	data, _ := json.Marshal(v)
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Printer writes formatted errors and diagnostic summaries.
type Printer struct {
	w     io.Writer
	color palette
}

// NewPrinter returns a Printer writing to w. Colors are used when color is
// true and the NO_COLOR environment variable is unset or empty.
func NewPrinter(w io.Writer, color bool) *Printer {
	if os.Getenv("NO_COLOR") != "" {
		color = false
	}
	return &Printer{w: w, color: palette(color)}
}

// Color reports whether the printer writes ANSI styles.
func (p *Printer) Color() bool {
	return bool(p.color)
}

// Error prints err. An error chain holding an *Error is printed in full;
// anything else as a single line.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	if Code(err) != "" {
		fmt.Fprint(p.w, FromError(err, "").format(p.color))
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.color.paint(styleBold+styleRed, "error:"), err)
}

// Diagnostics prints one entry per diagnostic, in the order given.
func (p *Printer) Diagnostics(diags []Diagnostic) {
	for _, d := range diags {
		e := New(d.Code)
		head := fmt.Sprintf("%s[%s]", e.Severity(), d.Code)
		style := styleYellow
		if e.Severity() == "error" {
			style = styleRed
		}
		fmt.Fprintf(p.w, "%s%s (%d times)\n",
			p.color.paint(styleBold+style, head),
			p.color.paint(styleBold, ": "+e.Message),
			d.Count)
		if len(d.Sites) > 0 {
			sites := strings.Join(d.Sites, ", ")
			if d.Count > len(d.Sites) && len(d.Sites) == maxSites {
				sites += ", ..."
			}
			fmt.Fprintf(p.w, "  %s at %s\n", p.color.paint(styleBlue, "="), sites)
		}
		if e.DocURL != "" {
			fmt.Fprintf(p.w, "  %s see %s\n", p.color.paint(styleBlue, "="), e.DocURL)
		}
	}
}
