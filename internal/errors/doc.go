// Package errors provides coded, formatted errors for vrt.
//
// Every error carries a code from the registry that maps to a short
// message, a longer detail and a documentation URL. Codes are grouped by
// category:
//   - R0xx runtime diagnostics raised by the component runtime
//   - C1xx configuration loading and validation
//   - S2xx scene decoding
//   - X3xx snapshot export
//   - I4xx inspector server
//
// # Usage
//
//	err := errors.New("S201").
//	    WithLocation("scenes/list.yaml", 3, 5).
//	    WithSuggestion("Use either text or children on a node, not both")
//
//	errors.NewPrinter(os.Stderr, true).Error(err)
//	// error[S201]: Node has both text and children
//	//  --> scenes/list.yaml:3:5
//	//   |
//	// 1 | name: broken
//	// 2 | frames:
//	// 3 |   - tag: ul
//	//   |     ^
//	// 4 |     text: hello
//	// 5 |     children:
//	//   = A node's children are either a text string or a list of nodes.
//	//   = hint: Use either text or children on a node, not both
//	//   = see https://vango.dev/vrt/errors/S201
//
// Runtime diagnostics are logged rather than returned. Wrapping a slog
// handler in a DiagnosticHandler tallies them by code, and
// Printer.Diagnostics prints the tally. NewPrinter drops colors when
// NO_COLOR is set.
package errors
