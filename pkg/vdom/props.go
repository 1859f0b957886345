package vdom

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// EventPrefix marks event-binding props ("onClick").
const EventPrefix = "on"

// IsEventKey returns true if key binds an event: the "on" prefix followed by
// at least one character.
func IsEventKey(key string) bool {
	return len(key) > len(EventPrefix) && strings.HasPrefix(key, EventPrefix)
}

// EventName returns the event bound by an event key: "onClick" -> "click".
func EventName(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, EventPrefix))
}

// HandlerName returns the prop that handles an emitted event:
// "create" -> "onCreate".
func HandlerName(event string) string {
	if event == "" {
		return EventPrefix
	}
	r, size := utf8.DecodeRuneInString(event)
	return EventPrefix + string(unicode.ToUpper(r)) + event[size:]
}

// PropsEqual compares two prop values. Scalars and other comparable values
// compare by value. Maps compare by identity, as do slices (same backing
// array and length), so mutating a prop in place is not a change. Functions
// are never equal unless both are nil.
func PropsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Handler:
		bv, ok := b.(*Handler)
		return ok && av == bv
	case nil:
		return b == nil
	}
	if b == nil {
		return false
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() && va.Len() == vb.Len()
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	}
	if ta.Comparable() {
		return a == b
	}
	// Structs and arrays holding maps or slices.
	return reflect.DeepEqual(a, b)
}

// PropString converts a prop value to its attribute string.
func PropString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
