package memdom

import "unicode"

// ValidTagName reports whether tag can be serialised as an element name: an
// ASCII letter followed by ASCII letters, digits or hyphens.
func ValidTagName(tag string) bool {
	if tag == "" {
		return false
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return true
}

// ValidAttrName reports whether name can be serialised as an attribute
// name. It must be non-empty and free of whitespace, control characters
// and the characters " ' < > / =.
func ValidAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
		switch r {
		case '"', '\'', '<', '>', '/', '=', unicode.ReplacementChar:
			return false
		}
	}
	return true
}
