package utils

import (
	"strings"
	"unicode"
)

// CanonicalName returns a name in the form used for matching:
// - Lowercased
// - Trimmed of surrounding whitespace
// - Inner whitespace runs collapsed to a single space
func CanonicalName(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), " ")
}

// CanonicalSecret folds a password-like value for case-insensitive lookup.
// Whitespace is significant in secrets, so only the case is folded.
func CanonicalSecret(s string) string {
	return strings.ToLower(s)
}
