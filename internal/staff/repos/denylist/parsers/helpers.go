package parsers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/haukened/staffdir/internal/staff/common/utils"
)

// maxEntryLength bounds list entries; longer lines are not passwords anyone reuses.
const maxEntryLength = 256

// normalizeEntry strips a byte order mark and surrounding whitespace and folds
// case so lookups are case-insensitive.
func normalizeEntry(raw string) string {
	s := strings.TrimPrefix(raw, "\uFEFF")
	s = strings.TrimSpace(s)
	return utils.CanonicalSecret(s)
}

// isPlausibleEntry rejects values that cannot be typed into a password field:
// empty values, overlong values, invalid UTF-8 and control characters.
func isPlausibleEntry(v string) bool {
	if v == "" || utf8.RuneCountInString(v) > maxEntryLength {
		return false
	}
	if !utf8.ValidString(v) {
		return false
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// isComment reports whether a trimmed line is a whole-line comment.
// Inline '#' is kept: it is a legal password character.
func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#")
}

// unescapeEntry drops the backslash of a leading `\#`, which is how a list
// spells a password that starts with '#'.
func unescapeEntry(trimmed string) string {
	if strings.HasPrefix(trimmed, `\#`) {
		return trimmed[1:]
	}
	return trimmed
}
