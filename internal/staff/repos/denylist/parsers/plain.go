// Package parsers turns denylist source files into DenyEntry values.
package parsers

import (
	"bufio"
	"io"
	"strings"
	"time"

	logpkg "github.com/haukened/staffdir/internal/staff/common/log"
	"github.com/haukened/staffdir/internal/staff/domain"
)

// ParsePlainList parses a newline-delimited list of common passwords into DenyEntry values.
//
// Behavior:
// - Lines whose first non-space character is '#' are comments; a password
//   starting with '#' is written with a leading backslash, as in `\#1password`
// - Trims surrounding whitespace and folds case
// - Skips empty lines and values that fail isPlausibleEntry
// - De-duplicates by folded value while preserving first-seen order
// - Each entry is attributed to the provided source and timestamped with now
func ParsePlainList(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.DenyEntry, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.DenyEntry, 0, 256)
	logger.Debug(map[string]any{"source": source}, "parse_plain_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isComment(trimmed) {
			continue
		}
		trimmed = unescapeEntry(trimmed)

		if !isPlausibleEntry(trimmed) {
			logger.Debug(map[string]any{"line": lineNum}, "skip_implausible")
			continue
		}
		value := normalizeEntry(trimmed)

		if _, ok := seen[value]; ok {
			continue
		}

		entry, err := domain.NewDenyEntry(value, source, now)
		if err != nil {
			// Skip invalid entries rather than failing the entire parse.
			logger.Debug(map[string]any{"line": lineNum, "error": err.Error()}, "skip_constructor_error")
			continue
		}
		out = append(out, entry)
		seen[value] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_plain_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}
