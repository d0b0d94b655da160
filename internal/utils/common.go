// Package utils provides small parsing helpers shared by the CLI, the tool
// server and the validator.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitAndTrim splits s by sep and trims whitespace from each part.
// Empty parts are omitted from the result.
func SplitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ParseID parses a single positive task id.
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("task id must be positive, got %d", id)
	}
	return id, nil
}

// ParseIDList parses a comma-separated list of task ids such as "1, 4,7".
// An empty string yields an empty, non-nil slice.
func ParseIDList(s string) ([]int, error) {
	parts := SplitAndTrim(s, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := ParseID(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JSONPointerToPath converts a JSON Pointer (RFC 6901) to a dot-notation path,
// e.g. "#/tags/0" becomes "tags[0]". Used to render schema error locations.
func JSONPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		// ~1 is "/", ~0 is "~"
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
