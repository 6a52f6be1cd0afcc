package helpers

import (
	"strings"
)

// SplitLines splits text on line breaks, trimming every line and dropping empty ones
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// StripSpaces removes every whitespace rune, including non-breaking spaces
func StripSpaces(text string) string {
	return strings.Join(strings.Fields(text), "")
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
