package extractor

import (
	"strings"
	"unicode"
)

// splitLines breaks a document into lines with trailing whitespace removed.
// Leading blank lines are dropped and every run of blank lines collapses to a
// single empty separator line.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRightFunc(l, unicode.IsSpace)
		if l == "" && (len(lines) == 0 || lines[len(lines)-1] == "") {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
