package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// answerWords are the labels that introduce an answer, longest first.
var answerWords = []string{"参考答案", "正确答案", "答案", "解析", "解答", "答", "解"}

const answerWordPattern = `(?:参考答案|正确答案|答案|解析|解答|答|解)`

var (
	// inlineAnswerRe finds a bold answer label anywhere in a line.
	inlineAnswerRe = regexp.MustCompile(`\*\*?` + answerWordPattern + `\*?\*?[：:]`)

	boldMarkerRe  = regexp.MustCompile(`^(` + sp + `*)\*\*?` + answerWordPattern + `\*?\*?[：:]` + sp + `*\*?\*?` + sp + `*`)
	plainMarkerRe = regexp.MustCompile(`^(` + sp + `*)` + answerWordPattern + `[：:]` + sp + `*`)
)

// answerMarkers holds every literal answer-start marker: each label with an
// ASCII or full-width colon, plain or wrapped in markdown bold.
var answerMarkers = buildAnswerMarkers()

func buildAnswerMarkers() []string {
	var markers []string
	for _, w := range answerWords {
		for _, colon := range []string{":", "："} {
			markers = append(markers,
				w+colon,
				"**"+w+colon+"**",
				"**"+w+"**"+colon,
			)
		}
	}
	sort.SliceStable(markers, func(i, j int) bool {
		return len(markers[i]) > len(markers[j])
	})
	return markers
}

// hasAnswerPrefix reports whether line, ignoring leading whitespace, opens
// with an answer marker.
func hasAnswerPrefix(line string) bool {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	for _, m := range answerMarkers {
		if strings.HasPrefix(trimmed, m) {
			return true
		}
	}
	return false
}

// findAnswerMarker returns the byte offset of the earliest answer marker in
// s, or -1. Single-character labels glued to a preceding Han character
// ("了解：", "回答：") are part of the sentence and are skipped.
func findAnswerMarker(s string) int {
	best := -1
	for _, m := range answerMarkers {
		from := 0
		for from < len(s) {
			idx := strings.Index(s[from:], m)
			if idx < 0 {
				break
			}
			idx += from
			if !gluedSingleLabel(s, idx, m) {
				if best < 0 || idx < best {
					best = idx
				}
				break
			}
			from = idx + len(m)
		}
	}
	return best
}

func gluedSingleLabel(s string, idx int, marker string) bool {
	if !strings.HasPrefix(marker, "答") && !strings.HasPrefix(marker, "解") {
		return false
	}
	if utf8.RuneCountInString(strings.TrimRight(marker, ":：")) != 1 {
		return false
	}
	if idx == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return unicode.Is(unicode.Han, r)
}

// stripAnswerMarker removes one leading answer label (bold or plain) and
// keeps the line's indentation and everything after the label untouched.
func stripAnswerMarker(line string) string {
	if m := boldMarkerRe.FindStringSubmatchIndex(line); m != nil {
		return line[m[2]:m[3]] + line[m[1]:]
	}
	if m := plainMarkerRe.FindStringSubmatchIndex(line); m != nil {
		return line[m[2]:m[3]] + line[m[1]:]
	}
	return line
}

// cleanAnswer strips leading answer labels from each answer line. Long-form
// answers keep their layout and only lose surrounding empty lines; all other
// answers are trimmed.
func cleanAnswer(answer string, longForm bool) string {
	lines := strings.Split(answer, "\n")
	for i, l := range lines {
		lines[i] = stripAnswerMarker(l)
	}
	cleaned := strings.Join(lines, "\n")
	if longForm {
		cleaned = strings.Trim(cleaned, "\n")
	} else {
		cleaned = strings.TrimSpace(cleaned)
	}
	if strings.TrimSpace(cleaned) == "" {
		return AnswerPlaceholder
	}
	return cleaned
}
