package extractor

import (
	"regexp"
	"strings"

	"github.com/stemsi/qbank-backend/internal/model"
)

// Whitespace classes also take Unicode spaces such as the full-width U+3000.
const (
	sp    = `[\s\p{Zs}]`
	nonSp = `[^\s\p{Zs}]`
)

var (
	numberedRe     = regexp.MustCompile(`^\p{Nd}+[.、)\s\p{Zs}]` + sp + `*` + nonSp)
	parenNumberRe  = regexp.MustCompile(`^\(\p{Nd}+\)` + sp + `*` + nonSp)
	chineseNumRe   = regexp.MustCompile(`^[一二三四五六七八九十百千]+[.、)\s\p{Zs}]` + sp + `*` + nonSp)
	headingRe      = regexp.MustCompile(`^#{1,6}` + sp + `+`)
	afterHeadingRe = regexp.MustCompile(`^\p{Nd}+[.、]`)
	bulletNumRe    = regexp.MustCompile(`^` + sp + `*[-*]` + sp + `+\p{Nd}+[.、]` + sp + `*` + nonSp)
	h4Re           = regexp.MustCompile(`^####` + sp + `+(` + nonSp + `.*)`)
	smallNumRe     = regexp.MustCompile(`^\p{Nd}{1,3}\.`)

	numberPrefixRe  = regexp.MustCompile(`^\p{Nd}+[.、)\s\p{Zs}]` + sp + `*`)
	parenPrefixRe   = regexp.MustCompile(`^\(\p{Nd}+\)` + sp + `*`)
	chinesePrefixRe = regexp.MustCompile(`^[一二三四五六七八九十百千]+[.、)\s\p{Zs}]` + sp + `*`)
	bulletPrefixRe  = regexp.MustCompile(`^` + sp + `*[-*]` + sp + `+\p{Nd}+[.、]` + sp + `*`)
)

// boundaryKeywords mark a new question wherever they appear in a line.
var boundaryKeywords = []string{
	"名词解释", "简答题", "论述题", "填空题",
	"选择题", "判断题", "问答题", "单选题",
	"多选题", "不定项选择题",
}

// boundaryRule recognizes one way a question can start and knows how to
// remove its numbering or heading prefix.
type boundaryRule struct {
	name  string
	match func(line, prev string) bool
	strip func(line string) string
}

// boundaryRules is evaluated as a union: a line is a boundary if any rule
// matches. The rules overlap on purpose and favour recall, so prose such as
// "3 apples" or a sentence that mentions 选择题 also opens a question.
// Table order only decides which prefix stripper runs.
var boundaryRules = []boundaryRule{
	{name: "h4-heading", match: matchRe(h4Re), strip: stripHeading},
	{name: "bullet-number", match: matchRe(bulletNumRe), strip: stripRe(bulletPrefixRe)},
	{name: "number", match: matchRe(numberedRe), strip: stripNumbering},
	{name: "paren-number", match: matchRe(parenNumberRe), strip: stripNumbering},
	{name: "chinese-number", match: matchRe(chineseNumRe), strip: stripNumbering},
	{name: "after-heading", match: matchAfterHeading, strip: stripNumbering},
	{name: "type-keyword", match: matchKeyword, strip: stripNumbering},
	{name: "small-number", match: matchRe(smallNumRe), strip: stripNumbering},
}

// detectBoundary returns the first rule that marks line as the start of a
// question, or nil. prev is the preceding normalized line.
func detectBoundary(line, prev string) *boundaryRule {
	for i := range boundaryRules {
		if boundaryRules[i].match(line, prev) {
			return &boundaryRules[i]
		}
	}
	return nil
}

func matchRe(re *regexp.Regexp) func(string, string) bool {
	return func(line, _ string) bool {
		return re.MatchString(line)
	}
}

func matchAfterHeading(line, prev string) bool {
	return headingRe.MatchString(prev) && afterHeadingRe.MatchString(line)
}

func matchKeyword(line, _ string) bool {
	for _, kw := range boundaryKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

func stripRe(re *regexp.Regexp) func(string) string {
	return func(line string) string {
		return re.ReplaceAllString(line, "")
	}
}

func stripHeading(line string) string {
	if m := h4Re.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return line
}

// stripNumbering removes, in turn, an Arabic number prefix, a parenthesized
// number and a Chinese numeral prefix.
func stripNumbering(line string) string {
	line = numberPrefixRe.ReplaceAllString(line, "")
	line = parenPrefixRe.ReplaceAllString(line, "")
	return chinesePrefixRe.ReplaceAllString(line, "")
}

// typeKeywords is checked top to bottom; the first group with a hit wins.
var typeKeywords = []struct {
	qtype model.QuestionType
	words []string
}{
	{model.QuestionTypeTermExplanation, []string{"名词解释"}},
	{model.QuestionTypeShortAnswer, []string{"简答题", "简要回答", "简述", "简要说明"}},
	{model.QuestionTypeEssay, []string{"论述题", "论述", "详细阐述"}},
	{model.QuestionTypeFillBlank, []string{"填空题"}},
	{model.QuestionTypeChoice, []string{"选择题", "单选题", "多选题", "不定项选择题"}},
	{model.QuestionTypeTrueFalse, []string{"判断题"}},
	{model.QuestionTypeQA, []string{"问答题"}},
}

// inferType guesses the question type from keywords in line.
func inferType(line string) model.QuestionType {
	for _, group := range typeKeywords {
		for _, w := range group.words {
			if strings.Contains(line, w) {
				return group.qtype
			}
		}
	}
	return model.QuestionTypeUnknown
}
