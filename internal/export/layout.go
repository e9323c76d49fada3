package export

import (
	"strings"

	"github.com/stemsi/qbank-backend/internal/model"
)

// section is a run of consecutive paper questions sharing a type.
type section struct {
	Heading   string
	Type      model.QuestionType
	Questions []model.PaperQuestion
}

// buildSections groups the paper's questions, already in paper order, into
// sections headed "一、<type>", "二、<type>" and so on.
func buildSections(p *model.Paper) []section {
	var sections []section
	for _, q := range p.Questions {
		if n := len(sections); n > 0 && sections[n-1].Type == q.QuestionType {
			sections[n-1].Questions = append(sections[n-1].Questions, q)
			continue
		}
		sections = append(sections, section{
			Heading:   chineseNumeral(len(sections)+1) + "、" + string(q.QuestionType),
			Type:      q.QuestionType,
			Questions: []model.PaperQuestion{q},
		})
	}
	return sections
}

var digits = []string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

// chineseNumeral spells 1..99 in Chinese numerals.
func chineseNumeral(n int) string {
	switch {
	case n <= 0 || n > 99:
		return ""
	case n < 10:
		return digits[n]
	case n < 20:
		return "十" + digits[n%10]
	default:
		return digits[n/10] + "十" + digits[n%10]
	}
}

// subtitle is the line shown under the paper title.
func subtitle(p *model.Paper) string {
	if p.LibraryName == "" {
		return ""
	}
	return "题库：" + p.LibraryName
}

// indentContinuation indents every line after the first so multi-line text
// stays inside its list item.
func indentContinuation(text, indent string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), "\n", "\n"+indent)
}
