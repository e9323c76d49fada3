package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/stemsi/qbank-backend/internal/model"
)

// Markdown renders a paper as a markdown document: questions first, then a
// 参考答案 part mirroring the sections.
type Markdown struct{}

func (Markdown) ContentType() string { return "text/markdown; charset=utf-8" }
func (Markdown) Extension() string   { return ".md" }

func (Markdown) Render(w io.Writer, p *model.Paper) error {
	bw := bufio.NewWriter(w)
	sections := buildSections(p)

	fmt.Fprintf(bw, "# %s\n\n", p.Title)
	if s := subtitle(p); s != "" {
		fmt.Fprintf(bw, "%s\n\n", s)
	}
	if p.Description != "" {
		fmt.Fprintf(bw, "> %s\n\n", indentContinuation(p.Description, "> "))
	}

	for _, sec := range sections {
		fmt.Fprintf(bw, "## %s\n\n", sec.Heading)
		for i, q := range sec.Questions {
			prefix := strconv.Itoa(i+1) + ". "
			fmt.Fprintf(bw, "%s%s\n\n", prefix, indentContinuation(q.QuestionText, "   "))
		}
	}

	fmt.Fprint(bw, "---\n\n## 参考答案\n\n")
	for _, sec := range sections {
		fmt.Fprintf(bw, "### %s\n\n", sec.Heading)
		for i, q := range sec.Questions {
			prefix := strconv.Itoa(i+1) + ". "
			fmt.Fprintf(bw, "%s%s\n\n", prefix, indentContinuation(q.AnswerText, "   "))
		}
	}

	return bw.Flush()
}
