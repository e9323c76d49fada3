package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/stemsi/qbank-backend/internal/model"
)

const pdfFont = "cjk"

// PDF renders a paper as an A4 PDF. Core PDF fonts carry no CJK glyphs, so a
// UTF-8 TrueType font file is required.
type PDF struct {
	FontPath string
}

func (PDF) ContentType() string { return "application/pdf" }
func (PDF) Extension() string   { return ".pdf" }

func (r PDF) Render(w io.Writer, p *model.Paper) error {
	if r.FontPath == "" {
		return ErrPDFFontRequired
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8Font(pdfFont, "", r.FontPath)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("load pdf font: %w", err)
	}
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "", 18)
	pdf.CellFormat(0, 10, p.Title, "", 1, "C", false, 0, "")
	if s := subtitle(p); s != "" {
		pdf.SetFont(pdfFont, "", 11)
		pdf.CellFormat(0, 7, s, "", 1, "C", false, 0, "")
	}
	if p.Description != "" {
		pdf.SetFont(pdfFont, "", 10)
		pdf.MultiCell(0, 5, p.Description, "", "L", false)
	}
	pdf.Ln(4)

	sections := buildSections(p)
	writeItems(pdf, sections, func(q model.PaperQuestion) string { return q.QuestionText })

	pdf.AddPage()
	pdf.SetFont(pdfFont, "", 16)
	pdf.CellFormat(0, 10, "参考答案", "", 1, "C", false, 0, "")
	pdf.Ln(2)
	writeItems(pdf, sections, func(q model.PaperQuestion) string { return q.AnswerText })

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func writeItems(pdf *gofpdf.Fpdf, sections []section, text func(model.PaperQuestion) string) {
	for _, sec := range sections {
		pdf.SetFont(pdfFont, "", 13)
		pdf.CellFormat(0, 8, sec.Heading, "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 11)
		for i, q := range sec.Questions {
			body := strings.TrimSpace(text(q))
			pdf.MultiCell(0, 6, strconv.Itoa(i+1)+". "+body, "", "L", false)
			pdf.Ln(2)
		}
		pdf.Ln(3)
	}
}
