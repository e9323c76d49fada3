package export

import (
	"fmt"
	"io"

	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	questionSheet = "试卷"
	answerSheet   = "参考答案"
)

// XLSX renders a paper as a workbook with one sheet of questions and one of
// answers.
type XLSX struct{}

func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSX) Extension() string { return ".xlsx" }

func (XLSX) Render(w io.Writer, p *model.Paper) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", questionSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(answerSheet); err != nil {
		return err
	}

	sections := buildSections(p)

	questionRows := [][]interface{}{
		{p.Title},
		{subtitle(p)},
		{"大题", "题号", "难度", "题目"},
	}
	answerRows := [][]interface{}{
		{p.Title + " 参考答案"},
		{},
		{"大题", "题号", "答案"},
	}
	for _, sec := range sections {
		for i, q := range sec.Questions {
			questionRows = append(questionRows, []interface{}{sec.Heading, i + 1, q.Difficulty.Label(), q.QuestionText})
			answerRows = append(answerRows, []interface{}{sec.Heading, i + 1, q.AnswerText})
		}
	}

	if err := writeRows(f, questionSheet, questionRows); err != nil {
		return err
	}
	if err := writeRows(f, answerSheet, answerRows); err != nil {
		return err
	}

	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return err
	}
	for _, sheet := range []string{questionSheet, answerSheet} {
		if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "B", "C", 8); err != nil {
			return err
		}
		if err := f.SetColStyle(sheet, "C:D", wrap); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(questionSheet, "D", "D", 80); err != nil {
		return err
	}
	if err := f.SetColWidth(answerSheet, "C", "C", 80); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
