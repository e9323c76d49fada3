package model

import (
	"time"

	"github.com/google/uuid"
)

// Paper is a generated exam paper drawn from one library.
type Paper struct {
	ID          uuid.UUID       `json:"id"`
	LibraryID   uuid.UUID       `json:"library_id"`
	LibraryName string          `json:"library_name,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	AuthorID    int             `json:"author_id"`
	Questions   []PaperQuestion `json:"questions,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaperQuestion is a question placed at a fixed position in a paper.
type PaperQuestion struct {
	Question
	Order int `json:"order"`
}

// PaperSection asks for Count random questions of one type.
// A zero Difficulty means any difficulty.
type PaperSection struct {
	QuestionType string `json:"question_type" binding:"required,qtype"`
	Count        int    `json:"count" binding:"min=0,max=500"`
	Difficulty   int    `json:"difficulty" binding:"omitempty,min=1,max=3"`
}

// GeneratePaperRequest is the payload for assembling a paper.
type GeneratePaperRequest struct {
	Title       string         `json:"title" binding:"required,min=1,max=255"`
	Description string         `json:"description" binding:"omitempty,max=2000"`
	Sections    []PaperSection `json:"sections" binding:"required,min=1,max=8,dive"`
}

// ExportFormat selects the document renderer for a paper.
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatPDF      ExportFormat = "pdf"
	ExportFormatXLSX     ExportFormat = "xlsx"
)
