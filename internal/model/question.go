package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Question is a single stored question/answer pair inside a library.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	LibraryID    uuid.UUID    `json:"library_id"`
	QuestionText string       `json:"question_text"`
	AnswerText   string       `json:"answer_text"`
	QuestionType QuestionType `json:"question_type"`
	Difficulty   Difficulty   `json:"difficulty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// QuestionType is the closed set of question kinds. Values are the labels
// stored in the database and shown in exported papers.
type QuestionType string

const (
	QuestionTypeTermExplanation QuestionType = "名词解释"
	QuestionTypeShortAnswer     QuestionType = "简答题"
	QuestionTypeEssay           QuestionType = "论述题"
	QuestionTypeFillBlank       QuestionType = "填空题"
	QuestionTypeChoice          QuestionType = "选择题"
	QuestionTypeTrueFalse       QuestionType = "判断题"
	QuestionTypeQA              QuestionType = "问答题"
	QuestionTypeUnknown         QuestionType = "未知"
)

// QuestionTypes lists every type in display order.
var QuestionTypes = []QuestionType{
	QuestionTypeChoice,
	QuestionTypeTrueFalse,
	QuestionTypeFillBlank,
	QuestionTypeTermExplanation,
	QuestionTypeShortAnswer,
	QuestionTypeQA,
	QuestionTypeEssay,
	QuestionTypeUnknown,
}

var questionTypeAliases = map[string]QuestionType{
	"term_explanation": QuestionTypeTermExplanation,
	"short_answer":     QuestionTypeShortAnswer,
	"essay":            QuestionTypeEssay,
	"fill_blank":       QuestionTypeFillBlank,
	"choice":           QuestionTypeChoice,
	"single_choice":    QuestionTypeChoice,
	"multiple_choice":  QuestionTypeChoice,
	"true_false":       QuestionTypeTrueFalse,
	"qa":               QuestionTypeQA,
	"unknown":          QuestionTypeUnknown,
	"单选题":              QuestionTypeChoice,
	"多选题":              QuestionTypeChoice,
	"不定项选择题":           QuestionTypeChoice,
}

// ParseQuestionType accepts either a stored label (e.g. "简答题") or an
// English slug (e.g. "short_answer"). Choice variants collapse to the
// choice family.
func ParseQuestionType(s string) (QuestionType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range QuestionTypes {
		if string(t) == s {
			return t, true
		}
	}
	t, ok := questionTypeAliases[strings.ToLower(s)]
	return t, ok
}

// IsLongForm reports whether answers of this type keep their raw layout
// (indentation, images, tables).
func (t QuestionType) IsLongForm() bool {
	return t == QuestionTypeShortAnswer || t == QuestionTypeEssay
}

// Difficulty is stored as 1 (easy) to 3 (hard).
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

// Label returns the display name of the difficulty.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "简单"
	case DifficultyMedium:
		return "中等"
	case DifficultyHard:
		return "困难"
	default:
		return "未知"
	}
}

// Valid reports whether d is one of the defined levels.
func (d Difficulty) Valid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

// CreateQuestionRequest is the payload for adding a question by hand.
type CreateQuestionRequest struct {
	QuestionText string `json:"question_text" binding:"required,min=1,max=20000"`
	AnswerText   string `json:"answer_text" binding:"required,min=1,max=50000"`
	QuestionType string `json:"question_type" binding:"required,qtype"`
	Difficulty   int    `json:"difficulty" binding:"omitempty,min=1,max=3"`
}

// UpdateQuestionRequest is the payload for editing a question.
type UpdateQuestionRequest struct {
	QuestionText string `json:"question_text" binding:"required,min=1,max=20000"`
	AnswerText   string `json:"answer_text" binding:"required,min=1,max=50000"`
	QuestionType string `json:"question_type" binding:"required,qtype"`
	Difficulty   int    `json:"difficulty" binding:"required,min=1,max=3"`
}

// BatchDeleteQuestionsRequest lists questions to remove from one library.
type BatchDeleteQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1,max=1000"`
}

// QuestionFilter narrows question listings.
type QuestionFilter struct {
	Type       QuestionType
	Difficulty Difficulty
	Search     string
}
