package model

// Statistics aggregates counts across the whole installation.
type Statistics struct {
	TotalLibraries        int                  `json:"total_libraries"`
	TotalQuestions        int                  `json:"total_questions"`
	TotalPapers           int                  `json:"total_papers"`
	QuestionsByType       map[QuestionType]int `json:"questions_by_type"`
	QuestionsByDifficulty map[string]int       `json:"questions_by_difficulty"`
}
