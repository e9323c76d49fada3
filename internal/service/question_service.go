package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
	"github.com/stemsi/qbank-backend/internal/response"
)

// Question errors.
var (
	ErrQuestionNotFound  = errors.New("question not found")
	ErrQuestionDuplicate = errors.New("question already exists in this library")
	ErrInvalidType       = errors.New("unknown question type")
)

// QuestionService handles question business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	libraries    *LibraryService
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, libraries *LibraryService) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, libraries: libraries}
}

// List retrieves a page of a library's questions.
func (s *QuestionService) List(ctx context.Context, libraryID uuid.UUID, filter model.QuestionFilter, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if err := s.libraries.EnsureExists(ctx, libraryID); err != nil {
		return nil, nil, err
	}
	page, perPage = normalizePage(page, perPage)

	questions, total, err := s.questionRepo.ListByLibrary(ctx, libraryID, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, response.NewPagination(page, perPage, total), nil
}

// Get retrieves a question by id.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	return q, err
}

// Create adds a hand-written question to a library.
func (s *QuestionService) Create(ctx context.Context, libraryID uuid.UUID, req *model.CreateQuestionRequest) (*model.Question, error) {
	if err := s.libraries.EnsureExists(ctx, libraryID); err != nil {
		return nil, err
	}
	qtype, ok := model.ParseQuestionType(req.QuestionType)
	if !ok {
		return nil, ErrInvalidType
	}
	difficulty := model.Difficulty(req.Difficulty)
	if difficulty == 0 {
		difficulty = model.DifficultyMedium
	}

	q := &model.Question{
		LibraryID:    libraryID,
		QuestionText: strings.TrimSpace(req.QuestionText),
		AnswerText:   strings.TrimSpace(req.AnswerText),
		QuestionType: qtype,
		Difficulty:   difficulty,
	}
	if err := s.questionRepo.Insert(ctx, q); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrQuestionDuplicate
		}
		return nil, err
	}
	return q, nil
}

// Update replaces a question's content.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	qtype, ok := model.ParseQuestionType(req.QuestionType)
	if !ok {
		return nil, ErrInvalidType
	}

	q := &model.Question{
		ID:           id,
		QuestionText: strings.TrimSpace(req.QuestionText),
		AnswerText:   strings.TrimSpace(req.AnswerText),
		QuestionType: qtype,
		Difficulty:   model.Difficulty(req.Difficulty),
	}
	if err := s.questionRepo.Update(ctx, q); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrQuestionNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrQuestionDuplicate
		}
		return nil, err
	}
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.questionRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuestionNotFound
	}
	return err
}

// BatchDelete removes the listed questions of one library and returns how
// many were deleted. Ids belonging to other libraries are ignored.
func (s *QuestionService) BatchDelete(ctx context.Context, libraryID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if err := s.libraries.EnsureExists(ctx, libraryID); err != nil {
		return 0, err
	}
	return s.questionRepo.DeleteBatch(ctx, libraryID, ids)
}
