package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/export"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
	"github.com/stemsi/qbank-backend/internal/response"
)

// Paper errors.
var (
	ErrPaperNotFound        = errors.New("paper not found")
	ErrNotEnoughQuestions   = errors.New("not enough questions in library")
	ErrEmptyPaper           = errors.New("paper must contain at least one question")
	ErrNotPaperAuthor       = errors.New("not the author of this paper")
	ErrUnsupportedExport    = export.ErrUnsupportedFormat
	ErrPDFExportUnavailable = export.ErrPDFFontRequired
)

// NotEnoughQuestionsError reports the section that could not be filled.
type NotEnoughQuestionsError struct {
	QuestionType model.QuestionType
	Difficulty   model.Difficulty
	Requested    int
	Available    int
}

func (e *NotEnoughQuestionsError) Error() string {
	return fmt.Sprintf("%s: %d requested, %d available", e.QuestionType, e.Requested, e.Available)
}

func (e *NotEnoughQuestionsError) Is(target error) bool {
	return target == ErrNotEnoughQuestions
}

// candidateSource lists the questions a section may draw from.
type candidateSource interface {
	ListCandidates(ctx context.Context, libraryID uuid.UUID, qtype model.QuestionType, difficulty model.Difficulty) ([]model.Question, error)
}

// PaperService assembles random papers from a library and exports them.
type PaperService struct {
	paperRepo    *repository.PaperRepository
	questionRepo *repository.QuestionRepository
	libraries    *LibraryService
	exportOpts   export.Options
	shuffle      func(n int, swap func(i, j int))
	log          zerolog.Logger
}

// NewPaperService creates a new PaperService.
func NewPaperService(
	paperRepo *repository.PaperRepository,
	questionRepo *repository.QuestionRepository,
	libraries *LibraryService,
	cfg *config.Config,
	log zerolog.Logger,
) *PaperService {
	return &PaperService{
		paperRepo:    paperRepo,
		questionRepo: questionRepo,
		libraries:    libraries,
		exportOpts:   export.Options{FontPath: cfg.PDFFontPath},
		shuffle:      rand.Shuffle,
		log:          log.With().Str("component", "paper_service").Logger(),
	}
}

// Generate draws the requested number of questions per section and stores
// the paper. Nothing is written when any section cannot be filled.
func (s *PaperService) Generate(ctx context.Context, libraryID uuid.UUID, authorID int, req *model.GeneratePaperRequest) (*model.Paper, error) {
	library, err := s.libraries.Get(ctx, libraryID)
	if err != nil {
		return nil, err
	}

	questions, err := pickQuestions(ctx, s.questionRepo, libraryID, req.Sections, s.shuffle)
	if err != nil {
		return nil, err
	}

	p := &model.Paper{
		LibraryID:   libraryID,
		LibraryName: library.Name,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		AuthorID:    authorID,
		Questions:   questions,
	}
	if err := s.paperRepo.CreateWithQuestions(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("paper_id", p.ID.String()).
		Str("library_id", libraryID.String()).
		Int("questions", len(questions)).
		Msg("Paper generated")
	return p, nil
}

// pickQuestions samples each section from its candidates. A question is
// never used twice in one paper, even when two sections share a type.
// Orders run 1..N across the whole paper in section order.
func pickQuestions(ctx context.Context, src candidateSource, libraryID uuid.UUID, sections []model.PaperSection, shuffle func(int, func(int, int))) ([]model.PaperQuestion, error) {
	used := make(map[uuid.UUID]bool)
	var picked []model.PaperQuestion

	for _, sec := range sections {
		if sec.Count <= 0 {
			continue
		}
		qtype, ok := model.ParseQuestionType(sec.QuestionType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidType, sec.QuestionType)
		}
		difficulty := model.Difficulty(sec.Difficulty)

		all, err := src.ListCandidates(ctx, libraryID, qtype, difficulty)
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		candidates := all[:0:0]
		for _, q := range all {
			if !used[q.ID] {
				candidates = append(candidates, q)
			}
		}

		if len(candidates) < sec.Count {
			return nil, &NotEnoughQuestionsError{
				QuestionType: qtype,
				Difficulty:   difficulty,
				Requested:    sec.Count,
				Available:    len(candidates),
			}
		}

		shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, q := range candidates[:sec.Count] {
			used[q.ID] = true
			picked = append(picked, model.PaperQuestion{Question: q, Order: len(picked) + 1})
		}
	}

	if len(picked) == 0 {
		return nil, ErrEmptyPaper
	}
	return picked, nil
}

// List retrieves papers with pagination. Admins see every paper, other users
// only their own.
func (s *PaperService) List(ctx context.Context, userID int, isAdmin bool, page, perPage int) ([]model.Paper, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	authorID := userID
	if isAdmin {
		authorID = 0
	}
	papers, total, err := s.paperRepo.ListPaginated(ctx, authorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if papers == nil {
		papers = []model.Paper{}
	}
	return papers, response.NewPagination(page, perPage, total), nil
}

// Get retrieves a paper with its ordered questions.
func (s *PaperService) Get(ctx context.Context, id uuid.UUID) (*model.Paper, error) {
	p, err := s.paperRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPaperNotFound
	}
	return p, err
}

// Delete removes a paper. Only its author or an admin may delete it.
func (s *PaperService) Delete(ctx context.Context, id uuid.UUID, userID int, isAdmin bool) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && p.AuthorID != userID {
		return ErrNotPaperAuthor
	}
	err = s.paperRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPaperNotFound
	}
	return err
}

// ExportedPaper is a rendered paper ready for download.
type ExportedPaper struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders a stored paper in the requested format.
func (s *PaperService) Export(ctx context.Context, id uuid.UUID, format model.ExportFormat) (*ExportedPaper, error) {
	renderer, err := export.New(format, s.exportOpts)
	if err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, p); err != nil {
		s.log.Error().Err(err).Str("paper_id", id.String()).Str("format", string(format)).Msg("Export failed")
		return nil, fmt.Errorf("render paper: %w", err)
	}

	return &ExportedPaper{
		Filename:    export.Filename(p, renderer),
		ContentType: renderer.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
