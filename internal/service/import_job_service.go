package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
)

// ErrImportJobNotFound is returned for unknown or expired jobs.
var ErrImportJobNotFound = errors.New("import job not found")

// ImportJobService queues documents for background import and reports job
// progress.
type ImportJobService struct {
	jobs *repository.ImportJobRepository
}

// NewImportJobService creates a new ImportJobService.
func NewImportJobService(jobs *repository.ImportJobRepository) *ImportJobService {
	return &ImportJobService{jobs: jobs}
}

// Submit queues a document and returns the job's initial status.
func (s *ImportJobService) Submit(ctx context.Context, libraryID uuid.UUID, filename string, document []byte, opts ImportOptions, userID int) (*model.ImportJobStatus, error) {
	job := &model.ImportJob{
		ID:           uuid.New(),
		LibraryID:    libraryID,
		QuestionType: opts.Override,
		Charset:      opts.Charset,
		Filename:     filename,
		Document:     document,
		SubmittedBy:  userID,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		return nil, err
	}
	return &model.ImportJobStatus{
		JobID:       job.ID,
		LibraryID:   libraryID,
		Filename:    filename,
		SubmittedBy: userID,
		State:       model.JobStateQueued,
		UpdatedAt:   job.SubmittedAt,
	}, nil
}

// Status returns the current status of a job.
func (s *ImportJobService) Status(ctx context.Context, jobID uuid.UUID) (*model.ImportJobStatus, error) {
	st, err := s.jobs.GetStatus(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrImportJobNotFound
	}
	return st, err
}

// Subscribe streams status updates of a job. Callers must Close it.
func (s *ImportJobService) Subscribe(ctx context.Context, jobID uuid.UUID) *redis.PubSub {
	return s.jobs.Subscribe(ctx, jobID)
}
