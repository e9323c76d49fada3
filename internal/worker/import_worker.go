package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/service"
)

// JobQueue is the Redis side of asynchronous imports.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*model.ImportJob, error)
	SaveStatus(ctx context.Context, st *model.ImportJobStatus) error
}

// Importer runs one document through extraction and persistence.
type Importer interface {
	Import(ctx context.Context, document []byte, libraryID uuid.UUID, opts service.ImportOptions) model.ImportResult
}

// ImportWorker consumes import_documents_queue and imports each document
// into its library, publishing status as it goes.
type ImportWorker struct {
	queue    JobQueue
	importer Importer
	poll     time.Duration
	log      zerolog.Logger
}

// NewImportWorker creates a new ImportWorker.
func NewImportWorker(queue JobQueue, importer Importer, log zerolog.Logger) *ImportWorker {
	return &ImportWorker{
		queue:    queue,
		importer: importer,
		poll:     time.Second,
		log:      log.With().Str("component", "import_worker").Logger(),
	}
}

// Run starts n consumers and blocks until ctx is cancelled and every
// in-flight job has finished. Jobs still queued stay in Redis for the next
// start.
func (w *ImportWorker) Run(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.Start(ctx, id)
		}(i)
	}
	wg.Wait()
}

// Start begins the worker loop. Call in a goroutine.
func (w *ImportWorker) Start(ctx context.Context, id int) {
	log := w.log.With().Int("worker", id).Logger()
	log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx, log)
		}
	}
}

func (w *ImportWorker) processNext(ctx context.Context, log zerolog.Logger) {
	// Dequeue blocks until a job is available or the poll interval passes.
	job, err := w.queue.Dequeue(ctx, w.poll)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("Dequeue error")
			time.Sleep(w.poll)
		}
		return
	}
	if job == nil {
		return
	}

	// A job that has started runs to completion even during shutdown.
	w.Process(context.WithoutCancel(ctx), job)
}

// Process imports a single job and records its final status.
func (w *ImportWorker) Process(ctx context.Context, job *model.ImportJob) model.ImportResult {
	log := w.log.With().
		Str("job_id", job.ID.String()).
		Str("library_id", job.LibraryID.String()).
		Str("filename", job.Filename).
		Logger()

	status := &model.ImportJobStatus{
		JobID:       job.ID,
		LibraryID:   job.LibraryID,
		Filename:    job.Filename,
		SubmittedBy: job.SubmittedBy,
		State:       model.JobStateRunning,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := w.queue.SaveStatus(ctx, status); err != nil {
		log.Warn().Err(err).Msg("Failed to publish running status")
	}

	start := time.Now()
	result := w.importer.Import(ctx, job.Document, job.LibraryID, service.ImportOptions{
		Override: job.QuestionType,
		Charset:  job.Charset,
	})

	status.State = model.JobStateDone
	status.Result = &result
	status.UpdatedAt = time.Now().UTC()
	if err := w.queue.SaveStatus(ctx, status); err != nil {
		log.Error().Err(err).Msg("Failed to publish final status")
	}

	log.Info().
		Str("status", string(result.Status)).
		Int("saved", result.SavedCount).
		Int("found", result.TotalFound).
		Dur("took", time.Since(start)).
		Msg("Import job finished")
	return result
}
