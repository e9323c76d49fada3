package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/extractor"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
)

// QuestionStore is the persistence collaborator of an import. Both the
// PostgreSQL repository and the SQLite store satisfy it.
type QuestionStore interface {
	Exists(ctx context.Context, questionText string, libraryID uuid.UUID) (bool, error)
	Insert(ctx context.Context, q *model.Question) error
}

// ImportOptions tunes a single import.
type ImportOptions struct {
	// Override forces every record to this type instead of keyword inference.
	Override model.QuestionType
	// Charset of the raw document; see DecodeDocument.
	Charset string
}

// ImportService turns a raw document into stored questions of one library.
type ImportService struct {
	store    QuestionStore
	maxBytes int64
	log      zerolog.Logger
}

// NewImportService creates a new ImportService. Documents larger than
// maxBytes are refused; zero disables the check.
func NewImportService(store QuestionStore, maxBytes int64, log zerolog.Logger) *ImportService {
	return &ImportService{
		store:    store,
		maxBytes: maxBytes,
		log:      log.With().Str("component", "import_service").Logger(),
	}
}

// Import extracts every question from document and stores those not yet
// present in the library. It never returns an error: a document that cannot
// be processed at all yields zero counts with StatusFailed, and a failure on
// one record only skips that record.
func (s *ImportService) Import(ctx context.Context, document []byte, libraryID uuid.UUID, opts ImportOptions) (result model.ImportResult) {
	log := s.log.With().Str("library_id", libraryID.String()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Import aborted")
			result = failed(fmt.Sprintf("internal error: %v", r))
		}
	}()

	if s.maxBytes > 0 && int64(len(document)) > s.maxBytes {
		log.Error().Int("bytes", len(document)).Int64("max_bytes", s.maxBytes).Msg("Document too large")
		return failed(ErrFileTooLarge.Error())
	}

	text, err := DecodeDocument(document, opts.Charset)
	if err != nil {
		log.Error().Err(err).Str("charset", opts.Charset).Msg("Document could not be decoded")
		return failed(err.Error())
	}

	records := extractor.Extract(text, opts.Override)
	result = model.ImportResult{TotalFound: len(records), Status: model.ImportStatusOK}
	if len(records) == 0 {
		result.Status = model.ImportStatusEmpty
		log.Info().Msg("No questions found in document")
		return result
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Int("processed", i).Msg("Import interrupted")
			result.Status = model.ImportStatusFailed
			result.Reason = err.Error()
			break
		}
		if rec.Empty() {
			log.Debug().Int("record", i).Msg("Skipping record without question text")
			continue
		}
		if s.save(ctx, log, i, libraryID, rec) {
			result.SavedCount++
		}
	}

	log.Info().
		Int("total_found", result.TotalFound).
		Int("saved_count", result.SavedCount).
		Str("status", string(result.Status)).
		Msg("Import finished")
	return result
}

// save stores one record and reports whether a new question was written.
func (s *ImportService) save(ctx context.Context, log zerolog.Logger, i int, libraryID uuid.UUID, rec extractor.Record) bool {
	exists, err := s.store.Exists(ctx, rec.Question, libraryID)
	if err != nil {
		log.Warn().Err(err).Int("record", i).Msg("Existence check failed, skipping record")
		return false
	}
	if exists {
		return false
	}

	q := &model.Question{
		LibraryID:    libraryID,
		QuestionText: rec.Question,
		AnswerText:   rec.Answer,
		QuestionType: rec.Type,
		Difficulty:   rec.Difficulty,
	}
	if err := s.store.Insert(ctx, q); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			log.Warn().Err(err).Int("record", i).Msg("Insert failed, skipping record")
		}
		return false
	}
	return true
}

func failed(reason string) model.ImportResult {
	return model.ImportResult{Status: model.ImportStatusFailed, Reason: reason}
}
