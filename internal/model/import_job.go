package model

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus tells callers why an import produced the counts it did.
type ImportStatus string

const (
	ImportStatusOK     ImportStatus = "ok"
	ImportStatusEmpty  ImportStatus = "empty"
	ImportStatusFailed ImportStatus = "failed"
)

// ImportResult summarizes one document import.
type ImportResult struct {
	SavedCount int          `json:"saved_count"`
	TotalFound int          `json:"total_found"`
	Status     ImportStatus `json:"status"`
	Reason     string       `json:"reason,omitempty"`
}

// JobState is the lifecycle of an asynchronous import.
type JobState string

const (
	JobStateQueued  JobState = "queued"
	JobStateRunning JobState = "running"
	JobStateDone    JobState = "done"
)

// ImportJob is the queued form of an asynchronous import. The document
// travels with the job so the worker needs no shared disk.
type ImportJob struct {
	ID           uuid.UUID    `json:"id"`
	LibraryID    uuid.UUID    `json:"library_id"`
	QuestionType QuestionType `json:"question_type,omitempty"`
	Charset      string       `json:"charset"`
	Filename     string       `json:"filename"`
	Document     []byte       `json:"document"`
	SubmittedBy  int          `json:"submitted_by"`
	SubmittedAt  time.Time    `json:"submitted_at"`
}

// ImportJobStatus is the externally visible state of an ImportJob.
type ImportJobStatus struct {
	JobID       uuid.UUID     `json:"job_id"`
	LibraryID   uuid.UUID     `json:"library_id"`
	Filename    string        `json:"filename"`
	SubmittedBy int           `json:"submitted_by"`
	State       JobState      `json:"state"`
	Result      *ImportResult `json:"result,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
