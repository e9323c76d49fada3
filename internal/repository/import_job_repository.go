package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/model"
)

// ImportJobRepository keeps asynchronous import jobs in Redis: the pending
// queue, a status hash per job, and a PubSub channel per job for progress.
type ImportJobRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewImportJobRepository creates a new ImportJobRepository. Status entries
// expire after ttl.
func NewImportJobRepository(rdb *redis.Client, ttl time.Duration) *ImportJobRepository {
	return &ImportJobRepository{rdb: rdb, ttl: ttl}
}

// Enqueue records the job as queued and pushes it onto the import queue.
func (r *ImportJobRepository) Enqueue(ctx context.Context, job *model.ImportJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal import job: %w", err)
	}

	status := &model.ImportJobStatus{
		JobID:       job.ID,
		LibraryID:   job.LibraryID,
		Filename:    job.Filename,
		SubmittedBy: job.SubmittedBy,
		State:       model.JobStateQueued,
		UpdatedAt:   job.SubmittedAt,
	}
	if err := r.SaveStatus(ctx, status); err != nil {
		return err
	}

	if err := r.rdb.RPush(ctx, config.WorkerKey.ImportQueue, payload).Err(); err != nil {
		return fmt.Errorf("push import job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next job. It returns (nil, nil) when
// the queue stayed empty.
func (r *ImportJobRepository) Dequeue(ctx context.Context, timeout time.Duration) (*model.ImportJob, error) {
	result, err := r.rdb.BLPop(ctx, timeout, config.WorkerKey.ImportQueue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}

	var job model.ImportJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal import job: %w", err)
	}
	return &job, nil
}

// SaveStatus stores the job status with the configured TTL and publishes it
// to the job's channel.
func (r *ImportJobRepository) SaveStatus(ctx context.Context, st *model.ImportJobStatus) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal import status: %w", err)
	}

	jobID := st.JobID.String()
	key := config.CacheKey.ImportJobKey(jobID)

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "state", string(st.State), "payload", payload)
		pipe.Expire(ctx, key, r.ttl)
		pipe.Publish(ctx, config.CacheKey.ImportJobChannel(jobID), payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save import status: %w", err)
	}
	return nil
}

// GetStatus returns the stored status of a job, or ErrNotFound when it is
// unknown or expired.
func (r *ImportJobRepository) GetStatus(ctx context.Context, jobID uuid.UUID) (*model.ImportJobStatus, error) {
	raw, err := r.rdb.HGet(ctx, config.CacheKey.ImportJobKey(jobID.String()), "payload").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var st model.ImportJobStatus
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("unmarshal import status: %w", err)
	}
	return &st, nil
}

// Subscribe opens a PubSub subscription on the job's status channel.
// Callers must Close the returned subscription.
func (r *ImportJobRepository) Subscribe(ctx context.Context, jobID uuid.UUID) *redis.PubSub {
	return r.rdb.Subscribe(ctx, config.CacheKey.ImportJobChannel(jobID.String()))
}
