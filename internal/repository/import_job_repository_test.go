package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/model"
)

func newTestJobRepo(t *testing.T) (*ImportJobRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewImportJobRepository(rdb, time.Hour), mr
}

func TestImportJobRepository_EnqueueDequeue(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestJobRepo(t)

	job := &model.ImportJob{
		ID:          uuid.New(),
		LibraryID:   uuid.New(),
		Charset:     "utf-8",
		Filename:    "bank.md",
		Document:    []byte("1. 题目\n答案：甲"),
		SubmittedBy: 7,
		SubmittedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Enqueue(ctx, job))

	st, err := repo.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateQueued, st.State)
	assert.Equal(t, "bank.md", st.Filename)
	assert.Equal(t, 7, st.SubmittedBy)
	assert.True(t, mr.TTL(config.CacheKey.ImportJobKey(job.ID.String())) > 0)

	got, err := repo.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.Document, got.Document)
	assert.Equal(t, 7, got.SubmittedBy)
}

func TestImportJobRepository_DequeueEmpty(t *testing.T) {
	repo, _ := newTestJobRepo(t)

	got, err := repo.Dequeue(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImportJobRepository_UnknownJob(t *testing.T) {
	repo, _ := newTestJobRepo(t)

	_, err := repo.GetStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportJobRepository_StatusIsPublished(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestJobRepo(t)
	jobID := uuid.New()

	sub := repo.Subscribe(ctx, jobID)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.SaveStatus(ctx, &model.ImportJobStatus{
		JobID:  jobID,
		State:  model.JobStateDone,
		Result: &model.ImportResult{SavedCount: 2, TotalFound: 3, Status: model.ImportStatusOK},
	}))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"state":"done"`)
		assert.Contains(t, msg.Payload, `"saved_count":2`)
	case <-time.After(2 * time.Second):
		t.Fatal("status was not published")
	}
}
