package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
	"github.com/stemsi/qbank-backend/internal/service"
)

type fixture struct {
	jobs   *repository.ImportJobRepository
	store  *repository.SQLiteQuestionStore
	worker *ImportWorker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := repository.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	jobs := repository.NewImportJobRepository(rdb, time.Hour)
	importer := service.NewImportService(store, 1<<20, zerolog.Nop())
	w := NewImportWorker(jobs, importer, zerolog.Nop())
	w.poll = 50 * time.Millisecond
	return &fixture{jobs: jobs, store: store, worker: w}
}

func newJob(doc string) *model.ImportJob {
	return &model.ImportJob{
		ID:          uuid.New(),
		LibraryID:   uuid.New(),
		Charset:     "utf-8",
		Filename:    "bank.md",
		Document:    []byte(doc),
		SubmittedAt: time.Now().UTC(),
	}
}

func TestProcess_StoresQuestionsAndFinalStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := newJob("1. 什么是TCP？\n答案：传输控制协议\n\n2. 什么是UDP？\n答案：用户数据报协议\n")

	result := f.worker.Process(ctx, job)
	assert.Equal(t, model.ImportStatusOK, result.Status)
	assert.Equal(t, 2, result.SavedCount)

	n, err := f.store.Count(ctx, job.LibraryID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	st, err := f.jobs.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateDone, st.State)
	require.NotNil(t, st.Result)
	assert.Equal(t, 2, st.Result.TotalFound)
}

func TestRun_DrainsQueueUntilCancelled(t *testing.T) {
	f := newFixture(t)
	job := newJob("1. 问题一\n答案：一\n")
	require.NoError(t, f.jobs.Enqueue(context.Background(), job))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.worker.Run(ctx, 2)
		close(done)
	}()

	require.Eventually(t, func() bool {
		st, err := f.jobs.GetStatus(context.Background(), job.ID)
		return err == nil && st.State == model.JobStateDone
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestProcess_FailedDocumentStillFinishes(t *testing.T) {
	f := newFixture(t)
	job := newJob("")
	job.Document = []byte{0xff, 0xfe, 0xfd}

	result := f.worker.Process(context.Background(), job)
	assert.Equal(t, model.ImportStatusFailed, result.Status)

	st, err := f.jobs.GetStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateDone, st.State)
	assert.Equal(t, model.ImportStatusFailed, st.Result.Status)
}
