package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/stemsi/qbank-backend/internal/extractor"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
)

const twoQuestions = "1. 什么是Go？\n答案：一种编程语言\n\n2. 什么是Redis？\n答案：内存数据库\n"

// fakeStore keeps questions in memory and can be told to fail.
type fakeStore struct {
	saved      []model.Question
	failInsert map[string]error
	failExists error
	panicOn    string
}

func (f *fakeStore) Exists(_ context.Context, text string, lib uuid.UUID) (bool, error) {
	if f.panicOn != "" && text == f.panicOn {
		panic("store exploded")
	}
	if f.failExists != nil {
		return false, f.failExists
	}
	for _, q := range f.saved {
		if q.LibraryID == lib && q.QuestionText == text {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Insert(_ context.Context, q *model.Question) error {
	if err := f.failInsert[q.QuestionText]; err != nil {
		return err
	}
	q.ID = uuid.New()
	f.saved = append(f.saved, *q)
	return nil
}

func newImportService(store QuestionStore) *ImportService {
	return NewImportService(store, 1<<20, zerolog.Nop())
}

func TestImport_SavesEveryRecord(t *testing.T) {
	store := &fakeStore{}
	lib := uuid.New()

	res := newImportService(store).Import(context.Background(), []byte(twoQuestions), lib, ImportOptions{})

	assert.Equal(t, model.ImportResult{SavedCount: 2, TotalFound: 2, Status: model.ImportStatusOK}, res)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "什么是Go？", store.saved[0].QuestionText)
	assert.Equal(t, "内存数据库", store.saved[1].AnswerText)
	assert.Equal(t, model.DifficultyMedium, store.saved[1].Difficulty)
	assert.Equal(t, lib, store.saved[0].LibraryID)
}

func TestImport_IsIdempotentWithSQLite(t *testing.T) {
	ctx := context.Background()
	store, err := repository.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close()

	svc := newImportService(store)
	lib := uuid.New()

	first := svc.Import(ctx, []byte(twoQuestions), lib, ImportOptions{})
	second := svc.Import(ctx, []byte(twoQuestions), lib, ImportOptions{})

	assert.Equal(t, 2, first.SavedCount)
	assert.Equal(t, first.TotalFound, first.SavedCount)
	assert.Equal(t, first.TotalFound, second.TotalFound)
	assert.Equal(t, 0, second.SavedCount)
	assert.Equal(t, 2, second.TotalFound)
	assert.Equal(t, model.ImportStatusOK, second.Status)

	n, err := store.Count(ctx, lib)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImport_PerRecordFailureIsSkipped(t *testing.T) {
	store := &fakeStore{failInsert: map[string]error{"什么是Go？": errors.New("disk full")}}

	res := newImportService(store).Import(context.Background(), []byte(twoQuestions), uuid.New(), ImportOptions{})

	assert.Equal(t, 1, res.SavedCount)
	assert.Equal(t, 2, res.TotalFound)
	assert.Equal(t, model.ImportStatusOK, res.Status)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "什么是Redis？", store.saved[0].QuestionText)
}

func TestImport_ExistsFailureSkipsRecords(t *testing.T) {
	store := &fakeStore{failExists: errors.New("connection reset")}

	res := newImportService(store).Import(context.Background(), []byte(twoQuestions), uuid.New(), ImportOptions{})

	assert.Equal(t, 0, res.SavedCount)
	assert.Equal(t, 2, res.TotalFound)
}

func TestImport_DuplicateInsertIsNotCounted(t *testing.T) {
	store := &fakeStore{failInsert: map[string]error{"什么是Go？": repository.ErrDuplicate}}

	res := newImportService(store).Import(context.Background(), []byte(twoQuestions), uuid.New(), ImportOptions{})

	assert.Equal(t, 1, res.SavedCount)
}

func TestImport_InvalidUTF8(t *testing.T) {
	store := &fakeStore{}

	res := newImportService(store).Import(context.Background(), []byte{0xff, 0xfe, 0x31, 0x2e, 0x80}, uuid.New(), ImportOptions{})

	assert.Equal(t, 0, res.SavedCount)
	assert.Equal(t, 0, res.TotalFound)
	assert.Equal(t, model.ImportStatusFailed, res.Status)
	assert.Empty(t, store.saved)
}

func TestImport_PanicIsContained(t *testing.T) {
	store := &fakeStore{panicOn: "什么是Redis？"}

	var res model.ImportResult
	require.NotPanics(t, func() {
		res = newImportService(store).Import(context.Background(), []byte(twoQuestions), uuid.New(), ImportOptions{})
	})

	assert.Equal(t, 0, res.SavedCount)
	assert.Equal(t, 0, res.TotalFound)
	assert.Equal(t, model.ImportStatusFailed, res.Status)
}

func TestImport_EmptyDocument(t *testing.T) {
	res := newImportService(&fakeStore{}).Import(context.Background(), []byte("\n  \n"), uuid.New(), ImportOptions{})

	assert.Equal(t, model.ImportResult{Status: model.ImportStatusEmpty}, res)
}

func TestImport_TooLarge(t *testing.T) {
	svc := NewImportService(&fakeStore{}, 8, zerolog.Nop())

	res := svc.Import(context.Background(), []byte(twoQuestions), uuid.New(), ImportOptions{})

	assert.Equal(t, model.ImportStatusFailed, res.Status)
	assert.Zero(t, res.TotalFound)
}

func TestImport_EmptyQuestionCountedButDropped(t *testing.T) {
	store := &fakeStore{}

	res := newImportService(store).Import(context.Background(), []byte("12.\n答案：孤立答案\n\n13. 真题目\n答案：有"), uuid.New(), ImportOptions{})

	assert.Equal(t, 2, res.TotalFound)
	assert.Equal(t, 1, res.SavedCount)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "真题目", store.saved[0].QuestionText)
}

func TestImport_OverrideAndCharset(t *testing.T) {
	doc, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte("1. 地球是圆的\n答案：对\n"))
	require.NoError(t, err)
	store := &fakeStore{}

	res := newImportService(store).Import(context.Background(), doc, uuid.New(), ImportOptions{
		Override: model.QuestionTypeTrueFalse,
		Charset:  "gb18030",
	})

	assert.Equal(t, 1, res.SavedCount)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "地球是圆的", store.saved[0].QuestionText)
	assert.Equal(t, model.QuestionTypeTrueFalse, store.saved[0].QuestionType)
}

func TestImport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &fakeStore{}

	res := newImportService(store).Import(ctx, []byte(twoQuestions), uuid.New(), ImportOptions{})

	assert.Equal(t, model.ImportStatusFailed, res.Status)
	assert.Equal(t, 0, res.SavedCount)
	assert.Empty(t, store.saved)
}

func TestImport_PlaceholderAnswer(t *testing.T) {
	store := &fakeStore{}

	newImportService(store).Import(context.Background(), []byte("1. 没有答案的题"), uuid.New(), ImportOptions{})

	require.Len(t, store.saved, 1)
	assert.Equal(t, extractor.AnswerPlaceholder, store.saved[0].AnswerText)
}
