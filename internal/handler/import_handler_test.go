package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/middleware"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/repository"
	"github.com/stemsi/qbank-backend/internal/service"
	ws "github.com/stemsi/qbank-backend/internal/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const sampleDoc = "1. 什么是TCP？\n答案：传输控制协议\n\n2. 什么是UDP？\n答案：用户数据报协议\n"

type knownLibraries map[uuid.UUID]bool

func (k knownLibraries) EnsureExists(_ context.Context, id uuid.UUID) error {
	if !k[id] {
		return service.ErrLibraryNotFound
	}
	return nil
}

type importFixture struct {
	router    *gin.Engine
	store     *repository.SQLiteQuestionStore
	jobs      *repository.ImportJobRepository
	libraryID uuid.UUID
	claims    *service.Claims
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := repository.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{MaxUploadBytes: 1 << 20, UploadDir: t.TempDir()}
	jobs := repository.NewImportJobRepository(rdb, time.Hour)
	jobService := service.NewImportJobService(jobs)
	libraryID := uuid.New()

	h := NewImportHandler(
		knownLibraries{libraryID: true},
		service.NewDocumentService(cfg),
		service.NewImportService(store, cfg.MaxUploadBytes, zerolog.Nop()),
		jobService,
		zerolog.Nop(),
	)
	wsh := NewWSHandler(jobService, zerolog.Nop(), nil)

	f := &importFixture{
		store:     store,
		jobs:      jobs,
		libraryID: libraryID,
		claims:    &service.Claims{UserID: 1, Role: model.RoleUser},
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyClaims, f.claims)
	})
	r.POST("/libraries/:id/imports", h.ImportDocument)
	r.GET("/imports/:job_id", h.GetImportJob)
	r.GET("/upload-template", h.UploadTemplate)
	r.GET("/ws/imports/:job_id", wsh.ImportJobStream)

	f.router = r
	return f
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func (f *importFixture) upload(t *testing.T, libraryID uuid.UUID, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest(http.MethodPost, "/libraries/"+libraryID.String()+"/imports", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestImportDocument_Sync(t *testing.T) {
	f := newImportFixture(t)

	w := f.upload(t, f.libraryID, "bank.md", sampleDoc, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result model.ImportResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, model.ImportResult{SavedCount: 2, TotalFound: 2, Status: model.ImportStatusOK}, result)

	// Importing the same document again finds the questions but saves none.
	w = f.upload(t, f.libraryID, "bank.md", sampleDoc, nil)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, 0, result.SavedCount)
	assert.Equal(t, 2, result.TotalFound)

	n, err := f.store.Count(context.Background(), f.libraryID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImportDocument_TypeOverride(t *testing.T) {
	f := newImportFixture(t)

	w := f.upload(t, f.libraryID, "bank.txt", sampleDoc, map[string]string{"question_type": "term_explanation"})
	require.Equal(t, http.StatusOK, w.Code)

	qs, err := f.store.ListByLibrary(context.Background(), f.libraryID)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	for _, q := range qs {
		assert.Equal(t, model.QuestionTypeTermExplanation, q.QuestionType)
	}
}

func TestImportDocument_Rejections(t *testing.T) {
	f := newImportFixture(t)

	tests := []struct {
		name      string
		libraryID uuid.UUID
		filename  string
		fields    map[string]string
		status    int
		code      string
	}{
		{"unknown library", uuid.New(), "bank.md", nil, http.StatusNotFound, "LIBRARY_NOT_FOUND"},
		{"missing file", f.libraryID, "", map[string]string{"charset": "utf-8"}, http.StatusBadRequest, "FILE_REQUIRED"},
		{"unsupported extension", f.libraryID, "bank.docx", nil, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"unknown charset", f.libraryID, "bank.md", map[string]string{"charset": "shift_jis"}, http.StatusBadRequest, "UNSUPPORTED_CHARSET"},
		{"unknown type", f.libraryID, "bank.md", map[string]string{"question_type": "poetry"}, http.StatusBadRequest, "INVALID_QUESTION_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.upload(t, tt.libraryID, tt.filename, sampleDoc, tt.fields)
			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestImportDocument_AsyncAndStatus(t *testing.T) {
	f := newImportFixture(t)

	w := f.upload(t, f.libraryID, "bank.md", sampleDoc, map[string]string{"async": "true"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var data struct {
		Job model.ImportJobStatus `json:"job"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, model.JobStateQueued, data.Job.State)
	assert.Equal(t, 1, data.Job.SubmittedBy)

	// Nothing is stored until a worker picks the job up.
	n, err := f.store.Count(context.Background(), f.libraryID)
	require.NoError(t, err)
	assert.Zero(t, n)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imports/"+data.Job.JobID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imports/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "IMPORT_JOB_NOT_FOUND", decode(t, w).Error.Code)
}

func TestGetImportJob_OnlySubmitterOrAdmin(t *testing.T) {
	f := newImportFixture(t)

	w := f.upload(t, f.libraryID, "bank.md", sampleDoc, map[string]string{"async": "true"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var data struct {
		Job model.ImportJobStatus `json:"job"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	path := "/imports/" + data.Job.JobID.String()

	f.claims = &service.Claims{UserID: 2, Role: model.RoleUser}
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws"+path, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.claims = &service.Claims{UserID: 2, Role: model.RoleAdmin}
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadTemplate(t *testing.T) {
	f := newImportFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload-template", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, service.UploadTemplate, w.Body.String())
}

func TestImportJobStream(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	job := &model.ImportJob{ID: uuid.New(), LibraryID: f.libraryID, Filename: "bank.md", SubmittedBy: 1, SubmittedAt: time.Now().UTC()}
	require.NoError(t, f.jobs.Enqueue(ctx, job))

	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/imports/" + job.ID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first ws.StatusResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, ws.EventStatus, first.Event)
	assert.Equal(t, model.JobStateQueued, first.Status.State)

	require.NoError(t, f.jobs.SaveStatus(ctx, &model.ImportJobStatus{
		JobID:     job.ID,
		LibraryID: f.libraryID,
		State:     model.JobStateDone,
		Result:    &model.ImportResult{SavedCount: 1, TotalFound: 1, Status: model.ImportStatusOK},
	}))

	var last ws.StatusResponse
	require.NoError(t, conn.ReadJSON(&last))
	assert.Equal(t, ws.EventDone, last.Event)
	require.NotNil(t, last.Status.Result)
	assert.Equal(t, 1, last.Status.Result.SavedCount)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestImportJobStream_UnknownJob(t *testing.T) {
	f := newImportFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/imports/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
