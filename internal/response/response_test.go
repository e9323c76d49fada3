package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(zerolog.Nop()))
	r.GET("/", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrLibraryNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	r.ServeHTTP(w, req)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEqual(t, "not-a-uuid", body.Metadata.RequestID)
	assert.Equal(t, w.Header().Get("X-Request-ID"), body.Metadata.RequestID)
	assert.Equal(t, ErrLibraryNotFound, body.Error.Code)
	assert.Equal(t, "题库不存在。", body.Error.Message)
}

func TestAttachment(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		Attachment(c, "期中.md", "text/markdown; charset=utf-8", []byte("# x"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "# x", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filename*=utf-8''")
}
