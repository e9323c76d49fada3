package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/qbank-backend/internal/config"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth() *service.AuthService {
	return service.NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}, nil)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireJWT(t *testing.T) {
	auth := newAuth()
	token, err := auth.GenerateToken(&model.User{ID: 7, Username: "alice", Role: model.RoleUser})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireJWT(auth), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).Username)
	})
	r.GET("/admin", RequireJWT(auth), RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	t.Run("missing token", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", w.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
	})

	t.Run("role required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := serve(r, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireJWT_Expired(t *testing.T) {
	auth := service.NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: -time.Minute}, nil)
	token, err := auth.GenerateToken(&model.User{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", RequireJWT(auth), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := NewRateLimiter(rdb, "login", 2, time.Minute, zerolog.Nop())
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	rl := NewRateLimiter(rdb, "login", 1, time.Minute, zerolog.Nop())
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBrotli(t *testing.T) {
	long := strings.Repeat("题目", 1000)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/json", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"text": long}) })
	r.GET("/small", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/xlsx", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte(long))
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		return serve(r, req)
	}

	w := get("/json")
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	require.NoError(t, err)
	assert.Contains(t, string(plain), long)

	w = get("/small")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = get("/xlsx")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, long, w.Body.String())
}
