package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE_MB", "")
	t.Setenv("IMPORT_JOB_TTL_HOURS", "")

	cfg := Load()

	assert.Equal(t, int64(16*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.ImportJobTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE_MB", "2")
	t.Setenv("IMPORT_WORKERS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()

	assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 2, cfg.ImportWorkers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "import:abc:status", CacheKey.ImportJobKey("abc"))
	assert.Equal(t, "import:abc:events", CacheKey.ImportJobChannel("abc"))
	assert.Equal(t, "ratelimit:login:1.2.3.4:7", CacheKey.RateLimitKey("login", "1.2.3.4", 7))
}
