package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ImportJobKey returns the hash key holding an import job's status.
func (r *CacheKeyStruct) ImportJobKey(jobID string) string {
	return fmt.Sprintf("import:%s:status", jobID)
}

// ImportJobChannel returns the Redis PubSub channel carrying an import job's
// status updates.
func (r *CacheKeyStruct) ImportJobChannel(jobID string) string {
	return fmt.Sprintf("import:%s:events", jobID)
}

// LibraryStatsKey returns the cache key for the aggregated statistics payload.
func (r *CacheKeyStruct) LibraryStatsKey() string {
	return "stats:overview"
}

// RateLimitKey returns the counter key for a client IP in a fixed window.
func (r *CacheKeyStruct) RateLimitKey(scope, ip string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", scope, ip, window)
}

var CacheKey = NewCacheKeyStruct()
