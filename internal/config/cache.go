package config

import "time"

// CacheConfig defines settings for the response cache applied to public GET
// listings (blogs, research papers, internships, courses, quizzes).  TTL is
// the lifetime of a cache entry; MaxBodyBytes caps the size of responses
// worth storing.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads the response cache settings from the environment,
// using defaults when variables are unset.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
