package config

import "time"

// CacheConfig defines settings for the response cache middleware.
// TTL defines the lifetime of cache entries.  KeyStrategy determines which
// parts of the request contribute to the cache key.  Prefix and MaxBodyBytes
// allow control over namespacing and the largest response that is stored;
// bigger responses are served but never cached.
type CacheConfig struct {
	Enabled      bool          `toml:"enabled"`
	TTL          time.Duration `toml:"ttl"`
	KeyStrategy  string        `toml:"key_strategy"`
	Prefix       string        `toml:"prefix"`
	MaxBodyBytes int           `toml:"max_body_bytes"`
}

func loadCacheConfig(base CacheConfig) CacheConfig {
	if base.TTL == 0 {
		base.TTL = 5 * time.Minute
	}
	if base.KeyStrategy == "" {
		base.KeyStrategy = "path_query"
	}
	if base.Prefix == "" {
		base.Prefix = "cache"
	}
	if base.MaxBodyBytes == 0 {
		base.MaxBodyBytes = 1 << 20
	}
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", base.Enabled),
		TTL:          envDur("CACHE_TTL", base.TTL),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", base.KeyStrategy),
		Prefix:       envStr("CACHE_PREFIX", base.Prefix),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", base.MaxBodyBytes),
	}
}
