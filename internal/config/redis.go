package config

// Redis backs the distributed rate limiter and the response cache for
// immutable PDF reads. When Redis is disabled or unreachable at startup
// NewRedisClient returns nil and both middlewares degrade to pass-through.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis connection plus the two features built on it.
type RedisConfig struct {
	Enabled   bool            `toml:"enabled"`
	Addr      string          `toml:"addr"`
	Password  string          `toml:"password"`
	DB        int             `toml:"db"`
	TLS       bool            `toml:"tls"`
	Cache     CacheConfig     `toml:"cache"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

func (r *RedisConfig) applyEnv() {
	r.Enabled = envBool("REDIS_ENABLED", r.Enabled)
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		r.Addr = host + ":" + port
	} else {
		r.Addr = envStr("REDIS_ADDR", r.Addr)
	}
	r.Password = envStr("REDIS_PASSWORD", r.Password)
	r.DB = envInt("REDIS_DB", r.DB)
	r.TLS = envBool("REDIS_TLS", r.TLS)
	r.Cache = loadCacheConfig(r.Cache)
	r.RateLimit = loadRateLimitConfig(r.RateLimit)
}

// NewRedisClient instantiates a Redis client from cfg. The returned client is
// nil when Redis is disabled or the server does not answer a ping.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	// Ping the server with a short timeout.  Return nil on failure.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
