package config

import "time"

type RateLimitConfig struct {
	Enabled        bool          `toml:"enabled"`
	Capacity       int           `toml:"capacity"`
	RefillTokens   int           `toml:"refill_tokens"`
	RefillInterval time.Duration `toml:"refill_interval"`
	TTL            time.Duration `toml:"ttl"`
	KeyStrategy    string        `toml:"key_strategy"`
	Prefix         string        `toml:"prefix"`
	Debug          bool          `toml:"debug"`
}

func loadRateLimitConfig(base RateLimitConfig) RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", base.Enabled),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", orInt(base.Capacity, 60)),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", orInt(base.RefillTokens, 1)),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", orDur(base.RefillInterval, time.Second)),
		TTL:            envDur("RATE_LIMIT_TTL", orDur(base.TTL, 10*time.Minute)),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", orStr(base.KeyStrategy, "ip_user_route")),
		Prefix:         envStr("RATE_LIMIT_PREFIX", orStr(base.Prefix, "rl")),
		Debug:          envBool("RATE_LIMIT_DEBUG", base.Debug),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

func orInt(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}

func orDur(v, d time.Duration) time.Duration {
	if v == 0 {
		return d
	}
	return v
}

func orStr(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
