package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// RateLimitConfig drives the Redis token bucket placed in front of chart
// generation and uploads.  Capacity is the burst size; RefillTokens are
// added every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  RATE_LIMIT_BURST, when
// positive, overrides the capacity.  The bucket key outlives at least five
// refill intervals.
func LoadRateLimitConfig() RateLimitConfig {
    c := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if b := envInt("RATE_LIMIT_BURST", 0); b > 0 {
        c.Capacity = b
    }
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    return c
}

func envStr(k, def string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return def
}

// envBool accepts strconv.ParseBool spellings plus yes/no and on/off.
func envBool(k string, def bool) bool {
    v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
    switch v {
    case "":
        return def
    case "yes", "on":
        return true
    case "no", "off":
        return false
    }
    if b, err := strconv.ParseBool(v); err == nil {
        return b
    }
    return def
}

func envInt(k string, def int) int {
    if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil {
        return n
    }
    return def
}

func envDur(k string, def time.Duration) time.Duration {
    if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k))); err == nil {
        return d
    }
    return def
}
