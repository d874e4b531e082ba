package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/exam-seating/internal/config"
)

// bucketScript refills the bucket by whole intervals, takes one token when
// available and returns {allowed, tokens_left, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last = tonumber(state[2])
if tokens == nil or last == nil then
    tokens = capacity
    last = now_ms
end

if interval_ms > 0 and refill > 0 then
    local steps = math.floor(math.max(0, now_ms - last) / interval_ms)
    if steps > 0 then
        tokens = math.min(capacity, tokens + steps * refill)
        last = last + steps * interval_ms
    end
end

local allowed = 0
local retry_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_ms = math.max(0, interval_ms - (now_ms - last))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last)
redis.call('EXPIRE', key, ttl)
return { allowed, tokens, retry_ms }
`)

// bucketDecision is the script's verdict for one request.
type bucketDecision struct {
    Allowed   bool
    Remaining int64
    RetryMs   int64
}

// RetryAfter rounds the wait up to whole seconds for the Retry-After header.
func (d bucketDecision) RetryAfter() int {
    secs := int(math.Ceil(float64(d.RetryMs) / 1000.0))
    if secs < 0 {
        return 0
    }
    return secs
}

func parseDecision(v any) (bucketDecision, error) {
    arr, ok := v.([]any)
    if !ok || len(arr) != 3 {
        return bucketDecision{}, fmt.Errorf("unexpected script result %#v", v)
    }
    return bucketDecision{
        Allowed:   asInt64(arr[0]) == 1,
        Remaining: asInt64(arr[1]),
        RetryMs:   asInt64(arr[2]),
    }, nil
}

type tokenBucket struct {
    cfg    config.RateLimitConfig
    rdb    *redis.Client
    logger *zap.Logger
    now    func() time.Time
}

func (b *tokenBucket) take(ctx context.Context, key string) (bucketDecision, error) {
    args := []any{
        b.now().UnixMilli(),
        b.cfg.Capacity,
        b.cfg.RefillTokens,
        b.cfg.RefillInterval.Milliseconds(),
        int64(b.cfg.TTL / time.Second),
    }
    v, err := bucketScript.Run(ctx, b.rdb, []string{key}, args...).Result()
    if err != nil {
        return bucketDecision{}, err
    }
    return parseDecision(v)
}

// NewTokenBucket throttles requests with a token bucket kept in Redis.  The
// bucket is keyed by cfg.KeyStrategy.  When Redis fails the request is let
// through and the failure logged.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    b := &tokenBucket{cfg: cfg, rdb: rdb, logger: logger, now: time.Now}

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            d, err := b.take(c.Request().Context(), key)
            if err != nil {
                b.logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if d.Allowed {
                return next(c)
            }

            h.Set("Retry-After", strconv.Itoa(d.RetryAfter()))
            if cfg.Debug {
                b.logger.Info("rate limited", zap.String("key", key), zap.Int64("retry_ms", d.RetryMs))
            }
            return c.JSON(http.StatusTooManyRequests, map[string]any{
                "error":       "too_many_requests",
                "message":     "rate limit exceeded",
                "retry_after": d.RetryAfter(),
            })
        }
    }
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// asInt64 normalises the integer shapes a Redis reply may take.
func asInt64(v any) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

// buildRateKey joins the request attributes named by the key strategy.  The
// default keys on client ip, user and route together.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    attrs := map[string]string{
        "ip":    ip,
        "user":  userKey(c),
        "route": c.Request().Method + " " + c.Path(),
    }
    var use []string
    switch s := strings.ToLower(cfg.KeyStrategy); s {
    case "ip", "user", "route", "ip_user", "ip_route", "user_route":
        use = strings.Split(s, "_")
    default:
        use = []string{"ip", "user", "route"}
    }
    parts := []string{cfg.Prefix}
    for _, a := range use {
        parts = append(parts, a, attrs[a])
    }
    return strings.Join(parts, ":")
}
