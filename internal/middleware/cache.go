package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/exam-seating/internal/config"
)

// recorder tees the response to the client and keeps up to limit bytes.
type recorder struct {
    http.ResponseWriter
    status int
    body   bytes.Buffer
    size   int64
    limit  int64
}

func (r *recorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
    if r.limit <= 0 {
        r.body.Write(b)
    } else if room := r.limit - r.size; room > 0 {
        r.body.Write(b[:min(int64(len(b)), room)])
    }
    r.size += int64(len(b))
    return r.ResponseWriter.Write(b)
}

func (r *recorder) truncated() bool { return r.limit > 0 && r.size > r.limit }

// cacheKeyFrom hashes the request under the configured prefix.  The user and
// the concrete path are always part of the key: cached routes are owner
// scoped and a hit skips the owner check.  "method_route_query" adds the
// method; any other strategy keys on user, route, path and query.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    parts := []string{"user", userKey(c), "route", c.Path(), "path", r.URL.Path, "q", r.URL.RawQuery}
    if strings.EqualFold(cfg.KeyStrategy, "method_route_query") {
        parts = append([]string{"method", r.Method}, parts...)
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs a response as
// [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdr, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8, 8+len(hdr)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
    out = append(out, hdr...)
    return append(out, body...), nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    n := int(binary.BigEndian.Uint32(bs[4:8]))
    if n < 0 || 8+n > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if n > 0 {
        if err := json.Unmarshal(bs[8:8+n], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+n:], true
}

type responseCache struct {
    cfg    config.CacheConfig
    rdb    *redis.Client
    ttl    time.Duration
    logger *zap.Logger
}

// replay writes a stored response; false means there was nothing usable.
func (rc *responseCache) replay(c echo.Context, key string) bool {
    bs, err := rc.rdb.Get(c.Request().Context(), key).Bytes()
    if err != nil {
        if err != redis.Nil {
            rc.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
        }
        return false
    }
    status, hdr, body, ok := decodePayload(bs)
    if !ok {
        return false
    }
    out := c.Response().Header()
    for k, vals := range hdr {
        if strings.EqualFold(k, echo.HeaderContentLength) {
            continue
        }
        for _, v := range vals {
            out.Add(k, v)
        }
    }
    out.Set("X-Cache", "HIT")
    c.Response().WriteHeader(status)
    if len(body) > 0 {
        _, _ = c.Response().Write(body)
    }
    return true
}

func (rc *responseCache) store(key string, status int, header http.Header, body []byte) {
    payload, err := encodePayload(status, header.Clone(), body)
    if err != nil {
        return
    }
    if err := rc.rdb.SetEx(context.Background(), key, payload, rc.ttl).Err(); err != nil {
        rc.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
    }
}

// NewRedisCache stores 200 responses of the configured methods in Redis,
// headers included, so a hit replays the exact bytes of the original
// response and xlsx downloads keep their Content-Disposition.  Bodies over
// MaxBodyBytes are served but not stored.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    rc := &responseCache{cfg: cfg, rdb: rdb, ttl: cfg.TTL, logger: logger}
    if rc.ttl <= 0 {
        rc.ttl = 5 * time.Minute
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKeyFrom(cfg, c)
            if rc.replay(c, key) {
                return nil
            }

            rec := &recorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if rec.status == http.StatusOK && !rec.truncated() {
                rc.store(key, rec.status, c.Response().Header(), rec.body.Bytes())
            }
            return nil
        }
    }
}
