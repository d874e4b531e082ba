package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

// RequestLogger writes one structured line per request.  Server errors are
// logged at error level, client errors at warn and the rest at info.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
    if logger == nil {
        logger = zap.NewNop()
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err) // let echo write the response so the status is final
            }

            req := c.Request()
            res := c.Response()
            level := zapcore.InfoLevel
            switch {
            case res.Status >= 500:
                level = zapcore.ErrorLevel
            case res.Status >= 400:
                level = zapcore.WarnLevel
            }
            fields := []zap.Field{
                zap.String("method", req.Method),
                zap.String("route", c.Path()),
                zap.String("uri", req.RequestURI),
                zap.Int("status", res.Status),
                zap.Int64("bytes", res.Size),
                zap.Duration("latency", time.Since(start)),
                zap.String("remote_ip", c.RealIP()),
                zap.String("user", userKey(c)),
            }
            if cache := res.Header().Get("X-Cache"); cache != "" {
                fields = append(fields, zap.String("cache", cache))
            }
            if err != nil {
                fields = append(fields, zap.Error(err))
            }
            logger.Check(level, "request").Write(fields...)
            return nil
        }
    }
}
