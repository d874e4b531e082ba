package handler // declare the package name; contains HTTP handlers

import (
    "context"  // bounded ping
    "net/http" // net/http provides status codes and response helpers
    "time"     // ping timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler reports liveness.  With a DB it also reports readiness.
type HealthHandler struct {
    DB Pinger // optional; nil skips the database check
}

// Health answers "ok" with 200, or 503 when the database does not answer
// a ping within two seconds.
func (h *HealthHandler) Health(c echo.Context) error {
    if h != nil && h.DB != nil {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := h.DB.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database unavailable"})
        }
    }
    return c.String(http.StatusOK, "ok")
}
