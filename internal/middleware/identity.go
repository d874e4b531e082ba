package middleware

// identity.go holds the user key shared by the cache and rate limiter.  The
// key is the authenticated user id set by JWTAuth, or "anon" for public
// routes.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userKey returns the caller's user id as a string, or "anon".
func userKey(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case uint64:
        if v != 0 {
            return strconv.FormatUint(v, 10)
        }
    case string:
        if v != "" {
            return v
        }
    }
    return "anon"
}
