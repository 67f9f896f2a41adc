package middleware

// identity.go defines helper functions shared across middleware files.
// currentUserID pulls the authenticated user id that JWTAuth stored in
// the Echo context; rate-limit keys use it to scope buckets per user.
// When no user is authenticated, "anon" is returned.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id from context as a
// string, or "anon" when the request carries no identity. The JWT
// middleware stores the raw claim value, so numeric ids arrive as
// float64 and are formatted rather than asserted.
func currentUserID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "anon"
    }
    if s, ok := v.(string); ok {
        if s == "" {
            return "anon"
        }
        return s
    }
    return fmt.Sprint(v)
}
