package middleware

// identity.go holds the context keys JWTAuth fills in and the accessors
// handlers and other middleware use to read them back.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ContextUserID = "user_id" // uint64
    ContextRole   = "role"    // string
)

// UserID returns the authenticated user's id.  ok is false on routes
// without JWTAuth or when the token carried no usable subject.
func UserID(c echo.Context) (id uint64, ok bool) {
    id, ok = c.Get(ContextUserID).(uint64)
    return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" when unauthenticated.
func Role(c echo.Context) string {
    r, _ := c.Get(ContextRole).(string)
    return r
}

// currentUserID renders the user id for use in Redis keys.  Anonymous
// requests share the "anon" bucket.
func currentUserID(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
