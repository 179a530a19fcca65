package handler // handler defines http handlers

import (
    "context"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/event-ticketing/internal/middleware"
    "github.com/iliyamo/event-ticketing/internal/model"
)

// requestTimeout bounds the storage calls of a single request.  Booking
// creation is bounded by the booking service instead.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// caller returns the authenticated user and role set by JWTAuth.
func caller(c echo.Context) (id uint64, role string, ok bool) {
    id, ok = middleware.UserID(c)
    return id, middleware.Role(c), ok
}

func isOrganizer(role string) bool { return role == model.RoleOrganizer }

// purgeListings drops cached event listings after a write that changes
// them.  A failure only leaves listings stale until the cache TTL.
func purgeListings(ctx context.Context, cache CachePurger, log *zap.Logger) {
    if cache == nil {
        return
    }
    if err := cache.Purge(ctx); err != nil {
        log.Warn("Cache purge failed", zap.Error(err))
    }
}

func orNop(log *zap.Logger) *zap.Logger {
    if log == nil {
        return zap.NewNop()
    }
    return log
}
