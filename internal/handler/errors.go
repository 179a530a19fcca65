package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-ticketing/internal/service"
)

// statusFor maps a service error kind to the HTTP status returned to the
// client.
func statusFor(k service.ErrorKind) int {
    switch k {
    case service.KindInvalidQuantity, service.KindInvalidInput:
        return http.StatusBadRequest
    case service.KindEventNotFound, service.KindNotFound:
        return http.StatusNotFound
    case service.KindEventNotActive, service.KindInsufficientInventory, service.KindConflict:
        return http.StatusConflict
    case service.KindForbidden:
        return http.StatusForbidden
    case service.KindUnauthorized:
        return http.StatusUnauthorized
    case service.KindTransient:
        return http.StatusServiceUnavailable
    default:
        return http.StatusInternalServerError
    }
}

// writeError renders err as {"error": "..."}.  Internal details are never
// sent to the client; the request logger records them.
func writeError(c echo.Context, err error) error {
    kind := service.KindOf(err)
    status := statusFor(kind)

    msg := kind.String()
    switch kind {
    case service.KindInternal:
        msg = "internal server error"
        // keep the cause on the context for the request logger
        c.Set("error", err)
    case service.KindTransient:
        msg = "service temporarily unavailable, please retry"
        c.Response().Header().Set("Retry-After", "1")
    default:
        var se *service.Error
        if errors.As(err, &se) && se.Err != nil {
            msg = se.Err.Error()
        }
    }
    return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func forbidden(c echo.Context) error {
    return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
