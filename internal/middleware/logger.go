package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// RequestLogger logs one line per request once the handler has finished,
// at Error for 5xx, Warn for 4xx and Info otherwise.  It expects echo's
// RequestID middleware to run first.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            req := c.Request()

            err := next(c)
            if err != nil {
                // let echo's error handler write the response so the
                // logged status is the one the client sees
                c.Error(err)
            }

            res := c.Response()
            fields := []zap.Field{
                zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
                zap.Int("status", res.Status),
                zap.String("method", req.Method),
                zap.String("path", req.URL.Path),
                zap.String("query", req.URL.RawQuery),
                zap.String("ip", c.RealIP()),
                zap.String("user_agent", req.UserAgent()),
                zap.Duration("latency", time.Since(start)),
                zap.Int64("body_size", res.Size),
            }
            if id, ok := UserID(c); ok {
                fields = append(fields, zap.Uint64("user_id", id))
            }
            if err != nil {
                fields = append(fields, zap.Error(err))
            } else if cause, ok := c.Get("error").(error); ok {
                fields = append(fields, zap.NamedError("cause", cause))
            }

            switch {
            case res.Status >= 500:
                log.Error("Server error", fields...)
            case res.Status >= 400:
                log.Warn("Client error", fields...)
            default:
                log.Info("Request completed", fields...)
            }
            return nil
        }
    }
}
