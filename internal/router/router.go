package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "go.uber.org/zap"

    "github.com/iliyamo/event-ticketing/internal/handler"
    "github.com/iliyamo/event-ticketing/internal/middleware"
    "github.com/iliyamo/event-ticketing/internal/model"
)

// Handlers groups everything the API exposes.
type Handlers struct {
    Health   echo.HandlerFunc
    Auth     *handler.AuthHandler
    Users    *handler.UserHandler
    Events   *handler.EventHandler
    Bookings *handler.BookingHandler
}

// Options carries the cross-cutting pieces shared by every route.
type Options struct {
    JWTSecret string
    Log       *zap.Logger
    Limiter   *middleware.RateLimiter   // nil disables rate limiting
    Cache     *middleware.ResponseCache // nil disables response caching
}

// New builds an Echo instance with the global middleware stack and every
// route registered.
func New(h Handlers, opts Options) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.HidePort = true

    e.Use(echomw.Recover())
    e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
        Generator: func() string { return uuid.NewString() },
    }))
    e.Use(echomw.CORS())
    if opts.Log != nil {
        e.Use(middleware.RequestLogger(opts.Log))
    }
    if opts.Limiter != nil {
        e.Use(opts.Limiter.Middleware())
    }

    RegisterRoutes(e, h.Health)
    RegisterAuth(e, h.Auth, h.Users, opts.JWTSecret)
    RegisterEvents(e, h.Events, opts.Cache, opts.JWTSecret)
    RegisterBookings(e, h.Bookings, opts.JWTSecret)
    return e
}

// RegisterRoutes registers routes that do not require authentication and
// are not tied to a resource.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
    e.GET("/healthz", health)
}

// RegisterAuth registers login, token and user routes.  Registration and
// the token endpoints are public; everything else needs a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)

    e.POST("/v1/users", u.Create)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
    auth.GET("/users/:id", u.Get)
    auth.PATCH("/users/:id", u.Update)
    auth.DELETE("/users/:id", u.Delete)
    auth.GET("/users", u.List, middleware.RequireRole(model.RoleOrganizer))
}

// RegisterEvents registers the event catalogue.  The listing is served
// through the response cache when one is configured.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, cache *middleware.ResponseCache, jwtSecret string) {
    if cache != nil {
        e.GET("/v1/events", h.List, cache.Middleware())
    } else {
        e.GET("/v1/events", h.List)
    }
    e.GET("/v1/events/:id", h.Get)

    org := e.Group("/v1/events",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleOrganizer))
    org.POST("", h.Create)
    org.PATCH("/:id", h.Update)
    org.PUT("/:id", h.Update)
    org.DELETE("/:id", h.Delete)
}

// RegisterBookings registers the booking routes.  All of them need a valid
// access token; per-booking ownership is checked by the handler.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
    g := e.Group("/v1/bookings", middleware.JWTAuth(jwtSecret))
    organizer := middleware.RequireRole(model.RoleOrganizer)

    g.POST("", h.Create)
    g.GET("", h.List, organizer)
    g.GET("/:id", h.Get)
    g.GET("/user/:id", h.ListByUser)
    g.GET("/event/:id", h.ListByEvent, organizer)
    g.PUT("/:id/confirm", h.Confirm)
    g.PUT("/:id/cancel", h.Cancel)
    g.DELETE("/:id", h.Delete)
}
