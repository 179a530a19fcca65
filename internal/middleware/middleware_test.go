package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "go.uber.org/zap/zaptest/observer"

    "github.com/iliyamo/event-ticketing/internal/utils"
)

const secret = "middleware-secret"

func serve(e *echo.Echo, method, target string, header map[string]string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, nil)
    for k, v := range header {
        req.Header.Set(k, v)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func bearer(t *testing.T, userID uint64, role string) map[string]string {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, userID, role, 5)
    require.NoError(t, err)
    return map[string]string{echo.HeaderAuthorization: "Bearer " + tok.Token}
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.GET("/me", func(c echo.Context) error {
        id, ok := UserID(c)
        return c.JSON(http.StatusOK, echo.Map{"id": id, "ok": ok, "role": Role(c)})
    }, JWTAuth(secret))

    rec := serve(e, http.MethodGet, "/me", nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

    rec = serve(e, http.MethodGet, "/me", map[string]string{echo.HeaderAuthorization: "Bearer nope"})
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    other, err := utils.NewAccessToken("other-secret", 1, "CUSTOMER", 5)
    require.NoError(t, err)
    rec = serve(e, http.MethodGet, "/me", map[string]string{echo.HeaderAuthorization: "Bearer " + other.Token})
    assert.Equal(t, http.StatusUnauthorized, rec.Code)

    rec = serve(e, http.MethodGet, "/me", bearer(t, 42, "ORGANIZER"))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"id":42,"ok":true,"role":"ORGANIZER"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
    e := echo.New()
    ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
    e.POST("/events", ok, JWTAuth(secret), RequireRole("ORGANIZER"))

    assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/events", bearer(t, 1, "CUSTOMER")).Code)
    assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/events", bearer(t, 1, "ORGANIZER")).Code)
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
    core, logs := observer.New(zapcore.DebugLevel)
    e := echo.New()
    e.Use(RequestLogger(zap.New(core)))
    e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "fine") })
    e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") })
    e.GET("/boom", func(c echo.Context) error { return c.NoContent(http.StatusInternalServerError) })

    serve(e, http.MethodGet, "/ok?x=1", nil)
    rec := serve(e, http.MethodGet, "/missing", nil)
    serve(e, http.MethodGet, "/boom", nil)

    assert.Equal(t, http.StatusNotFound, rec.Code)
    entries := logs.All()
    require.Len(t, entries, 3)
    assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
    assert.Equal(t, "x=1", entries[0].ContextMap()["query"])
    assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
    assert.Equal(t, int64(http.StatusNotFound), entries[1].ContextMap()["status"])
    assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}
