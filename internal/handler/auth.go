package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-ticketing/internal/service"
)

// AuthService is what the auth endpoints need.  *service.AuthService
// satisfies it.
type AuthService interface {
    Login(ctx context.Context, email, password string) (service.Session, error)
    Refresh(ctx context.Context, raw string) (service.Session, error)
    Logout(ctx context.Context, raw string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    auth  AuthService
    users UserService
}

func NewAuthHandler(auth AuthService, users UserService) *AuthHandler {
    if auth == nil || users == nil {
        panic("nil service passed to NewAuthHandler")
    }
    return &AuthHandler{auth: auth, users: users}
}

// ----- DTOs -----

type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type authResp struct {
    User    userResponse `json:"user"`
    Access  tokenPart    `json:"access"`
    Refresh tokenPart    `json:"refresh"`
}

func toAuthResp(s service.Session) authResp {
    return authResp{
        User:    toUserResponse(s.User),
        Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
        Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp}, // raw back to client
    }
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    sess, err := h.auth.Login(ctx, req.Email, req.Password)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toAuthResp(sess))
}

// Refresh: consume the refresh token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    sess, err := h.auth.Refresh(ctx, req.RefreshToken)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toAuthResp(sess))
}

// Logout: revoke the given refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    if err := h.auth.Logout(ctx, req.RefreshToken); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    uid, _, ok := caller(c)
    if !ok {
        return unauthorized(c)
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    u, err := h.users.GetUser(ctx, uid)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toUserResponse(u))
}
