package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/repository"
)

// UserService is what the user endpoints need.  *service.UserService
// satisfies it.
type UserService interface {
    CreateUser(ctx context.Context, in repository.NewUser) (model.User, error)
    GetUser(ctx context.Context, id uint64) (model.User, error)
    ListUsers(ctx context.Context) ([]model.User, error)
    UpdateUser(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error)
    DeleteUser(ctx context.Context, id uint64) (bool, error)
}

type UserHandler struct {
    svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
    if svc == nil {
        panic("nil service passed to NewUserHandler")
    }
    return &UserHandler{svc: svc}
}

type createUserReq struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    Password string `json:"password"`
    FullName string `json:"full_name"`
    Phone    string `json:"phone"`
    Role     string `json:"role"` // ORGANIZER | CUSTOMER
}

type updateUserReq struct {
    FullName *string `json:"full_name"`
    Phone    *string `json:"phone"`
}

// Create handles POST /v1/users (registration, public).
func (h *UserHandler) Create(c echo.Context) error {
    var req createUserReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    u, err := h.svc.CreateUser(ctx, repository.NewUser{
        Username: req.Username,
        Email:    req.Email,
        Password: req.Password,
        FullName: req.FullName,
        Phone:    req.Phone,
        Role:     req.Role,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, toUserResponse(u))
}

// Get handles GET /v1/users/:id.  Users can read themselves; organizers
// can read anyone.
func (h *UserHandler) Get(c echo.Context) error {
    id, ok := h.target(c, true)
    if !ok {
        return nil
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    u, err := h.svc.GetUser(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toUserResponse(u))
}

// List handles GET /v1/users (organizers only).
func (h *UserHandler) List(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    users, err := h.svc.ListUsers(ctx)
    if err != nil {
        return writeError(c, err)
    }
    out := make([]userResponse, 0, len(users))
    for _, u := range users {
        out = append(out, toUserResponse(u))
    }
    return c.JSON(http.StatusOK, out)
}

// Update handles PATCH /v1/users/:id (self only).
func (h *UserHandler) Update(c echo.Context) error {
    id, ok := h.target(c, false)
    if !ok {
        return nil
    }
    var req updateUserReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    u, err := h.svc.UpdateUser(ctx, id, repository.UserPatch{FullName: req.FullName, Phone: req.Phone})
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toUserResponse(u))
}

// Delete handles DELETE /v1/users/:id (self only).
func (h *UserHandler) Delete(c echo.Context) error {
    id, ok := h.target(c, false)
    if !ok {
        return nil
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    found, err := h.svc.DeleteUser(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    if !found {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.NoContent(http.StatusNoContent)
}

// target resolves :id and checks the caller may act on it.  On failure the
// response has been written and ok is false.
func (h *UserHandler) target(c echo.Context, organizerMayRead bool) (uint64, bool) {
    uid, role, authed := caller(c)
    if !authed {
        _ = unauthorized(c)
        return 0, false
    }
    id, valid := pathID(c, "id")
    if !valid {
        _ = badRequest(c, "invalid user id")
        return 0, false
    }
    if id != uid && !(organizerMayRead && isOrganizer(role)) {
        _ = forbidden(c)
        return 0, false
    }
    return id, true
}
