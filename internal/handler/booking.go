package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/event-ticketing/internal/model"
)

// BookingService is what the booking endpoints need from the service
// layer.  *service.BookingService satisfies it.
type BookingService interface {
    CreateBooking(ctx context.Context, userID, eventID uint64, quantity int) (model.Booking, error)
    UpdateStatus(ctx context.Context, id uint64, status string) (bool, error)
    GetBooking(ctx context.Context, id uint64) (model.Booking, error)
    ListBookings(ctx context.Context) ([]model.Booking, error)
    ListUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error)
    ListEventBookings(ctx context.Context, eventID uint64) ([]model.Booking, error)
    DeleteBooking(ctx context.Context, id uint64) (bool, error)
}

// BookingHandler serves /v1/bookings.  Every route sits behind JWTAuth.
// Customers only see and change their own bookings; organizers may act on
// any booking.
type BookingHandler struct {
    svc   BookingService
    cache CachePurger
    log   *zap.Logger
}

// NewBookingHandler builds the handler.  cache holds the event listings,
// whose available_tickets change with every booking; it and log may be
// nil.
func NewBookingHandler(svc BookingService, cache CachePurger, log *zap.Logger) *BookingHandler {
    if svc == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{svc: svc, cache: cache, log: orNop(log).Named("bookings")}
}

type createBookingReq struct {
    EventID  uint64 `json:"event_id"`
    Quantity int    `json:"quantity"`
}

// Create handles POST /v1/bookings.  The booking is made for the
// authenticated user; the body only names the event and quantity.
func (h *BookingHandler) Create(c echo.Context) error {
    userID, _, ok := caller(c)
    if !ok {
        return unauthorized(c)
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    if req.EventID == 0 {
        return badRequest(c, "event_id is required")
    }

    // No request timeout here: the service detaches the reservation from
    // the request and bounds it itself.
    b, err := h.svc.CreateBooking(c.Request().Context(), userID, req.EventID, req.Quantity)
    if err != nil {
        return writeError(c, err)
    }

    ctx, cancel := requestContext(c)
    defer cancel()
    purgeListings(ctx, h.cache, h.log)
    return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    b, ok, err := h.load(c)
    if !ok {
        return err
    }
    return c.JSON(http.StatusOK, toBookingResponse(b))
}

// List handles GET /v1/bookings (organizers only).
func (h *BookingHandler) List(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    out, err := h.svc.ListBookings(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toBookingList(out))
}

// ListByUser handles GET /v1/bookings/user/:id.
func (h *BookingHandler) ListByUser(c echo.Context) error {
    uid, role, ok := caller(c)
    if !ok {
        return unauthorized(c)
    }
    target, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid user id")
    }
    if target != uid && !isOrganizer(role) {
        return forbidden(c)
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    out, err := h.svc.ListUserBookings(ctx, target)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toBookingList(out))
}

// ListByEvent handles GET /v1/bookings/event/:id (organizers only).
func (h *BookingHandler) ListByEvent(c echo.Context) error {
    eventID, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid event id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    out, err := h.svc.ListEventBookings(ctx, eventID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toBookingList(out))
}

// Confirm handles PUT /v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
    return h.setStatus(c, model.BookingConfirmed)
}

// Cancel handles PUT /v1/bookings/:id/cancel.  The tickets are not
// returned to the event.
func (h *BookingHandler) Cancel(c echo.Context) error {
    return h.setStatus(c, model.BookingCancelled)
}

func (h *BookingHandler) setStatus(c echo.Context, status string) error {
    b, ok, err := h.load(c)
    if !ok {
        return err
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    found, err := h.svc.UpdateStatus(ctx, b.ID, status)
    if err != nil {
        return writeError(c, err)
    }
    if !found {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    }
    if fresh, err := h.svc.GetBooking(ctx, b.ID); err == nil {
        b = fresh
    } else {
        b.Status = status
    }
    return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Delete handles DELETE /v1/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
    b, ok, err := h.load(c)
    if !ok {
        return err
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    found, err := h.svc.DeleteBooking(ctx, b.ID)
    if err != nil {
        return writeError(c, err)
    }
    if !found {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    }
    return c.NoContent(http.StatusNoContent)
}

// load fetches the booking named by :id and checks the caller may access
// it.  When ok is false the response has already been written and err is
// what the handler must return.
func (h *BookingHandler) load(c echo.Context) (b model.Booking, ok bool, err error) {
    uid, role, authed := caller(c)
    if !authed {
        return b, false, unauthorized(c)
    }
    id, valid := pathID(c, "id")
    if !valid {
        return b, false, badRequest(c, "invalid booking id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    b, err = h.svc.GetBooking(ctx, id)
    if err != nil {
        return b, false, writeError(c, err)
    }
    if b.UserID != uid && !isOrganizer(role) {
        return b, false, forbidden(c)
    }
    return b, true, nil
}
