package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/service"
)

// EventService is what the event endpoints need.  *service.EventService
// satisfies it.
type EventService interface {
    CreateEvent(ctx context.Context, organizerID uint64, in service.CreateEventInput) (model.Event, error)
    GetEvent(ctx context.Context, id uint64) (model.Event, error)
    ListEvents(ctx context.Context) ([]model.Event, error)
    UpdateEvent(ctx context.Context, organizerID, id uint64, in service.UpdateEventInput) (model.Event, error)
    DeleteEvent(ctx context.Context, organizerID, id uint64) error
}

// CachePurger drops cached event listings after a write.
type CachePurger interface {
    Purge(ctx context.Context) error
}

// EventHandler serves /v1/events.  Reads are public; writes require the
// ORGANIZER role and only touch the caller's own events.
type EventHandler struct {
    svc   EventService
    cache CachePurger
    log   *zap.Logger
}

// NewEventHandler builds the handler.  cache and log may be nil.
func NewEventHandler(svc EventService, cache CachePurger, log *zap.Logger) *EventHandler {
    if svc == nil {
        panic("nil service passed to NewEventHandler")
    }
    return &EventHandler{svc: svc, cache: cache, log: orNop(log).Named("events")}
}

type createEventReq struct {
    EventName        string `json:"event_name"`
    Description      string `json:"description"`
    EventDate        string `json:"event_date"`
    Location         string `json:"location"`
    TotalCapacity    int    `json:"total_capacity"`
    TicketPriceCents int64  `json:"ticket_price_cents"`
}

type updateEventReq struct {
    EventName        *string `json:"event_name"`
    Description      *string `json:"description"`
    EventDate        *string `json:"event_date"`
    Location         *string `json:"location"`
    TicketPriceCents *int64  `json:"ticket_price_cents"`
    Status           *string `json:"status"`
}

// Create handles POST /v1/events.
func (h *EventHandler) Create(c echo.Context) error {
    uid, _, ok := caller(c)
    if !ok {
        return unauthorized(c)
    }
    var req createEventReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    e, err := h.svc.CreateEvent(ctx, uid, service.CreateEventInput{
        Name:             req.EventName,
        Description:      req.Description,
        Location:         req.Location,
        EventDate:        req.EventDate,
        TotalCapacity:    req.TotalCapacity,
        TicketPriceCents: req.TicketPriceCents,
    })
    if err != nil {
        return writeError(c, err)
    }
    h.purge(ctx)
    return c.JSON(http.StatusCreated, toEventResponse(e))
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid event id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    e, err := h.svc.GetEvent(ctx, id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, toEventResponse(e))
}

// List handles GET /v1/events.
func (h *EventHandler) List(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    events, err := h.svc.ListEvents(ctx)
    if err != nil {
        return writeError(c, err)
    }
    out := make([]eventResponse, 0, len(events))
    for _, e := range events {
        out = append(out, toEventResponse(e))
    }
    return c.JSON(http.StatusOK, out)
}

// Update handles PATCH and PUT /v1/events/:id.  Both are partial: fields
// left out of the body are kept.
func (h *EventHandler) Update(c echo.Context) error {
    uid, _, ok := caller(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid event id")
    }
    var req updateEventReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    e, err := h.svc.UpdateEvent(ctx, uid, id, service.UpdateEventInput{
        Name:             req.EventName,
        Description:      req.Description,
        Location:         req.Location,
        EventDate:        req.EventDate,
        TicketPriceCents: req.TicketPriceCents,
        Status:           req.Status,
    })
    if err != nil {
        return writeError(c, err)
    }
    h.purge(ctx)
    return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete handles DELETE /v1/events/:id.  Events that have bookings are
// refused with 409.
func (h *EventHandler) Delete(c echo.Context) error {
    uid, _, ok := caller(c)
    if !ok {
        return unauthorized(c)
    }
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid event id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    if err := h.svc.DeleteEvent(ctx, uid, id); err != nil {
        return writeError(c, err)
    }
    h.purge(ctx)
    return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) purge(ctx context.Context) {
    purgeListings(ctx, h.cache, h.log)
}
