package handler

import (
    "context"
    "errors"
    "net/http"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "go.uber.org/zap/zaptest/observer"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/service"
)

func eventServer(svc EventService, cache CachePurger, uid uint64) *echo.Echo {
    h := NewEventHandler(svc, cache, nil)
    e := echo.New()
    e.GET("/v1/events", h.List)
    e.GET("/v1/events/:id", h.Get)
    g := e.Group("/v1/events", as(uid, model.RoleOrganizer))
    g.POST("", h.Create)
    g.PATCH("/:id", h.Update)
    g.DELETE("/:id", h.Delete)
    return e
}

func sampleEvent(id uint64) model.Event {
    return model.Event{
        ID: id, OrganizerID: 1, Name: "Concert", Location: "Hall A",
        EventDate:     time.Date(2026, 12, 31, 20, 0, 0, 0, time.UTC),
        TotalCapacity: 100, AvailableTickets: 100, TicketPriceCents: 2500,
        Status: model.EventActive,
    }
}

func TestEventCreatePurgesCache(t *testing.T) {
    var got service.CreateEventInput
    svc := &MockEventService{
        CreateEventFunc: func(_ context.Context, organizerID uint64, in service.CreateEventInput) (model.Event, error) {
            assert.Equal(t, uint64(1), organizerID)
            got = in
            return sampleEvent(3), nil
        },
    }
    cache := &purgeCounter{}
    rec := do(eventServer(svc, cache, 1), http.MethodPost, "/v1/events",
        `{"event_name":"Concert","event_date":"2026-12-31 20:00:00","location":"Hall A","total_capacity":100,"ticket_price_cents":2500}`)

    require.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, "Concert", got.Name)
    assert.Equal(t, 100, got.TotalCapacity)
    assert.Equal(t, 1, cache.n)

    body := decode(t, rec)
    assert.Equal(t, "2026-12-31 20:00:00", body["event_date"])
    assert.Equal(t, float64(100), body["available_tickets"])
}

func TestEventUpdateIsPartial(t *testing.T) {
    var got service.UpdateEventInput
    svc := &MockEventService{
        UpdateEventFunc: func(_ context.Context, _, id uint64, in service.UpdateEventInput) (model.Event, error) {
            got = in
            return sampleEvent(id), nil
        },
    }
    rec := do(eventServer(svc, nil, 1), http.MethodPatch, "/v1/events/3", `{"location":"Hall B"}`)

    require.Equal(t, http.StatusOK, rec.Code)
    require.NotNil(t, got.Location)
    assert.Equal(t, "Hall B", *got.Location)
    assert.Nil(t, got.Name)
    assert.Nil(t, got.TicketPriceCents)
}

func TestEventWriteErrors(t *testing.T) {
    cache := &purgeCounter{}
    svc := &MockEventService{
        UpdateEventFunc: func(context.Context, uint64, uint64, service.UpdateEventInput) (model.Event, error) {
            return model.Event{}, kindErr(service.KindForbidden, "event belongs to another organizer")
        },
        DeleteEventFunc: func(context.Context, uint64, uint64) error {
            return kindErr(service.KindConflict, "event has bookings")
        },
    }
    e := eventServer(svc, cache, 2)

    rec := do(e, http.MethodPatch, "/v1/events/3", `{"location":"x"}`)
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = do(e, http.MethodDelete, "/v1/events/3", "")
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Zero(t, cache.n)
}

func TestEventDelete(t *testing.T) {
    cache := &purgeCounter{}
    svc := &MockEventService{
        DeleteEventFunc: func(context.Context, uint64, uint64) error { return nil },
    }
    rec := do(eventServer(svc, cache, 1), http.MethodDelete, "/v1/events/3", "")
    assert.Equal(t, http.StatusNoContent, rec.Code)
    assert.Equal(t, 1, cache.n)
}

func TestEventReads(t *testing.T) {
    svc := &MockEventService{
        GetEventFunc: func(_ context.Context, id uint64) (model.Event, error) {
            if id == 9 {
                return model.Event{}, kindErr(service.KindEventNotFound, "event not found")
            }
            return sampleEvent(id), nil
        },
        ListEventsFunc: func(context.Context) ([]model.Event, error) {
            return []model.Event{sampleEvent(1), sampleEvent(2)}, nil
        },
    }
    e := eventServer(svc, nil, 1)

    rec := do(e, http.MethodGet, "/v1/events/3", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Concert", decode(t, rec)["event_name"])

    rec = do(e, http.MethodGet, "/v1/events/9", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)

    rec = do(e, http.MethodGet, "/v1/events", "")
    assert.Equal(t, http.StatusOK, rec.Code)
}

type failingPurger struct{}

func (failingPurger) Purge(context.Context) error { return errors.New("redis: connection refused") }

func TestEventPurgeFailureIsLogged(t *testing.T) {
    core, logs := observer.New(zapcore.WarnLevel)
    svc := &MockEventService{
        DeleteEventFunc: func(context.Context, uint64, uint64) error { return nil },
    }
    h := NewEventHandler(svc, failingPurger{}, zap.New(core))
    e := echo.New()
    e.DELETE("/v1/events/:id", h.Delete, as(1, model.RoleOrganizer))

    rec := do(e, http.MethodDelete, "/v1/events/3", "")
    assert.Equal(t, http.StatusNoContent, rec.Code)

    entries := logs.FilterMessage("Cache purge failed").All()
    require.Len(t, entries, 1)
    assert.Equal(t, "redis: connection refused", entries[0].ContextMap()["error"])
}
