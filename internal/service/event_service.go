package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// EventStore is the event persistence used by EventService.
// *repository.EventRepo satisfies it.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, p repository.EventPatch) (model.Event, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
}

// EventDateLayout is the preferred wire format for event dates.  RFC 3339
// is accepted as well.
const EventDateLayout = "2006-01-02 15:04:05"

type EventService struct {
	events EventStore
	log    *zap.Logger
}

func NewEventService(events EventStore, log *zap.Logger) *EventService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{events: events, log: log.Named("event")}
}

type CreateEventInput struct {
	Name             string
	Description      string
	Location         string
	EventDate        string
	TotalCapacity    int
	TicketPriceCents int64
}

// UpdateEventInput carries a partial update.  Nil fields are left alone.
type UpdateEventInput struct {
	Name             *string
	Description      *string
	Location         *string
	EventDate        *string
	TicketPriceCents *int64
	Status           *string
}

func parseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(EventDateLayout, s, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// CreateEvent validates in and stores a new ACTIVE event owned by
// organizerID with all of its capacity available.
func (s *EventService) CreateEvent(ctx context.Context, organizerID uint64, in CreateEventInput) (model.Event, error) {
	const op = "event.create"
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	switch {
	case name == "":
		return model.Event{}, invalid(op, "event_name is required")
	case location == "":
		return model.Event{}, invalid(op, "location is required")
	case in.TotalCapacity <= 0:
		return model.Event{}, invalid(op, "total_capacity must be greater than zero")
	case in.TicketPriceCents < 0:
		return model.Event{}, invalid(op, "ticket_price must not be negative")
	}
	date, ok := parseEventDate(in.EventDate)
	if !ok {
		return model.Event{}, invalid(op, "event_date must be YYYY-MM-DD HH:MM:SS or RFC3339")
	}

	e := model.Event{
		OrganizerID:      organizerID,
		Name:             name,
		Description:      strings.TrimSpace(in.Description),
		EventDate:        date,
		Location:         location,
		TotalCapacity:    in.TotalCapacity,
		AvailableTickets: in.TotalCapacity,
		TicketPriceCents: in.TicketPriceCents,
		Status:           model.EventActive,
	}
	if err := s.events.Create(ctx, &e); err != nil {
		return model.Event{}, classify(op, err)
	}
	s.log.Info("event created", zap.Uint64("event_id", e.ID), zap.Uint64("organizer_id", organizerID), zap.Int("capacity", e.TotalCapacity))
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return model.Event{}, classify("event.get", err)
	}
	return e, nil
}

// ListEvents returns all events ordered by date, latest first.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	out, err := s.events.List(ctx)
	return out, classify("event.list", err)
}

// UpdateEvent applies a partial update to an event owned by organizerID.
// Capacity and available tickets cannot be changed this way.
func (s *EventService) UpdateEvent(ctx context.Context, organizerID, id uint64, in UpdateEventInput) (model.Event, error) {
	const op = "event.update"
	var p repository.EventPatch
	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return model.Event{}, invalid(op, "event_name must not be empty")
		}
		p.Name = &v
	}
	if in.Location != nil {
		v := strings.TrimSpace(*in.Location)
		if v == "" {
			return model.Event{}, invalid(op, "location must not be empty")
		}
		p.Location = &v
	}
	if in.Description != nil {
		v := strings.TrimSpace(*in.Description)
		p.Description = &v
	}
	if in.EventDate != nil {
		d, ok := parseEventDate(*in.EventDate)
		if !ok {
			return model.Event{}, invalid(op, "event_date must be YYYY-MM-DD HH:MM:SS or RFC3339")
		}
		p.EventDate = &d
	}
	if in.TicketPriceCents != nil {
		if *in.TicketPriceCents < 0 {
			return model.Event{}, invalid(op, "ticket_price must not be negative")
		}
		p.TicketPriceCents = in.TicketPriceCents
	}
	if in.Status != nil {
		v := strings.ToUpper(strings.TrimSpace(*in.Status))
		if !model.ValidEventStatus(v) {
			return model.Event{}, invalid(op, "status must be ACTIVE, INACTIVE, CANCELLED or COMPLETED")
		}
		p.Status = &v
	}

	e, err := s.events.UpdateByIDAndOwner(ctx, id, organizerID, p)
	if err != nil {
		return model.Event{}, classify(op, err)
	}
	s.log.Info("event updated", zap.Uint64("event_id", id))
	return e, nil
}

// DeleteEvent removes an event owned by organizerID.  Events with bookings
// cannot be removed.
func (s *EventService) DeleteEvent(ctx context.Context, organizerID, id uint64) error {
	if err := s.events.DeleteByIDAndOwner(ctx, id, organizerID); err != nil {
		return classify("event.delete", err)
	}
	s.log.Info("event deleted", zap.Uint64("event_id", id))
	return nil
}
