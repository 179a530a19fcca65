package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

func TestCreateEvent(t *testing.T) {
	var stored model.Event
	store := &MockEventStore{
		CreateFunc: func(_ context.Context, e *model.Event) error {
			e.ID = 11
			stored = *e
			return nil
		},
	}
	svc := NewEventService(store, nil)

	e, err := svc.CreateEvent(context.Background(), 3, CreateEventInput{
		Name:             "  Jazz Night ",
		Location:         "Hall A",
		EventDate:        "2025-06-01 20:00:00",
		TotalCapacity:    120,
		TicketPriceCents: 4500,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(11), e.ID)
	assert.Equal(t, "Jazz Night", stored.Name)
	assert.Equal(t, uint64(3), stored.OrganizerID)
	assert.Equal(t, 120, stored.AvailableTickets)
	assert.Equal(t, model.EventActive, stored.Status)
	assert.Equal(t, time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC), stored.EventDate)
}

func TestCreateEvent_AcceptsRFC3339(t *testing.T) {
	svc := NewEventService(&MockEventStore{}, nil)
	e, err := svc.CreateEvent(context.Background(), 1, CreateEventInput{
		Name: "x", Location: "y", EventDate: "2025-06-01T22:00:00+02:00", TotalCapacity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC), e.EventDate)
}

func TestCreateEvent_Validation(t *testing.T) {
	valid := CreateEventInput{Name: "n", Location: "l", EventDate: "2025-06-01 20:00:00", TotalCapacity: 10, TicketPriceCents: 0}
	cases := map[string]func(*CreateEventInput){
		"missing name":     func(in *CreateEventInput) { in.Name = " " },
		"missing location": func(in *CreateEventInput) { in.Location = "" },
		"zero capacity":    func(in *CreateEventInput) { in.TotalCapacity = 0 },
		"negative price":   func(in *CreateEventInput) { in.TicketPriceCents = -1 },
		"unparseable date": func(in *CreateEventInput) { in.EventDate = "next friday" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			svc := NewEventService(&MockEventStore{CreateFunc: func(context.Context, *model.Event) error {
				called = true
				return nil
			}}, nil)
			in := valid
			mutate(&in)
			_, err := svc.CreateEvent(context.Background(), 1, in)
			assert.Equal(t, KindInvalidInput, KindOf(err))
			assert.False(t, called)
		})
	}
}

func TestUpdateEvent(t *testing.T) {
	var got repository.EventPatch
	store := &MockEventStore{
		UpdateByIDAndOwnerFunc: func(_ context.Context, id, ownerID uint64, p repository.EventPatch) (model.Event, error) {
			got = p
			if ownerID != 3 {
				return model.Event{}, repository.ErrForbidden
			}
			return model.Event{ID: id}, nil
		},
	}
	svc := NewEventService(store, nil)

	status := "inactive"
	price := int64(999)
	_, err := svc.UpdateEvent(context.Background(), 3, 5, UpdateEventInput{Status: &status, TicketPriceCents: &price})
	require.NoError(t, err)
	require.NotNil(t, got.Status)
	assert.Equal(t, model.EventInactive, *got.Status)
	assert.Equal(t, int64(999), *got.TicketPriceCents)
	assert.Nil(t, got.Name)

	_, err = svc.UpdateEvent(context.Background(), 4, 5, UpdateEventInput{Status: &status})
	assert.Equal(t, KindForbidden, KindOf(err))

	bogus := "SOLD_OUT"
	_, err = svc.UpdateEvent(context.Background(), 3, 5, UpdateEventInput{Status: &bogus})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestDeleteEvent_MapsStoreErrors(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{repository.ErrEventNotFound, KindEventNotFound},
		{repository.ErrForbidden, KindForbidden},
		{repository.ErrConflict, KindConflict},
	}
	for _, tc := range cases {
		svc := NewEventService(&MockEventStore{DeleteByIDAndOwnerFunc: func(context.Context, uint64, uint64) error {
			return tc.err
		}}, nil)
		err := svc.DeleteEvent(context.Background(), 1, 2)
		assert.Equal(t, tc.want, KindOf(err), tc.err.Error())
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	svc := NewEventService(&MockEventStore{}, nil)
	_, err := svc.GetEvent(context.Background(), 8)
	assert.Equal(t, KindEventNotFound, KindOf(err))
}
