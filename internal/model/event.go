package model

import "time"

// Event status values stored in events.status.  Only ACTIVE events accept
// new bookings.
const (
    EventActive    = "ACTIVE"
    EventInactive  = "INACTIVE"
    EventCancelled = "CANCELLED"
    EventCompleted = "COMPLETED"
)

// Event is a bookable event together with its inventory counters.
// TotalCapacity is fixed at creation; AvailableTickets is only ever
// decremented by the locked reservation path and never goes below zero.
//
// Fields:
//  ID               – primary key identifier.
//  OrganizerID      – user (ORGANIZER) who owns the event.
//  Name             – display name.
//  Description      – free text, may be empty.
//  EventDate        – when the event takes place (UTC).
//  Location         – venue.
//  TotalCapacity    – number of tickets the event was created with.
//  AvailableTickets – tickets not yet reserved.
//  TicketPriceCents – unit price in cents.
//  Status           – ACTIVE, INACTIVE, CANCELLED or COMPLETED.
type Event struct {
    ID               uint64    // events.id
    OrganizerID      uint64    // events.organizer_id
    Name             string    // events.event_name
    Description      string    // events.description
    EventDate        time.Time // events.event_date
    Location         string    // events.location
    TotalCapacity    int       // events.total_capacity
    AvailableTickets int       // events.available_tickets
    TicketPriceCents int64     // events.ticket_price_cents
    Status           string    // events.status
    CreatedAt        time.Time // events.created_at
    UpdatedAt        time.Time // events.updated_at
}

// ValidEventStatus reports whether s is a known event status.
func ValidEventStatus(s string) bool {
    switch s {
    case EventActive, EventInactive, EventCancelled, EventCompleted:
        return true
    }
    return false
}
