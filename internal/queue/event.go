// Package queue defines message payloads exchanged over RabbitMQ and the
// consumer that turns them into the booking audit log.
package queue

// Queue names.  Both queues are durable and fed through the default
// exchange, so the routing key equals the queue name.
const (
    BookingCreatedQueue       = "booking.created"
    BookingStatusChangedQueue = "booking.status_changed"
)

// BookingCreatedEvent is published after a reservation transaction has
// committed.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary database.
type BookingCreatedEvent struct {
    BookingID       uint64 `json:"booking_id"`
    BookingCode     string `json:"booking_code"`
    UserID          uint64 `json:"user_id"`
    EventID         uint64 `json:"event_id"`
    Quantity        int    `json:"quantity"`
    TotalPriceCents int64  `json:"total_price_cents"`
    Status          string `json:"status"`
    AvailableAfter  int    `json:"available_after"`
    CreatedAt       string `json:"created_at"`
}

// BookingStatusChangedEvent is published when a booking's status is
// overwritten (confirm, cancel, expire).
type BookingStatusChangedEvent struct {
    BookingID uint64 `json:"booking_id"`
    Status    string `json:"status"`
    ChangedAt string `json:"changed_at"`
}
