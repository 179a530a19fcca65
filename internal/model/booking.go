package model

import "time"

// Booking status values stored in bookings.status.
const (
    BookingPending   = "PENDING"
    BookingConfirmed = "CONFIRMED"
    BookingCancelled = "CANCELLED"
    BookingExpired   = "EXPIRED"
)

// Booking records a user's reservation of Quantity tickets for an event.
// TotalPriceCents is fixed when the booking is created and is never
// recomputed.  Only Status changes afterwards.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the booking.
//  EventID         – event being booked.
//  Code            – unique, human readable booking code.
//  Quantity        – number of tickets (> 0).
//  TotalPriceCents – unit price × quantity at reservation time.
//  Status          – PENDING, CONFIRMED, CANCELLED or EXPIRED.
//  PaymentMethod   – payment method label, if any.
//  BookingDate     – when the reservation was made.
//  PaymentDate     – when payment was recorded (nullable).
type Booking struct {
    ID              uint64     // bookings.id
    UserID          uint64     // bookings.user_id
    EventID         uint64     // bookings.event_id
    Code            string     // bookings.booking_code
    Quantity        int        // bookings.quantity
    TotalPriceCents int64      // bookings.total_price_cents
    Status          string     // bookings.status
    PaymentMethod   *string    // bookings.payment_method (nullable)
    BookingDate     time.Time  // bookings.booking_date
    PaymentDate     *time.Time // bookings.payment_date (nullable)
    CreatedAt       time.Time  // bookings.created_at
    UpdatedAt       time.Time  // bookings.updated_at
}

// ValidBookingStatus reports whether s is one of the four booking states.
func ValidBookingStatus(s string) bool {
    switch s {
    case BookingPending, BookingConfirmed, BookingCancelled, BookingExpired:
        return true
    }
    return false
}
