package handler

import (
    "time"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/service"
)

// Response bodies.  Models carry no json tags, so every field that leaves
// the API is listed here explicitly.

type bookingResponse struct {
    ID              uint64     `json:"id"`
    BookingCode     string     `json:"booking_code"`
    UserID          uint64     `json:"user_id"`
    EventID         uint64     `json:"event_id"`
    Quantity        int        `json:"quantity"`
    TotalPriceCents int64      `json:"total_price_cents"`
    Status          string     `json:"status"`
    PaymentMethod   *string    `json:"payment_method"`
    BookingDate     time.Time  `json:"booking_date"`
    PaymentDate     *time.Time `json:"payment_date"`
    CreatedAt       time.Time  `json:"created_at"`
    UpdatedAt       time.Time  `json:"updated_at"`
}

func toBookingResponse(b model.Booking) bookingResponse {
    return bookingResponse{
        ID:              b.ID,
        BookingCode:     b.Code,
        UserID:          b.UserID,
        EventID:         b.EventID,
        Quantity:        b.Quantity,
        TotalPriceCents: b.TotalPriceCents,
        Status:          b.Status,
        PaymentMethod:   b.PaymentMethod,
        BookingDate:     b.BookingDate,
        PaymentDate:     b.PaymentDate,
        CreatedAt:       b.CreatedAt,
        UpdatedAt:       b.UpdatedAt,
    }
}

func toBookingList(in []model.Booking) []bookingResponse {
    out := make([]bookingResponse, 0, len(in))
    for _, b := range in {
        out = append(out, toBookingResponse(b))
    }
    return out
}

type eventResponse struct {
    ID               uint64    `json:"id"`
    OrganizerID      uint64    `json:"organizer_id"`
    EventName        string    `json:"event_name"`
    Description      string    `json:"description"`
    EventDate        string    `json:"event_date"`
    Location         string    `json:"location"`
    TotalCapacity    int       `json:"total_capacity"`
    AvailableTickets int       `json:"available_tickets"`
    TicketPriceCents int64     `json:"ticket_price_cents"`
    Status           string    `json:"status"`
    CreatedAt        time.Time `json:"created_at"`
    UpdatedAt        time.Time `json:"updated_at"`
}

func toEventResponse(e model.Event) eventResponse {
    return eventResponse{
        ID:               e.ID,
        OrganizerID:      e.OrganizerID,
        EventName:        e.Name,
        Description:      e.Description,
        EventDate:        e.EventDate.UTC().Format(service.EventDateLayout),
        Location:         e.Location,
        TotalCapacity:    e.TotalCapacity,
        AvailableTickets: e.AvailableTickets,
        TicketPriceCents: e.TicketPriceCents,
        Status:           e.Status,
        CreatedAt:        e.CreatedAt,
        UpdatedAt:        e.UpdatedAt,
    }
}

// userResponse never includes the password hash.
type userResponse struct {
    ID        uint64    `json:"id"`
    Username  string    `json:"username"`
    Email     string    `json:"email"`
    FullName  string    `json:"full_name"`
    Phone     string    `json:"phone"`
    Role      string    `json:"role"`
    IsActive  bool      `json:"is_active"`
    CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u model.User) userResponse {
    return userResponse{
        ID:        u.ID,
        Username:  u.Username,
        Email:     u.Email,
        FullName:  u.FullName,
        Phone:     u.Phone,
        Role:      u.Role,
        IsActive:  u.IsActive,
        CreatedAt: u.CreatedAt,
    }
}
