package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// EventRepo stores events and acts as the inventory ledger: it is the only
// code that writes events.available_tickets.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Reservation is the price snapshot taken while the event row was locked.
type Reservation struct {
	EventID        uint64
	Quantity       int
	UnitPriceCents int64
	Available      int // available_tickets after the decrement
}

// Reserve locks exactly one event row with SELECT ... FOR UPDATE, checks it
// and decrements available_tickets by quantity.  The lock belongs to the
// transaction on ctx and is released only when that transaction commits or
// rolls back, so no other reservation can read the row between the check
// and the write.  Reservations against other events are not blocked.
//
// It returns ErrEventNotFound, ErrEventNotActive or
// ErrInsufficientInventory for business rejections.  A lock wait timeout
// surfaces as the driver's 1205 error (see IsTransient).
func (r *EventRepo) Reserve(ctx context.Context, eventID uint64, quantity int) (Reservation, error) {
	tx := database.TxFromContext(ctx)
	if tx == nil {
		return Reservation{}, ErrNoTransaction
	}

	const lockQ = `SELECT available_tickets, ticket_price_cents, status FROM events WHERE id = ? FOR UPDATE`
	var (
		available int
		price     int64
		status    string
	)
	err := tx.QueryRowContext(ctx, lockQ, eventID).Scan(&available, &price, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return Reservation{}, ErrEventNotFound
	}
	if err != nil {
		return Reservation{}, fmt.Errorf("lock event %d: %w", eventID, err)
	}

	if status != model.EventActive {
		return Reservation{}, ErrEventNotActive
	}
	if available < quantity {
		return Reservation{}, ErrInsufficientInventory
	}

	const decQ = `UPDATE events SET available_tickets = available_tickets - ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, decQ, quantity, eventID); err != nil {
		return Reservation{}, fmt.Errorf("decrement event %d: %w", eventID, err)
	}
	return Reservation{
		EventID:        eventID,
		Quantity:       quantity,
		UnitPriceCents: price,
		Available:      available - quantity,
	}, nil
}

// Exists is a cheap, unlocked existence check.  Its answer can be stale by
// the time a reservation runs; Reserve re-checks under lock.
func (r *EventRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := database.Conn(ctx, r.db).QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

const eventColumns = `id, organizer_id, event_name, COALESCE(description, ''), event_date, location,
       total_capacity, available_tickets, ticket_price_cents, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (model.Event, error) {
	var e model.Event
	err := s.Scan(&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.EventDate, &e.Location,
		&e.TotalCapacity, &e.AvailableTickets, &e.TicketPriceCents, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create inserts e.  available_tickets always starts equal to
// total_capacity.  The stored row, including timestamps, is read back
// into e.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (organizer_id, event_name, description, event_date, location,
                   total_capacity, available_tickets, ticket_price_cents, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	conn := database.Conn(ctx, r.db)
	res, err := conn.ExecContext(ctx, q, e.OrganizerID, e.Name, e.Description, e.EventDate.UTC(), e.Location,
		e.TotalCapacity, e.TotalCapacity, e.TicketPriceCents, e.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanEvent(conn.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if err != nil {
		return err
	}
	*e = got
	return nil
}

// GetByID fetches one event.  It returns ErrEventNotFound when missing.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	e, err := scanEvent(database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	return e, err
}

// List returns all events, most distant date first.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY event_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EventPatch lists the mutable event fields.  Nil fields are left as they
// are.  Capacity and available tickets are deliberately absent.
type EventPatch struct {
	Name             *string
	Description      *string
	Location         *string
	EventDate        *time.Time
	TicketPriceCents *int64
	Status           *string
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Location == nil &&
		p.EventDate == nil && p.TicketPriceCents == nil && p.Status == nil
}

// UpdateByIDAndOwner applies p to the event if it belongs to ownerID and
// returns the updated row.  A missing event yields ErrEventNotFound and an
// event owned by someone else yields ErrForbidden.
func (r *EventRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, p EventPatch) (model.Event, error) {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return model.Event{}, err
	}
	if p.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if p.Name != nil {
		sets, args = append(sets, "event_name = ?"), append(args, *p.Name)
	}
	if p.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *p.Description)
	}
	if p.Location != nil {
		sets, args = append(sets, "location = ?"), append(args, *p.Location)
	}
	if p.EventDate != nil {
		sets, args = append(sets, "event_date = ?"), append(args, p.EventDate.UTC())
	}
	if p.TicketPriceCents != nil {
		sets, args = append(sets, "ticket_price_cents = ?"), append(args, *p.TicketPriceCents)
	}
	if p.Status != nil {
		sets, args = append(sets, "status = ?"), append(args, *p.Status)
	}
	args = append(args, id)

	q := `UPDATE events SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, q, args...); err != nil {
		return model.Event{}, err
	}
	return r.GetByID(ctx, id)
}

// DeleteByIDAndOwner removes an event owned by ownerID.  Events that still
// have bookings cannot be deleted (ErrConflict).
func (r *EventRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	_, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if isRowReferenced(err) {
		return ErrConflict
	}
	return err
}

func (r *EventRepo) checkOwner(ctx context.Context, id, ownerID uint64) error {
	var owner uint64
	err := database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT organizer_id FROM events WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if owner != ownerID {
		return ErrForbidden
	}
	return nil
}
