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

// BookingRepo provides storage for bookings.  Create is meant to run inside
// the reservation transaction opened by the booking service; the read and
// status methods are plain single-statement queries.  All timestamp fields
// are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// bookingCodeIndex is the unique index on bookings.booking_code.  MySQL 8
// reports it qualified as "bookings.uq_bookings_code".
const bookingCodeIndex = "uq_bookings_code"

const bookingColumns = `id, user_id, event_id, booking_code, quantity, total_price_cents, status,
       payment_method, booking_date, payment_date, created_at, updated_at`

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b         model.Booking
		method    sql.NullString
		paymentAt sql.NullTime
	)
	err := s.Scan(&b.ID, &b.UserID, &b.EventID, &b.Code, &b.Quantity, &b.TotalPriceCents, &b.Status,
		&method, &b.BookingDate, &paymentAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	if method.Valid {
		m := method.String
		b.PaymentMethod = &m
	}
	if paymentAt.Valid {
		t := paymentAt.Time
		b.PaymentDate = &t
	}
	return b, nil
}

// Create inserts b and reads the stored row back into it.  A collision on
// the booking code index returns ErrDuplicateCode so the caller can pick a
// new code and retry within the same transaction.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (user_id, event_id, booking_code, quantity, total_price_cents, status, booking_date)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	if b.BookingDate.IsZero() {
		b.BookingDate = time.Now().UTC()
	}
	conn := database.Conn(ctx, r.db)
	res, err := conn.ExecContext(ctx, q, b.UserID, b.EventID, b.Code, b.Quantity, b.TotalPriceCents, b.Status, b.BookingDate.UTC())
	if err != nil {
		if key, ok := duplicateKey(err); ok && strings.HasSuffix(key, bookingCodeIndex) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanBooking(conn.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return fmt.Errorf("reload booking %d: %w", id, err)
	}
	*b = got
	return nil
}

// GetByID fetches one booking.  It returns ErrBookingNotFound when missing.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(database.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrBookingNotFound
	}
	return b, err
}

// List returns every booking, newest first.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}

// ListByUser returns the bookings made by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// ListByEvent returns the bookings made against eventID, newest first.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE event_id = ? ORDER BY created_at DESC, id DESC`, eventID)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus overwrites the status of one booking and reports whether a
// row with that id exists.  The current status is not consulted.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) (bool, error) {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes one booking and reports whether it existed.  The event's
// available tickets are not touched.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
