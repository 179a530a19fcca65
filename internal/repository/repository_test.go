package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/database"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// inTx runs fn inside a real TxManager transaction on the mock database.
func inTx(t *testing.T, db *sql.DB, fn func(ctx context.Context) error) error {
	t.Helper()
	return database.NewTxManager(db).WithTx(context.Background(), fn)
}

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

var bookingCols = []string{"id", "user_id", "event_id", "booking_code", "quantity", "total_price_cents", "status",
	"payment_method", "booking_date", "payment_date", "created_at", "updated_at"}

var eventCols = []string{"id", "organizer_id", "event_name", "description", "event_date", "location",
	"total_capacity", "available_tickets", "ticket_price_cents", "status", "created_at", "updated_at"}

var userCols = []string{"id", "username", "email", "password_hash", "full_name", "phone", "role",
	"is_active", "created_at", "updated_at"}
