package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

var tracer = otel.Tracer("github.com/iliyamo/event-ticketing/internal/service")

// TxRunner runs fn inside one database transaction carried on the context
// passed to fn.  *database.TxManager satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Ledger is the inventory side of a reservation.  *repository.EventRepo
// satisfies it.
type Ledger interface {
	Exists(ctx context.Context, eventID uint64) (bool, error)
	Reserve(ctx context.Context, eventID uint64, quantity int) (repository.Reservation, error)
}

// BookingStore persists bookings.  *repository.BookingRepo satisfies it.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (bool, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

// CodeGenerator produces booking codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// EventPublisher announces committed booking changes.  Implementations
// must be safe for concurrent use.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
	PublishBookingStatusChanged(ctx context.Context, ev queue.BookingStatusChangedEvent) error
}

const (
	defaultTxTimeout   = 10 * time.Second
	defaultCodeRetries = 3
	publishTimeout     = 3 * time.Second
)

// BookingService coordinates reservations and applies status changes.
type BookingService struct {
	tx        TxRunner
	ledger    Ledger
	bookings  BookingStore
	codes     CodeGenerator
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time

	txTimeout   time.Duration
	codeRetries int
}

type BookingServiceOption func(*BookingService)

// WithTxTimeout bounds a whole reservation transaction, lock wait included.
func WithTxTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

// WithCodeRetries sets how many booking codes are tried before a collision
// is reported.
func WithCodeRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.codeRetries = n
		}
	}
}

func WithPublisher(p EventPublisher) BookingServiceOption {
	return func(s *BookingService) { s.publisher = p }
}

func WithLogger(l *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBookingService(tx TxRunner, ledger Ledger, bookings BookingStore, codes CodeGenerator, opts ...BookingServiceOption) *BookingService {
	s := &BookingService{
		tx:          tx,
		ledger:      ledger,
		bookings:    bookings,
		codes:       codes,
		log:         zap.NewNop(),
		now:         time.Now,
		txTimeout:   defaultTxTimeout,
		codeRetries: defaultCodeRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("booking")
	return s
}

// CreateBooking reserves quantity tickets of eventID for userID and
// records a PENDING booking priced at the event's current unit price.
//
// The reservation runs in a single transaction: the event row is locked,
// checked and decremented, a booking code is generated and the booking is
// inserted.  Any failure rolls all of it back.  Once started, the
// transaction ignores cancellation of ctx and is bounded only by the
// configured timeout, so a caller that goes away cannot leave it half
// done.
func (s *BookingService) CreateBooking(ctx context.Context, userID, eventID uint64, quantity int) (model.Booking, error) {
	const op = "booking.create"
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int64("booking.user_id", int64(userID)),
		attribute.Int64("booking.event_id", int64(eventID)),
		attribute.Int("booking.quantity", quantity),
	))
	defer span.End()

	log := s.log.With(zap.Uint64("user_id", userID), zap.Uint64("event_id", eventID), zap.Int("quantity", quantity))

	if quantity <= 0 {
		return model.Booking{}, s.fail(span, log, newError(op, KindInvalidQuantity, ErrInvalidQuantity))
	}
	if err := ctx.Err(); err != nil {
		return model.Booking{}, s.fail(span, log, newError(op, KindTransient, err))
	}

	// Unlocked and possibly stale; Reserve checks again under the lock.
	ok, err := s.ledger.Exists(ctx, eventID)
	if err != nil {
		return model.Booking{}, s.fail(span, log, classify(op, err))
	}
	if !ok {
		return model.Booking{}, s.fail(span, log, newError(op, KindEventNotFound, repository.ErrEventNotFound))
	}

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
	defer cancel()

	var (
		booking   model.Booking
		available int
	)
	err = s.tx.WithTx(txCtx, func(ctx context.Context) error {
		res, err := s.ledger.Reserve(ctx, eventID, quantity)
		if err != nil {
			return err
		}
		available = res.Available
		booking = model.Booking{
			UserID:          userID,
			EventID:         eventID,
			Quantity:        quantity,
			TotalPriceCents: res.UnitPriceCents * int64(quantity),
			Status:          model.BookingPending,
			BookingDate:     s.now().UTC(),
		}
		return s.insertWithFreshCode(ctx, &booking)
	})
	if err != nil {
		return model.Booking{}, s.fail(span, log, classify(op, err))
	}

	span.SetAttributes(attribute.Int64("booking.id", int64(booking.ID)), attribute.String("booking.code", booking.Code))
	log.Info("booking created",
		zap.Uint64("booking_id", booking.ID),
		zap.String("booking_code", booking.Code),
		zap.Int64("total_price_cents", booking.TotalPriceCents),
		zap.Int("available_after", available))

	s.publish(ctx, func(ctx context.Context, p EventPublisher) error {
		return p.PublishBookingCreated(ctx, queue.BookingCreatedEvent{
			BookingID:       booking.ID,
			BookingCode:     booking.Code,
			UserID:          booking.UserID,
			EventID:         booking.EventID,
			Quantity:        booking.Quantity,
			TotalPriceCents: booking.TotalPriceCents,
			Status:          booking.Status,
			AvailableAfter:  available,
			CreatedAt:       booking.CreatedAt.UTC().Format(time.RFC3339),
		})
	})
	return booking, nil
}

// insertWithFreshCode inserts b under a newly generated code, drawing a new
// code when the unique index reports a collision.  The retries stay inside
// the caller's transaction.
func (s *BookingService) insertWithFreshCode(ctx context.Context, b *model.Booking) error {
	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return err
		}
		b.Code = code
		err = s.bookings.Create(ctx, b)
		if !errors.Is(err, repository.ErrDuplicateCode) || attempt >= s.codeRetries {
			return err
		}
		s.log.Debug("booking code collision, regenerating", zap.String("booking_code", code), zap.Int("attempt", attempt))
	}
}

// UpdateStatus overwrites the status of booking id and reports whether the
// booking exists.  The current status is not consulted, so any of the
// known statuses can follow any other.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint64, status string) (bool, error) {
	const op = "booking.update_status"
	status = strings.ToUpper(strings.TrimSpace(status))
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int64("booking.id", int64(id)),
		attribute.String("booking.status", status),
	))
	defer span.End()

	log := s.log.With(zap.Uint64("booking_id", id), zap.String("status", status))

	if !model.ValidBookingStatus(status) {
		return false, s.fail(span, log, newError(op, KindInvalidInput, ErrInvalidStatus))
	}
	found, err := s.bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		return false, s.fail(span, log, classify(op, err))
	}
	span.SetAttributes(attribute.Bool("booking.found", found))
	if !found {
		log.Debug("status update on missing booking")
		return false, nil
	}
	log.Info("booking status updated")

	changedAt := s.now().UTC().Format(time.RFC3339)
	s.publish(ctx, func(ctx context.Context, p EventPublisher) error {
		return p.PublishBookingStatusChanged(ctx, queue.BookingStatusChangedEvent{
			BookingID: id,
			Status:    status,
			ChangedAt: changedAt,
		})
	})
	return true, nil
}

func (s *BookingService) Confirm(ctx context.Context, id uint64) (bool, error) {
	return s.UpdateStatus(ctx, id, model.BookingConfirmed)
}

func (s *BookingService) Cancel(ctx context.Context, id uint64) (bool, error) {
	return s.UpdateStatus(ctx, id, model.BookingCancelled)
}

func (s *BookingService) Expire(ctx context.Context, id uint64) (bool, error) {
	return s.UpdateStatus(ctx, id, model.BookingExpired)
}

// GetBooking returns one booking or a KindNotFound error.
func (s *BookingService) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, classify("booking.get", err)
	}
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]model.Booking, error) {
	out, err := s.bookings.List(ctx)
	return out, classify("booking.list", err)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	out, err := s.bookings.ListByUser(ctx, userID)
	return out, classify("booking.list_by_user", err)
}

func (s *BookingService) ListEventBookings(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	out, err := s.bookings.ListByEvent(ctx, eventID)
	return out, classify("booking.list_by_event", err)
}

// DeleteBooking removes booking id and reports whether it existed.  The
// tickets it held are not returned to the event.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint64) (bool, error) {
	found, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return false, classify("booking.delete", err)
	}
	if found {
		s.log.Info("booking deleted", zap.Uint64("booking_id", id))
	}
	return found, nil
}

// fail records err on the span and logs it at a level matching its kind.
func (s *BookingService) fail(span trace.Span, log *zap.Logger, err error) error {
	kind := KindOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind.String())
	switch {
	case rejection(kind):
		log.Debug("booking rejected", zap.Stringer("kind", kind), zap.Error(err))
	case kind == KindTransient:
		log.Warn("booking failed, transient", zap.Error(err))
	default:
		log.Error("booking failed", zap.Error(err))
	}
	return err
}

// publish hands a committed change to the publisher.  Failures are logged
// and otherwise ignored; the change itself is already durable.
func (s *BookingService) publish(ctx context.Context, fn func(context.Context, EventPublisher) error) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := fn(ctx, s.publisher); err != nil {
		s.log.Warn("publish booking event failed", zap.Error(err))
	}
}
