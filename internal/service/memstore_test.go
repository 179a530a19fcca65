package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// memStore stands in for MySQL in service tests.  Each event row has its
// own lock, taken by Reserve and held until the owning transaction ends,
// like SELECT ... FOR UPDATE.  Writes are staged on the transaction and
// only become visible on commit.
type memStore struct {
	mu       sync.Mutex
	events   map[uint64]model.Event
	bookings map[uint64]model.Booking
	codes    map[string]bool // committed and in-flight codes, like a unique index
	locks    map[uint64]chan struct{}
	nextID   uint64

	// test hooks
	createErr    error        // returned by Create instead of inserting
	onContended  func(uint64) // called when Reserve has to wait for a lock
	afterReserve func(uint64) // called after a decrement is staged

	txCount atomic.Int64
}

type memTx struct {
	held       []uint64
	decrements map[uint64]int
	inserts    []model.Booking
}

type memTxKey struct{}

func newMemStore(events ...model.Event) *memStore {
	s := &memStore{
		events:   map[uint64]model.Event{},
		bookings: map[uint64]model.Booking{},
		codes:    map[string]bool{},
		locks:    map[uint64]chan struct{}{},
	}
	for _, e := range events {
		s.events[e.ID] = e
	}
	return s
}

func activeEvent(id uint64, capacity int, priceCents int64) model.Event {
	return model.Event{
		ID: id, Name: fmt.Sprintf("event-%d", id), TotalCapacity: capacity,
		AvailableTickets: capacity, TicketPriceCents: priceCents, Status: model.EventActive,
	}
}

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}
	s.txCount.Add(1)
	tx := &memTx{decrements: map[uint64]int{}}
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
		s.release(tx)
	}()
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(tx)
	committed = true
	return nil
}

func (s *memStore) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range tx.decrements {
		e := s.events[id]
		e.AvailableTickets -= n
		s.events[id] = e
	}
	for _, b := range tx.inserts {
		s.bookings[b.ID] = b
	}
}

func (s *memStore) rollback(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range tx.inserts {
		delete(s.codes, b.Code)
	}
}

func (s *memStore) release(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range tx.held {
		<-s.locks[id]
	}
}

func (s *memStore) lock(ctx context.Context, tx *memTx, id uint64) error {
	for _, h := range tx.held {
		if h == id {
			return nil
		}
	}
	s.mu.Lock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
		tx.held = append(tx.held, id)
		return nil
	default:
	}
	if s.onContended != nil {
		s.onContended(id)
	}
	select {
	case ch <- struct{}{}:
		tx.held = append(tx.held, id)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *memStore) Exists(_ context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[id]
	return ok, nil
}

func (s *memStore) Reserve(ctx context.Context, eventID uint64, quantity int) (repository.Reservation, error) {
	tx, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return repository.Reservation{}, repository.ErrNoTransaction
	}
	if err := s.lock(ctx, tx, eventID); err != nil {
		return repository.Reservation{}, fmt.Errorf("lock event %d: %w", eventID, err)
	}
	s.mu.Lock()
	e, ok := s.events[eventID]
	s.mu.Unlock()
	if !ok {
		return repository.Reservation{}, repository.ErrEventNotFound
	}
	available := e.AvailableTickets - tx.decrements[eventID]
	if e.Status != model.EventActive {
		return repository.Reservation{}, repository.ErrEventNotActive
	}
	if available < quantity {
		return repository.Reservation{}, repository.ErrInsufficientInventory
	}
	tx.decrements[eventID] += quantity
	if s.afterReserve != nil {
		s.afterReserve(eventID)
	}
	return repository.Reservation{
		EventID: eventID, Quantity: quantity, UnitPriceCents: e.TicketPriceCents, Available: available - quantity,
	}, nil
}

func (s *memStore) Create(ctx context.Context, b *model.Booking) error {
	tx, _ := ctx.Value(memTxKey{}).(*memTx)
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes[b.Code] {
		return repository.ErrDuplicateCode
	}
	s.codes[b.Code] = true
	s.nextID++
	b.ID = s.nextID
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	if tx == nil {
		s.bookings[b.ID] = *b
		return nil
	}
	tx.inserts = append(tx.inserts, *b)
	return nil
}

func (s *memStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrBookingNotFound
	}
	return b, nil
}

func (s *memStore) filter(keep func(model.Booking) bool) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *memStore) List(context.Context) ([]model.Booking, error) {
	return s.filter(func(model.Booking) bool { return true }), nil
}

func (s *memStore) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	return s.filter(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (s *memStore) ListByEvent(_ context.Context, eventID uint64) ([]model.Booking, error) {
	return s.filter(func(b model.Booking) bool { return b.EventID == eventID }), nil
}

func (s *memStore) UpdateStatus(_ context.Context, id uint64, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return false, nil
	}
	b.Status = status
	s.bookings[id] = b
	return true, nil
}

func (s *memStore) Delete(_ context.Context, id uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.bookings[id]
	delete(s.bookings, id)
	return ok, nil
}

func (s *memStore) available(id uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id].AvailableTickets
}

func (s *memStore) all() []model.Booking {
	b, _ := s.List(context.Background())
	return b
}

// fixedCodes hands out the given codes in order, then unique fallbacks.
type fixedCodes struct {
	mu    sync.Mutex
	codes []string
	n     int
}

func (f *fixedCodes) Generate() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	if len(f.codes) > 0 {
		c := f.codes[0]
		f.codes = f.codes[1:]
		return c, nil
	}
	return fmt.Sprintf("BK-TEST-%08d", f.n), nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu      sync.Mutex
	created []uint64
	changed []string
	err     error
}

func (p *recordingPublisher) PublishBookingCreated(_ context.Context, ev queue.BookingCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, ev.BookingID)
	return p.err
}

func (p *recordingPublisher) PublishBookingStatusChanged(_ context.Context, ev queue.BookingStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, fmt.Sprintf("%d:%s", ev.BookingID, ev.Status))
	return p.err
}
