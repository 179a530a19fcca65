package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// MockEventStore is a func-field implementation of EventStore.
type MockEventStore struct {
	CreateFunc             func(ctx context.Context, e *model.Event) error
	GetByIDFunc            func(ctx context.Context, id uint64) (model.Event, error)
	ListFunc               func(ctx context.Context) ([]model.Event, error)
	UpdateByIDAndOwnerFunc func(ctx context.Context, id, ownerID uint64, p repository.EventPatch) (model.Event, error)
	DeleteByIDAndOwnerFunc func(ctx context.Context, id, ownerID uint64) error
}

func (m *MockEventStore) Create(ctx context.Context, e *model.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e)
	}
	return nil
}

func (m *MockEventStore) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return model.Event{}, repository.ErrEventNotFound
}

func (m *MockEventStore) List(ctx context.Context) ([]model.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockEventStore) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, p repository.EventPatch) (model.Event, error) {
	if m.UpdateByIDAndOwnerFunc != nil {
		return m.UpdateByIDAndOwnerFunc(ctx, id, ownerID, p)
	}
	return model.Event{}, nil
}

func (m *MockEventStore) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	if m.DeleteByIDAndOwnerFunc != nil {
		return m.DeleteByIDAndOwnerFunc(ctx, id, ownerID)
	}
	return nil
}

// MockUserStore is a func-field implementation of UserStore.
type MockUserStore struct {
	CreateFunc     func(ctx context.Context, in repository.NewUser, cost int) (model.User, error)
	GetByIDFunc    func(ctx context.Context, id uint64) (model.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (model.User, error)
	ListFunc       func(ctx context.Context) ([]model.User, error)
	UpdateFunc     func(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error)
	DeleteFunc     func(ctx context.Context, id uint64) (bool, error)
}

func (m *MockUserStore) Create(ctx context.Context, in repository.NewUser, cost int) (model.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in, cost)
	}
	return model.User{}, nil
}

func (m *MockUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *MockUserStore) List(ctx context.Context) ([]model.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserStore) Update(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, p)
	}
	return model.User{}, nil
}

func (m *MockUserStore) Delete(ctx context.Context, id uint64) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return false, nil
}

// MockTokenStore is a func-field implementation of TokenStore.
type MockTokenStore struct {
	StoreRefreshFunc   func(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ConsumeRefreshFunc func(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHashFunc   func(ctx context.Context, tokenHash string) (bool, error)
}

func (m *MockTokenStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	if m.StoreRefreshFunc != nil {
		return m.StoreRefreshFunc(ctx, userID, tokenHash, exp)
	}
	return nil
}

func (m *MockTokenStore) ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	if m.ConsumeRefreshFunc != nil {
		return m.ConsumeRefreshFunc(ctx, tokenHash, now)
	}
	return 0, repository.ErrTokenInvalid
}

func (m *MockTokenStore) RevokeByHash(ctx context.Context, tokenHash string) (bool, error) {
	if m.RevokeByHashFunc != nil {
		return m.RevokeByHashFunc(ctx, tokenHash)
	}
	return false, nil
}

// passthroughTx runs fn directly and counts calls.
type passthroughTx struct{ calls int }

func (p *passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}
