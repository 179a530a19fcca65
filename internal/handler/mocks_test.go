package handler

import (
    "context"
    "errors"

    "github.com/iliyamo/event-ticketing/internal/model"
    "github.com/iliyamo/event-ticketing/internal/repository"
    "github.com/iliyamo/event-ticketing/internal/service"
)

var errNotMocked = errors.New("not mocked")

type MockBookingService struct {
    CreateBookingFunc     func(ctx context.Context, userID, eventID uint64, quantity int) (model.Booking, error)
    UpdateStatusFunc      func(ctx context.Context, id uint64, status string) (bool, error)
    GetBookingFunc        func(ctx context.Context, id uint64) (model.Booking, error)
    ListBookingsFunc      func(ctx context.Context) ([]model.Booking, error)
    ListUserBookingsFunc  func(ctx context.Context, userID uint64) ([]model.Booking, error)
    ListEventBookingsFunc func(ctx context.Context, eventID uint64) ([]model.Booking, error)
    DeleteBookingFunc     func(ctx context.Context, id uint64) (bool, error)
}

func (m *MockBookingService) CreateBooking(ctx context.Context, userID, eventID uint64, quantity int) (model.Booking, error) {
    if m.CreateBookingFunc != nil {
        return m.CreateBookingFunc(ctx, userID, eventID, quantity)
    }
    return model.Booking{}, errNotMocked
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, id uint64, status string) (bool, error) {
    if m.UpdateStatusFunc != nil {
        return m.UpdateStatusFunc(ctx, id, status)
    }
    return false, errNotMocked
}

func (m *MockBookingService) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
    if m.GetBookingFunc != nil {
        return m.GetBookingFunc(ctx, id)
    }
    return model.Booking{}, errNotMocked
}

func (m *MockBookingService) ListBookings(ctx context.Context) ([]model.Booking, error) {
    if m.ListBookingsFunc != nil {
        return m.ListBookingsFunc(ctx)
    }
    return nil, errNotMocked
}

func (m *MockBookingService) ListUserBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
    if m.ListUserBookingsFunc != nil {
        return m.ListUserBookingsFunc(ctx, userID)
    }
    return nil, errNotMocked
}

func (m *MockBookingService) ListEventBookings(ctx context.Context, eventID uint64) ([]model.Booking, error) {
    if m.ListEventBookingsFunc != nil {
        return m.ListEventBookingsFunc(ctx, eventID)
    }
    return nil, errNotMocked
}

func (m *MockBookingService) DeleteBooking(ctx context.Context, id uint64) (bool, error) {
    if m.DeleteBookingFunc != nil {
        return m.DeleteBookingFunc(ctx, id)
    }
    return false, errNotMocked
}

type MockEventService struct {
    CreateEventFunc func(ctx context.Context, organizerID uint64, in service.CreateEventInput) (model.Event, error)
    GetEventFunc    func(ctx context.Context, id uint64) (model.Event, error)
    ListEventsFunc  func(ctx context.Context) ([]model.Event, error)
    UpdateEventFunc func(ctx context.Context, organizerID, id uint64, in service.UpdateEventInput) (model.Event, error)
    DeleteEventFunc func(ctx context.Context, organizerID, id uint64) error
}

func (m *MockEventService) CreateEvent(ctx context.Context, organizerID uint64, in service.CreateEventInput) (model.Event, error) {
    if m.CreateEventFunc != nil {
        return m.CreateEventFunc(ctx, organizerID, in)
    }
    return model.Event{}, errNotMocked
}

func (m *MockEventService) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
    if m.GetEventFunc != nil {
        return m.GetEventFunc(ctx, id)
    }
    return model.Event{}, errNotMocked
}

func (m *MockEventService) ListEvents(ctx context.Context) ([]model.Event, error) {
    if m.ListEventsFunc != nil {
        return m.ListEventsFunc(ctx)
    }
    return nil, errNotMocked
}

func (m *MockEventService) UpdateEvent(ctx context.Context, organizerID, id uint64, in service.UpdateEventInput) (model.Event, error) {
    if m.UpdateEventFunc != nil {
        return m.UpdateEventFunc(ctx, organizerID, id, in)
    }
    return model.Event{}, errNotMocked
}

func (m *MockEventService) DeleteEvent(ctx context.Context, organizerID, id uint64) error {
    if m.DeleteEventFunc != nil {
        return m.DeleteEventFunc(ctx, organizerID, id)
    }
    return errNotMocked
}

type MockUserService struct {
    CreateUserFunc func(ctx context.Context, in repository.NewUser) (model.User, error)
    GetUserFunc    func(ctx context.Context, id uint64) (model.User, error)
    ListUsersFunc  func(ctx context.Context) ([]model.User, error)
    UpdateUserFunc func(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error)
    DeleteUserFunc func(ctx context.Context, id uint64) (bool, error)
}

func (m *MockUserService) CreateUser(ctx context.Context, in repository.NewUser) (model.User, error) {
    if m.CreateUserFunc != nil {
        return m.CreateUserFunc(ctx, in)
    }
    return model.User{}, errNotMocked
}

func (m *MockUserService) GetUser(ctx context.Context, id uint64) (model.User, error) {
    if m.GetUserFunc != nil {
        return m.GetUserFunc(ctx, id)
    }
    return model.User{}, errNotMocked
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]model.User, error) {
    if m.ListUsersFunc != nil {
        return m.ListUsersFunc(ctx)
    }
    return nil, errNotMocked
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error) {
    if m.UpdateUserFunc != nil {
        return m.UpdateUserFunc(ctx, id, p)
    }
    return model.User{}, errNotMocked
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uint64) (bool, error) {
    if m.DeleteUserFunc != nil {
        return m.DeleteUserFunc(ctx, id)
    }
    return false, errNotMocked
}

type MockAuthService struct {
    LoginFunc   func(ctx context.Context, email, password string) (service.Session, error)
    RefreshFunc func(ctx context.Context, raw string) (service.Session, error)
    LogoutFunc  func(ctx context.Context, raw string) error
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (service.Session, error) {
    if m.LoginFunc != nil {
        return m.LoginFunc(ctx, email, password)
    }
    return service.Session{}, errNotMocked
}

func (m *MockAuthService) Refresh(ctx context.Context, raw string) (service.Session, error) {
    if m.RefreshFunc != nil {
        return m.RefreshFunc(ctx, raw)
    }
    return service.Session{}, errNotMocked
}

func (m *MockAuthService) Logout(ctx context.Context, raw string) error {
    if m.LogoutFunc != nil {
        return m.LogoutFunc(ctx, raw)
    }
    return errNotMocked
}

type purgeCounter struct{ n int }

func (p *purgeCounter) Purge(context.Context) error {
    p.n++
    return nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }
