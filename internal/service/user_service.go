package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// UserStore is the user persistence used by UserService and AuthService.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, in repository.NewUser, cost int) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error)
	Delete(ctx context.Context, id uint64) (bool, error)
}

type UserService struct {
	users      UserStore
	bcryptCost int
	log        *zap.Logger
}

func NewUserService(users UserStore, bcryptCost int, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, bcryptCost: bcryptCost, log: log.Named("user")}
}

const minPasswordLen = 8

// CreateUser registers a new account.  Role defaults to CUSTOMER.
func (s *UserService) CreateUser(ctx context.Context, in repository.NewUser) (model.User, error) {
	const op = "user.create"
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	if in.Role == "" {
		in.Role = model.RoleCustomer
	}

	switch {
	case in.Username == "":
		return model.User{}, invalid(op, "username is required")
	case in.Email == "":
		return model.User{}, invalid(op, "email is required")
	case in.FullName == "":
		return model.User{}, invalid(op, "full_name is required")
	case len(in.Password) < minPasswordLen:
		return model.User{}, invalid(op, "password must be at least 8 characters")
	case !model.ValidRole(in.Role):
		return model.User{}, invalid(op, "role must be ORGANIZER or CUSTOMER")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return model.User{}, invalid(op, "email is not valid")
	}

	u, err := s.users.Create(ctx, in, s.bcryptCost)
	if err != nil {
		return model.User{}, classify(op, err)
	}
	s.log.Info("user created", zap.Uint64("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, classify("user.get", err)
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	out, err := s.users.List(ctx)
	return out, classify("user.list", err)
}

// UpdateUser changes the profile fields present in p.
func (s *UserService) UpdateUser(ctx context.Context, id uint64, p repository.UserPatch) (model.User, error) {
	const op = "user.update"
	if p.FullName != nil {
		v := strings.TrimSpace(*p.FullName)
		if v == "" {
			return model.User{}, invalid(op, "full_name must not be empty")
		}
		p.FullName = &v
	}
	if p.Phone != nil {
		v := strings.TrimSpace(*p.Phone)
		p.Phone = &v
	}
	u, err := s.users.Update(ctx, id, p)
	if err != nil {
		return model.User{}, classify(op, err)
	}
	return u, nil
}

// DeleteUser removes a user and reports whether it existed.  Users with
// events or bookings cannot be removed.
func (s *UserService) DeleteUser(ctx context.Context, id uint64) (bool, error) {
	found, err := s.users.Delete(ctx, id)
	if err != nil {
		return false, classify("user.delete", err)
	}
	if found {
		s.log.Info("user deleted", zap.Uint64("user_id", id))
	}
	return found, nil
}
