package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

// TokenStore persists refresh tokens.  *repository.TokenRepo satisfies it.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
}

// AuthConfig holds the token settings.
type AuthConfig struct {
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
}

// Session is what a successful login or refresh hands back to the client.
// Refresh.Raw is only ever returned here; storage keeps its hash.
type Session struct {
	User    model.User
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

type AuthService struct {
	tx     TxRunner
	users  UserStore
	tokens TokenStore
	cfg    AuthConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(tx TxRunner, users UserStore, tokens TokenStore, cfg AuthConfig, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{tx: tx, users: users, tokens: tokens, cfg: cfg, log: log.Named("auth"), now: time.Now}
}

// Login verifies the credentials and issues a new token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	const op = "auth.login"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, invalid(op, "email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Session{}, newError(op, KindUnauthorized, ErrBadCredentials)
	}
	if err != nil {
		return Session{}, classify(op, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		s.log.Debug("login rejected", zap.Uint64("user_id", u.ID))
		return Session{}, newError(op, KindUnauthorized, ErrBadCredentials)
	}
	if !u.IsActive {
		return Session{}, newError(op, KindForbidden, errors.New("account is disabled"))
	}
	sess, err := s.issue(ctx, u)
	if err != nil {
		return Session{}, classify(op, err)
	}
	s.log.Info("login", zap.Uint64("user_id", u.ID))
	return sess, nil
}

// Refresh consumes a refresh token and issues a new pair.  The old token
// is revoked in the same transaction, so a token can be used only once.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	const op = "auth.refresh"
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{}, invalid(op, "refresh_token is required")
	}
	var sess Session
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		userID, err := s.tokens.ConsumeRefresh(ctx, utils.HashRefreshRaw(raw), s.now())
		if err != nil {
			return err
		}
		u, err := s.users.GetByID(ctx, userID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return repository.ErrTokenInvalid
		}
		if err != nil {
			return err
		}
		sess, err = s.issue(ctx, u)
		return err
	})
	if err != nil {
		return Session{}, classify(op, err)
	}
	return sess, nil
}

// Logout revokes a refresh token.  Unknown or already revoked tokens are
// reported as unauthorized.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	const op = "auth.logout"
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return invalid(op, "refresh_token is required")
	}
	ok, err := s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	if err != nil {
		return classify(op, err)
	}
	if !ok {
		return newError(op, KindUnauthorized, repository.ErrTokenInvalid)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return Session{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, err
	}
	return Session{User: u, Access: access, Refresh: refresh}, nil
}
