package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NewUser carries the fields needed to register a user.  Password is the
// plain text value; only its bcrypt hash is stored.
type NewUser struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
	Role     string
}

const userColumns = `id, username, email, password_hash, full_name, phone, role, is_active, created_at, updated_at`

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// Create hashes the password with the given bcrypt cost, inserts the user
// and returns the stored row.  Duplicate email or username map to
// ErrEmailExists / ErrUsernameExists.
func (r *UserRepo) Create(ctx context.Context, in NewUser, cost int) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return model.User{}, err
	}
	conn := database.Conn(ctx, r.DB)
	res, err := conn.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, full_name, phone, role) VALUES (?,?,?,?,?,?)",
		strings.TrimSpace(in.Username), email, hash, strings.TrimSpace(in.FullName), strings.TrimSpace(in.Phone), in.Role)
	if err != nil {
		if key, ok := duplicateKey(err); ok {
			if strings.Contains(key, "username") {
				return model.User{}, ErrUsernameExists
			}
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return scanUser(conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=?", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(database.Conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(database.Conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := database.Conn(ctx, r.DB).QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserPatch lists the profile fields a user may change.  Nil fields are
// left untouched.
type UserPatch struct {
	FullName *string
	Phone    *string
}

// Update applies p and returns the stored row.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) (model.User, error) {
	if p.FullName != nil || p.Phone != nil {
		res, err := database.Conn(ctx, r.DB).ExecContext(ctx,
			"UPDATE users SET full_name = COALESCE(?, full_name), phone = COALESCE(?, phone) WHERE id=?",
			p.FullName, p.Phone, id)
		if err != nil {
			return model.User{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return model.User{}, ErrUserNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user and reports whether it existed.  Users that still
// own events or bookings cannot be deleted (ErrConflict).
func (r *UserRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := database.Conn(ctx, r.DB).ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if isRowReferenced(err) {
		return false, ErrConflict
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
