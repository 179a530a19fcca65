package model

import "time"

// Roles a user may hold.  Organizers manage events; customers book them.
const (
    RoleOrganizer = "ORGANIZER"
    RoleCustomer  = "CUSTOMER"
)

// User represents an application user record as stored in the
// `users` table.  The json tags are omitted because these structs are
// used by the repository layer; handlers define their own response
// types so that PasswordHash never leaves the service.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Email        – unique email address (lower case).
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name.
//  Phone        – optional phone number.
//  Role         – ORGANIZER or CUSTOMER.
//  IsActive     – whether the account is active.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    FullName     string    // users.full_name
    Phone        string    // users.phone
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// ValidRole reports whether r is a role users can be created with.
func ValidRole(r string) bool { return r == RoleOrganizer || r == RoleCustomer }

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token value is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
