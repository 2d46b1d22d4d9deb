package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles a user account can carry. The portal only distinguishes the
// two the HIS provisioning scripts create.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserAuth is the persisted user record, including the password hash.
// It never crosses the service boundary; handlers only ever see User.
type UserAuth struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// User is the public projection returned to clients and embedded in
// session claims.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Public strips the credential fields from a stored record.
func (u *UserAuth) Public() *User {
	return &User{ID: u.ID, Username: u.Username, Role: u.Role}
}

// ClaimsContextKey is where the request gate stashes verified session
// claims for downstream handlers.
const ClaimsContextKey = "session_claims"

// Claims is the session token payload. The registered claims carry
// sub/iss/aud/iat/exp; username and role ride alongside so the gate
// can annotate requests without a database round-trip.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
