package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an applicant account. Rows are created at registration and never
// updated or deleted by this service.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:"id,pk,autoincrement" json:"id"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"` // Never expose the hash in JSON
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse returns the new account id. Registration does not log
// the user in; the client logs in separately.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int    `json:"userId"`
}

// UserInfo is the minimal profile returned to clients.
type UserInfo struct {
	ID    int    `json:"id,omitempty"`
	Email string `json:"email"`
}

// LoginResponse is the response for a successful login
type LoginResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

// WhoAmIResponse is the response for GET /api/auth/me
type WhoAmIResponse struct {
	User UserInfo `json:"user"`
}
