package model

import "time"

// UserRole represents the role of a user
type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleUser  UserRole = "User"
)

// User represents a stored user account
type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	FirstName    string     `json:"firstName" db:"first_name"`
	LastName     string     `json:"lastName" db:"last_name"`
	Role         UserRole   `json:"role" db:"role"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never expose in JSON
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    *time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateUserRequest is the body of a create user request
type CreateUserRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=50"`
	Email     string   `json:"email" validate:"required,email,max=100"`
	Password  string   `json:"password" validate:"required,min=6"`
	FirstName string   `json:"firstName" validate:"max=50"`
	LastName  string   `json:"lastName" validate:"max=50"`
	Role      UserRole `json:"role" validate:"omitempty,oneof=Admin User"`
}

// UpdateUserRequest replaces every mutable field. An empty Password keeps
// the stored digest.
type UpdateUserRequest struct {
	Email     string   `json:"email" validate:"required,email,max=100"`
	FirstName string   `json:"firstName" validate:"max=50"`
	LastName  string   `json:"lastName" validate:"max=50"`
	Role      UserRole `json:"role" validate:"required,oneof=Admin User"`
	Password  string   `json:"password" validate:"omitempty,min=6"`
}

// TokenClaims is what the auth middleware extracts from a validated bearer
// token.
type TokenClaims struct {
	Subject string   `json:"sub"`
	Name    string   `json:"name,omitempty"`
	Role    UserRole `json:"role"`
}

func (c *TokenClaims) IsAdmin() bool {
	return c != nil && c.Role == UserRoleAdmin
}
