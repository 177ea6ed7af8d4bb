package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest payload for admin-driven account creation.
type CreateUserRequest struct {
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Name       string          `json:"name"`
	Role       domain.UserRole `json:"role"`
	Department *string         `json:"department"`
	Phone      *string         `json:"phone"`
}

// UpdateUserRequest is the optional-field profile patch.
type UpdateUserRequest struct {
	Name       *string          `json:"name"`
	Department *string          `json:"department"`
	Phone      *string          `json:"phone"`
	Role       *domain.UserRole `json:"role"`
}

// UserResponse never exposes the password hash.
type UserResponse struct {
	ID         int64           `json:"id"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Role       domain.UserRole `json:"role"`
	Department *string         `json:"department"`
	Phone      *string         `json:"phone"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AuthResponse pairs a token with its user.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
