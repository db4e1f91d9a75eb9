package model

import (
	"time"

	"github.com/google/uuid"
)

// UserType distinguishes ordinary customers from administrators.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeAdmin    UserType = "admin"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address,omitempty" db:"address"`
	City         string    `json:"city,omitempty" db:"city"`
	State        string    `json:"state,omitempty" db:"state"`
	Pincode      string    `json:"pincode" db:"pincode"`
	UserType     UserType  `json:"userType" db:"user_type"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user carries administrative capability.
func (u *User) IsAdmin() bool {
	return u.UserType == UserTypeAdmin
}

// Session is an opaque bearer token bound to a user.
type Session struct {
	Token     string    `json:"token" db:"token"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Pincode  string `json:"pincode"`
}

// LoginRequest is the payload for authenticating.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session and its user.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
