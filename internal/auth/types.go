// Package auth holds admin accounts and the sessions that guard the admin API.
package auth

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"

	// CookieName carries the session token for browser clients.
	CookieName = "admin_session"

	DefaultSessionTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("unknown role")
)

// User is the item stored in the users table.
type User struct {
	Email        string    `json:"email" dynamodbav:"email"` // PK, lower case
	ID           string    `json:"id" dynamodbav:"user_id"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	IsActive     bool      `json:"is_active" dynamodbav:"is_active"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Session is the item stored in the sessions table. expires_at is the table TTL.
type Session struct {
	Token     string    `json:"-" dynamodbav:"token"` // PK
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Role      string    `json:"role" dynamodbav:"role"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}
