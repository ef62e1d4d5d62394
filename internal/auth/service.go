package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the persistence Service needs. *Store implements it.
type Repository interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, email string) (*User, error)
	SetActive(ctx context.Context, email string, active bool) error
	PutSession(ctx context.Context, sess Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service authenticates admins and manages their sessions.
type Service struct {
	repo       Repository
	sessionTTL time.Duration
	bcryptCost int
	newToken   func() string
	nowFunc    func() time.Time
}

func NewService(repo Repository, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		bcryptCost: bcrypt.DefaultCost,
		newToken:   uuid.NewString,
		nowFunc:    time.Now,
	}
}

// SessionTTL is how long new sessions live.
func (s *Service) SessionTTL() time.Duration { return s.sessionTTL }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers an admin account with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, email, password, role string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidCredentials)
	}
	if len(password) < 8 {
		return User{}, ErrWeakPassword
	}
	if role == "" {
		role = RoleAdmin
	}
	if role != RoleAdmin && role != RoleStaff {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		Email:        email,
		ID:           uuid.NewString(),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    s.nowFunc().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// SetActive enables or disables an account. Existing sessions of a disabled user
// are rejected on their next request.
func (s *Service) SetActive(ctx context.Context, email string, active bool) error {
	return s.repo.SetActive(ctx, normalizeEmail(email), active)
}

// Login checks the password and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetUser(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("compare password: %w", err)
	}
	if !u.IsActive {
		return Session{}, ErrInactiveUser
	}

	now := s.nowFunc().UTC()
	sess := Session{
		Token:     s.newToken(),
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL).Unix(),
	}
	if err := s.repo.PutSession(ctx, sess); err != nil {
		return Session{}, err
	}
	log.Printf("[auth] login email=%s role=%s", u.Email, u.Role)
	return sess, nil
}

// Authenticate resolves a token to a live session. Unknown, expired, or disabled
// sessions yield ErrUnauthorized; expired ones are deleted.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	sess, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if sess == nil {
		return Session{}, ErrUnauthorized
	}
	if sess.Expired(s.nowFunc()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil {
			log.Printf("[auth] delete expired session: %v", err)
		}
		return Session{}, ErrUnauthorized
	}
	u, err := s.repo.GetUser(ctx, sess.Email)
	if err != nil {
		return Session{}, err
	}
	if u == nil || !u.IsActive {
		return Session{}, ErrUnauthorized
	}
	return *sess, nil
}

// Logout deletes the session.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}
