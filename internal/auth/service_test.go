package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*Service, *tablesMock, *clock) {
	t.Helper()
	mock := newTablesMock()
	svc := NewService(NewStore(mock, "users", "sessions"), time.Hour)
	svc.bcryptCost = bcrypt.MinCost
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.nowFunc = clk.Now
	return svc, mock, clk
}

func TestService_CreateUser(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, " Admin@Shop.Test ", "s3cret-pass", "")
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.test", u.Email)
	assert.Equal(t, RoleAdmin, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.Contains(t, mock.tables["users"], "admin@shop.test")

	_, err = svc.CreateUser(ctx, "admin@shop.test", "another-pass", RoleStaff)
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.CreateUser(ctx, "x@shop.test", "short", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.CreateUser(ctx, "x@shop.test", "long-enough", "owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestService_LoginAndAuthenticate(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "admin@shop.test", "s3cret-pass", RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "admin@shop.test", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@shop.test", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := svc.Login(ctx, "ADMIN@shop.test", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, clk.now.Add(time.Hour).Unix(), sess.ExpiresAt)

	got, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.test", got.Email)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestService_ExpiredSessionIsDeleted(t *testing.T) {
	svc, mock, clk := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "admin@shop.test", "s3cret-pass", RoleAdmin)
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "admin@shop.test", "s3cret-pass")
	require.NoError(t, err)

	clk.now = clk.now.Add(2 * time.Hour)
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotContains(t, mock.tables["sessions"], sess.Token)
}

func TestService_InactiveUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "staff@shop.test", "s3cret-pass", RoleStaff)
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "staff@shop.test", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, "staff@shop.test", false))

	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Login(ctx, "staff@shop.test", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInactiveUser)

	assert.ErrorIs(t, svc.SetActive(ctx, "ghost@shop.test", true), ErrUserNotFound)
}

func TestService_Logout(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.CreateUser(ctx, "admin@shop.test", "s3cret-pass", RoleAdmin)
	require.NoError(t, err)
	sess, err := svc.Login(ctx, "admin@shop.test", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = svc.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NoError(t, svc.Logout(ctx, ""))
}
