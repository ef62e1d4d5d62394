package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "auth.session"

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

// TokenFromRequest reads the bearer token, falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}
	if token, err := c.Cookie(CookieName); err == nil {
		return token
	}
	return ""
}

// SetSessionCookie writes the HTTP-only session cookie.
func SetSessionCookie(c *gin.Context, token string, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", opts.Secure, true)
}

// RequireSession rejects requests without a live session with 401 and clears the
// cookie so the client drops its local session.
func RequireSession(svc *Service, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svc.Authenticate(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) {
				log.Printf("[auth] session lookup failed: %v", err)
			}
			ClearSessionCookie(c, opts)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return Session{}, false
	}
	sess, ok := v.(Session)
	return sess, ok
}

// Actor names the admin performing the request, for audit fields.
func Actor(c *gin.Context) string {
	if sess, ok := SessionFrom(c); ok {
		return sess.Email
	}
	return "unknown"
}
