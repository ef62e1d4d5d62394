package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-shop-admin/internal/auth"
	"github.com/imrishuroy/go-shop-admin/internal/validation"
)

func registerAuthRoutes(r *gin.Engine, h *routes) {
	g := r.Group("/auth")

	// login accepts JSON or the form-encoded username/password pair.
	g.POST("/login", func(c *gin.Context) {
		var req validation.LoginRequest
		if err := validation.BindFormOrJSON(c, &req, h.v); err != nil {
			return
		}
		sess, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		auth.SetSessionCookie(c, sess.Token, h.Cookie)
		c.JSON(http.StatusOK, gin.H{
			"access_token": sess.Token,
			"token_type":   "bearer",
			"expires_in":   int(h.Auth.SessionTTL().Seconds()),
		})
	})

	g.POST("/logout", func(c *gin.Context) {
		if token := auth.TokenFromRequest(c); token != "" {
			if err := h.Auth.Logout(c.Request.Context(), token); err != nil {
				writeError(c, err)
				return
			}
		}
		auth.ClearSessionCookie(c, h.Cookie)
		c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
	})

	g.GET("/session", auth.RequireSession(h.Auth, h.Cookie), func(c *gin.Context) {
		sess, _ := auth.SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"session": sess})
	})
}
