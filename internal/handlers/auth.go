package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillforge/api/internal/middleware"
	"skillforge/api/internal/security"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login validates the shared admin credential pair and, on success, sets
// the signed session cookie. Failures are generic: the response never says
// which part of the credential was wrong.
func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sec := h.cfg.Security

	if !h.limiter.Allow(c.Request.Context(), c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
		return
	}

	if !security.ValidateCredentials(sec, req.Username, req.Password) {
		middleware.RecordLoginFailure()
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("admin login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.limiter.Reset(c.Request.Context(), c.ClientIP())

	token := security.IssueToken(sec.SessionSecret, sec.AdminUser, sec.SessionTTL)
	http.SetCookie(c.Writer, security.SessionCookie(sec.CookieName, token, sec.SessionTTL, h.secureCookies()))

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Logout clears the cookie client-side. The token itself stays valid until
// its embedded expiry; there is no server-side revocation list.
func (h HandlerSet) Logout(c *gin.Context) {
	sec := h.cfg.Security
	http.SetCookie(c.Writer, security.ExpiredSessionCookie(sec.CookieName, h.secureCookies()))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Session reports whether the presented cookie is currently valid. Never
// errors; a bad token is just authenticated=false.
func (h HandlerSet) Session(c *gin.Context) {
	sec := h.cfg.Security
	authenticated := security.IsAuthenticated(c.Request, sec.SessionSecret, sec.AdminUser, sec.CookieName)
	c.JSON(http.StatusOK, gin.H{"ok": true, "authenticated": authenticated})
}
