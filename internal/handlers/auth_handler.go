package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tesseract-integrations/tesseract-api/config"
	"github.com/tesseract-integrations/tesseract-api/internal/services"
	"github.com/tesseract-integrations/tesseract-api/pkg/jwt"
)

const (
	stateCookieName   = "oauth_state"
	sessionCookieName = "session_token"
	stateCookieMaxAge = 600
)

type AuthHandler struct {
	service services.Authenticator
	session config.SessionConfig
	baseURL string
}

func NewAuthHandler(service services.Authenticator, session config.SessionConfig, baseURL string) *AuthHandler {
	return &AuthHandler{service: service, session: session, baseURL: baseURL}
}

// SignIn handles GET /api/v1/auth/google/login: set a CSRF state cookie and
// redirect to the Google consent page.
func (h *AuthHandler) SignIn(c *gin.Context) {
	state, err := randomState()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, state, stateCookieMaxAge, "/", h.session.CookieDomain, h.session.CookieSecure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.service.AuthCodeURL(state))
}

// Callback handles GET /api/v1/auth/google/callback: verify the state,
// exchange the code, record the customer, and set the session cookie.
func (h *AuthHandler) Callback(c *gin.Context) {
	expected, err := c.Cookie(stateCookieName)
	if err != nil || !jwt.TimingSafeCompare(c.Query("state"), expected) {
		respondError(c, http.StatusUnauthorized, "Invalid OAuth state", err)
		return
	}

	code := c.Query("code")
	if code == "" {
		respondError(c, http.StatusBadRequest, "Missing authorization code", nil)
		return
	}

	customer, token, err := h.service.HandleCallback(c.Request.Context(), code)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Sign-in failed", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, "", -1, "/", h.session.CookieDomain, h.session.CookieSecure, true)
	c.SetCookie(sessionCookieName, token, h.session.TTLHours*3600, "/", h.session.CookieDomain, h.session.CookieSecure, true)

	// Browser flows land back on the site; API clients get the session JSON.
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.baseURL)
}

// Me handles GET /api/v1/auth/session: return the signed-in customer's session
// claims from the cookie or bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		respondError(c, http.StatusUnauthorized, "Not signed in", nil)
		return
	}

	claims, err := h.service.ValidateSession(token)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid or expired session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"customer": gin.H{
			"id":      claims.CustomerID,
			"email":   claims.Email,
			"name":    claims.Name,
			"picture": claims.Picture,
		},
	})
}

// SignOut handles POST /api/v1/auth/logout
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", h.session.CookieDomain, h.session.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) extractToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookieName); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func randomState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
