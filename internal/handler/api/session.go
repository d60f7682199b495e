package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionCookieName identifies the shopper's cart session.
const SessionCookieName = "aqualink_session"

const sessionCookieMaxAge = 30 * 24 * time.Hour

// sessionID returns the caller's session ID, minting and setting a new one
// when the cookie is absent.
func sessionID(c echo.Context, secure bool) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
