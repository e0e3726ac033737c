package session

import (
	"net/http"
	"time"
)

// CookieName is the fixed name of the session cookie.
const CookieName = "lore_session"

// CookieManager writes the session cookie with fixed security attributes.
// The attributes are not parameterizable per call.
type CookieManager struct {
	secure bool
}

// NewCookieManager returns a manager. In production the cookie is only sent
// over encrypted transport.
func NewCookieManager(production bool) *CookieManager {
	return &CookieManager{secure: production}
}

// Attach sets the session cookie carrying the given token.
func (m *CookieManager) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TTL / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear forces immediate client-side removal of the session cookie.
func (m *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
