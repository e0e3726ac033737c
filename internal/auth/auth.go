package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/flams/lore-archive/internal/session"
	"github.com/rs/zerolog/log"
)

type contextKey string

// UserKey is the context key under which RequireUser stores the session user.
const UserKey = contextKey("sessionUser")

// LoginPath is where unauthenticated page requests get redirected.
const LoginPath = "/login"

// Gate answers "who is calling" for handlers and middleware. Every request
// re-validates the presented cookie; there is no session cache.
type Gate struct {
	codec *session.Codec
}

// NewGate creates a Gate over the given token codec.
func NewGate(codec *session.Codec) *Gate {
	return &Gate{codec: codec}
}

// CurrentUser extracts and validates the session cookie on a request.
// Missing, garbled or expired cookies yield nil, never an error.
func (g *Gate) CurrentUser(r *http.Request) *session.User {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	return g.codec.Read(cookie.Value)
}

// RequireUser guards API routes: with a valid session the user is placed in
// the request context, otherwise the request ends with 401.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := g.CurrentUser(r)
		if user == nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFrom returns the session user stored by RequireUser, or nil.
func UserFrom(ctx context.Context) *session.User {
	user, _ := ctx.Value(UserKey).(*session.User)
	return user
}

// RedirectFilter protects page paths: requests under any of the given
// prefixes without a valid session are redirected to the login page. All
// other paths bypass the filter entirely.
func (g *Gate) RedirectFilter(prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range prefixes {
				if !strings.HasPrefix(r.URL.Path, prefix) {
					continue
				}
				if g.CurrentUser(r) == nil {
					log.Debug().Str("path", r.URL.Path).Msg("Unauthenticated page request, redirecting to login")
					http.Redirect(w, r, LoginPath, http.StatusFound)
					return
				}
				break
			}
			next.ServeHTTP(w, r)
		})
	}
}
