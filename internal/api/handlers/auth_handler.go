package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/flams/lore-archive/internal/accounts"
	"github.com/flams/lore-archive/internal/auth"
	"github.com/flams/lore-archive/internal/session"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles login, logout and session introspection.
type AuthHandler struct {
	store   *accounts.Store
	codec   *session.Codec
	cookies *session.CookieManager
	gate    *auth.Gate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store *accounts.Store, codec *session.Codec, cookies *session.CookieManager, gate *auth.Gate) *AuthHandler {
	return &AuthHandler{store: store, codec: codec, cookies: cookies, gate: gate}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles credential verification and session issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password are required."})
		return
	}
	if payload.Username == "" || payload.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password are required."})
		return
	}

	account := h.store.Verify(payload.Username, payload.Password)
	if account == nil {
		log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials."})
		return
	}

	token, err := h.codec.Issue(session.User{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", account.ID).Msg("Failed to issue session token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create session."})
		return
	}

	h.cookies.Attach(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user": account})
}

// Logout clears the session cookie. It succeeds whether or not a valid
// session was presented.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session reports the identity behind the current cookie. A missing or
// garbled cookie yields {"user": null}, never an error.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := h.gate.CurrentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
