package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/flams/lore-archive/internal/auth"
	"github.com/flams/lore-archive/internal/models"
	"github.com/flams/lore-archive/internal/services"
	"github.com/rs/zerolog/log"
)

// MediaHandler handles HTTP requests for the per-category catalog routes.
type MediaHandler struct {
	service services.MediaServiceProvider
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(service services.MediaServiceProvider) *MediaHandler {
	return &MediaHandler{service: service}
}

// MediaPayload defines the structure for add-to-catalog requests. The id may
// be numeric (TMDB, Jikan) or a string (Google Books volume ids).
type MediaPayload struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Poster      string          `json:"poster"`
	ReleaseDate string          `json:"releaseDate"`
	Genres      []string        `json:"genres"`
}

func (p *MediaPayload) itemID() (int64, bool) {
	var numeric int64
	if err := json.Unmarshal(p.ID, &numeric); err == nil {
		return numeric, numeric != 0
	}
	var str string
	if err := json.Unmarshal(p.ID, &str); err == nil && str != "" {
		return services.StringCatalogID(str), true
	}
	return 0, false
}

// List returns a handler serving the owner's catalog for one category.
func (h *MediaHandler) List(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFrom(r.Context())
		items, err := h.service.ListByCategory(user.ID, category)
		if err != nil {
			log.Error().Err(err).Str("category", category).Msg("Failed to list catalog items")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve items."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// Add returns a handler storing a new catalog entry for one category.
func (h *MediaHandler) Add(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFrom(r.Context())

		var payload MediaPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body."})
			return
		}
		id, ok := payload.itemID()
		if !ok || payload.Title == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id and title are required."})
			return
		}

		item, alreadyExists, err := h.service.Add(user.ID, models.MediaItem{
			ID:          id,
			Title:       payload.Title,
			Poster:      payload.Poster,
			ReleaseDate: payload.ReleaseDate,
			Category:    category,
			Genres:      payload.Genres,
		})
		if err != nil {
			log.Error().Err(err).Int64("media_id", id).Msg("Failed to add catalog item")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save item."})
			return
		}

		body := map[string]any{"item": item}
		if alreadyExists {
			body["alreadyExists"] = true
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// Delete removes the item named by the ?id= query parameter from the
// caller's catalog.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing id."})
		return
	}

	if err := h.service.Delete(user.ID, id); err != nil {
		log.Warn().Err(err).Int64("media_id", id).Msg("Failed to delete catalog item")
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Item not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RatingPayload defines the structure for rating requests.
type RatingPayload struct {
	MediaID int64 `json:"mediaId"`
	Value   *int  `json:"value"`
}

// Rate upserts the caller's rating for one item.
func (h *MediaHandler) Rate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	var payload RatingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.MediaID == 0 || payload.Value == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mediaId and value are required."})
		return
	}

	if err := h.service.RateItem(user.ID, payload.MediaID, *payload.Value); err != nil {
		log.Error().Err(err).Int64("media_id", payload.MediaID).Msg("Failed to save rating")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save rating."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rating": models.Rating{MediaID: payload.MediaID, Value: *payload.Value},
	})
}
