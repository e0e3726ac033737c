package handlers

import (
	"net/http"

	"github.com/flams/lore-archive/internal/models"
	"github.com/flams/lore-archive/internal/services"
	"github.com/rs/zerolog/log"
)

// SearchHandler handles external catalog search requests.
type SearchHandler struct {
	service services.SearchServiceProvider
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service services.SearchServiceProvider) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search runs the external fan-out for the ?query= parameter. An empty
// query short-circuits to an empty result list.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeJSON(w, http.StatusOK, map[string]any{"results": []models.SearchResult{}})
		return
	}

	results, err := h.service.Search(r.Context(), query)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("External search failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Search failed."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
