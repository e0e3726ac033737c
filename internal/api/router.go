package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/flams/lore-archive/internal/api/handlers"
	"github.com/flams/lore-archive/internal/auth"
	"github.com/flams/lore-archive/internal/models"
)

// Page paths protected by the redirect filter. API routes intentionally stay
// outside the filter; each mounts its own RequireUser check instead.
var protectedPages = []string{"/dashboard"}

// NewRouter creates and configures a new Chi router.
func NewRouter(gate *auth.Gate, authHandler *handlers.AuthHandler, mediaHandler *handlers.MediaHandler, searchHandler *handlers.SearchHandler) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(gate.RedirectFilter(protectedPages...))

	// Session lifecycle
	r.Post("/login", authHandler.Login)
	r.Delete("/login", authHandler.Logout)
	r.Get("/session", authHandler.Session)

	// Minimal pages so the redirect filter has somewhere to land
	r.Get("/login", loginPage)
	r.Get("/dashboard", dashboardPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireUser)

			categories := []struct {
				path     string
				category string
			}{
				{"/movies", models.CategoryMovie},
				{"/tv-series", models.CategoryTV},
				{"/anime", models.CategoryAnime},
				{"/manga", models.CategoryManga},
				{"/books", models.CategoryBook},
				{"/comics", models.CategoryComic},
			}
			for _, c := range categories {
				r.Get(c.path, mediaHandler.List(c.category))
				r.Post(c.path, mediaHandler.Add(c.category))
				r.Delete(c.path, mediaHandler.Delete)
			}

			r.Post("/rating", mediaHandler.Rate)
		})
	})

	return r
}

func loginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<!doctype html><title>Login</title><h1>lore-archive login</h1>"))
}

func dashboardPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<!doctype html><title>Dashboard</title><h1>lore-archive dashboard</h1>"))
}
