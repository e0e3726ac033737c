package models

import "time"

// Catalog categories. Every item belongs to exactly one.
const (
	CategoryMovie = "MOVIE"
	CategoryTV    = "TV"
	CategoryAnime = "ANIME"
	CategoryManga = "MANGA"
	CategoryBook  = "BOOK"
	CategoryComic = "COMIC"
)

// MediaItem represents one catalogued entry owned by an account.
type MediaItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Poster      string    `json:"poster,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	Category    string    `json:"category"`
	Genres      []string  `json:"genres"`
	Rating      *int      `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Rating is one account's score for a catalogued item.
type Rating struct {
	MediaID int64 `json:"mediaId"`
	Value   int   `json:"value"`
}

// SearchResult is a normalized hit from an external catalog.
type SearchResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview,omitempty"`
	Poster      string `json:"poster,omitempty"`
	Type        string `json:"type"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}
