package services

import (
	"database/sql"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/flams/lore-archive/internal/models"
)

// MediaServiceProvider defines the interface for catalog services.
type MediaServiceProvider interface {
	Add(ownerID string, item models.MediaItem) (models.MediaItem, bool, error)
	ListByCategory(ownerID, category string) ([]models.MediaItem, error)
	Delete(ownerID string, id int64) error
	RateItem(ownerID string, mediaID int64, value int) error
}

// MediaService provides business logic for the per-account media catalog.
type MediaService struct {
	db *sql.DB
}

// NewMediaService creates a new MediaService.
func NewMediaService(db *sql.DB) *MediaService {
	return &MediaService{db: db}
}

// StringCatalogID maps a string catalog identifier (Google Books volume ids)
// to a stable positive int64 usable as a media item id.
func StringCatalogID(id string) int64 {
	return int64(xxhash.Sum64String(id) >> 1)
}

// Add stores a new catalog entry with its genres. If the owner already has
// an item with the same id, the existing row is returned unchanged and the
// second return value is true.
func (s *MediaService) Add(ownerID string, item models.MediaItem) (models.MediaItem, bool, error) {
	existing, err := s.get(ownerID, item.ID)
	if err == nil {
		return existing, true, nil
	}
	if err != sql.ErrNoRows {
		return models.MediaItem{}, false, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.MediaItem{}, false, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO media_items(owner_id, id, title, poster, release_date, category) VALUES(?, ?, ?, ?, ?, ?)",
		ownerID, item.ID, item.Title, item.Poster, item.ReleaseDate, item.Category,
	)
	if err != nil {
		return models.MediaItem{}, false, fmt.Errorf("failed to insert media item: %w", err)
	}

	for _, genre := range item.Genres {
		_, err = tx.Exec(
			"INSERT OR IGNORE INTO media_genres(owner_id, media_id, genre) VALUES(?, ?, ?)",
			ownerID, item.ID, genre,
		)
		if err != nil {
			return models.MediaItem{}, false, fmt.Errorf("failed to insert genre: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return models.MediaItem{}, false, err
	}

	created, err := s.get(ownerID, item.ID)
	if err != nil {
		return models.MediaItem{}, false, err
	}
	return created, false, nil
}

// get retrieves a single item with its genres and the owner's rating.
func (s *MediaService) get(ownerID string, id int64) (models.MediaItem, error) {
	var item models.MediaItem
	row := s.db.QueryRow(
		"SELECT id, title, poster, release_date, category, created_at FROM media_items WHERE owner_id = ? AND id = ?",
		ownerID, id,
	)
	var poster, releaseDate sql.NullString
	err := row.Scan(&item.ID, &item.Title, &poster, &releaseDate, &item.Category, &item.CreatedAt)
	if err != nil {
		return models.MediaItem{}, err
	}
	item.Poster = poster.String
	item.ReleaseDate = releaseDate.String

	item.Genres, err = s.genresFor(ownerID, id)
	if err != nil {
		return models.MediaItem{}, err
	}

	var value int
	err = s.db.QueryRow(
		"SELECT value FROM ratings WHERE owner_id = ? AND media_id = ?",
		ownerID, id,
	).Scan(&value)
	switch err {
	case nil:
		item.Rating = &value
	case sql.ErrNoRows:
	default:
		return models.MediaItem{}, err
	}
	return item, nil
}

func (s *MediaService) genresFor(ownerID string, mediaID int64) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT genre FROM media_genres WHERE owner_id = ? AND media_id = ? ORDER BY genre",
		ownerID, mediaID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []string{}
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, err
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}

// ListByCategory retrieves all items an owner catalogued under one category,
// newest first, with genres and the owner's rating attached.
func (s *MediaService) ListByCategory(ownerID, category string) ([]models.MediaItem, error) {
	rows, err := s.db.Query(
		"SELECT id, title, poster, release_date, category, created_at FROM media_items WHERE owner_id = ? AND category = ? ORDER BY created_at DESC, id DESC",
		ownerID, category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MediaItem{}
	for rows.Next() {
		var item models.MediaItem
		var poster, releaseDate sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &poster, &releaseDate, &item.Category, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Poster = poster.String
		item.ReleaseDate = releaseDate.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	genres, err := s.genreMap(ownerID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingMap(ownerID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if g, ok := genres[items[i].ID]; ok {
			items[i].Genres = g
		} else {
			items[i].Genres = []string{}
		}
		if value, ok := ratings[items[i].ID]; ok {
			v := value
			items[i].Rating = &v
		}
	}
	return items, nil
}

func (s *MediaService) genreMap(ownerID string) (map[int64][]string, error) {
	rows, err := s.db.Query(
		"SELECT media_id, genre FROM media_genres WHERE owner_id = ? ORDER BY genre",
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := make(map[int64][]string)
	for rows.Next() {
		var mediaID int64
		var genre string
		if err := rows.Scan(&mediaID, &genre); err != nil {
			return nil, err
		}
		genres[mediaID] = append(genres[mediaID], genre)
	}
	return genres, rows.Err()
}

func (s *MediaService) ratingMap(ownerID string) (map[int64]int, error) {
	rows, err := s.db.Query(
		"SELECT media_id, value FROM ratings WHERE owner_id = ?",
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make(map[int64]int)
	for rows.Next() {
		var mediaID int64
		var value int
		if err := rows.Scan(&mediaID, &value); err != nil {
			return nil, err
		}
		ratings[mediaID] = value
	}
	return ratings, rows.Err()
}

// Delete removes an item with its genres and ratings from the owner's catalog.
func (s *MediaService) Delete(ownerID string, id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM media_genres WHERE owner_id = ? AND media_id = ?", ownerID, id); err != nil {
		return err
	}
	if _, err = tx.Exec("DELETE FROM ratings WHERE owner_id = ? AND media_id = ?", ownerID, id); err != nil {
		return err
	}
	res, err := tx.Exec("DELETE FROM media_items WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("media item %d not found", id)
	}
	return tx.Commit()
}

// RateItem upserts the owner's rating for a catalogued item.
func (s *MediaService) RateItem(ownerID string, mediaID int64, value int) error {
	_, err := s.db.Exec(
		"INSERT INTO ratings(owner_id, media_id, value) VALUES(?, ?, ?) ON CONFLICT(owner_id, media_id) DO UPDATE SET value = excluded.value",
		ownerID, mediaID, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}
