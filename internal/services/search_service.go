package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/flams/lore-archive/internal/models"
	"github.com/rs/zerolog/log"
)

// SearchServiceProvider defines the interface for external catalog search.
type SearchServiceProvider interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

const (
	tmdbPosterBase = "https://image.tmdb.org/t/p/w500"

	searchCacheTTL = 10 * time.Minute
)

// SearchService fans a query out to TMDB, Jikan and Google Books and merges
// the normalized results. Responses are cached per query so repeated
// searches do not re-hit the upstream APIs.
type SearchService struct {
	client  *http.Client
	cache   *bigcache.BigCache
	tmdbKey string

	// Overridable in tests.
	tmdbBase  string
	jikanBase string
	booksBase string
}

// NewSearchService creates a new SearchService.
func NewSearchService(tmdbKey string) (*SearchService, error) {
	cache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(searchCacheTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search cache: %w", err)
	}
	return &SearchService{
		client:    &http.Client{Timeout: 10 * time.Second},
		cache:     cache,
		tmdbKey:   tmdbKey,
		tmdbBase:  "https://api.themoviedb.org/3",
		jikanBase: "https://api.jikan.moe/v4",
		booksBase: "https://www.googleapis.com/books/v1",
	}, nil
}

// Search queries all external catalogs concurrently. A failing provider
// contributes an empty slice; Search itself never fails on upstream errors.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if query == "" {
		return []models.SearchResult{}, nil
	}

	if cached, err := s.cache.Get(query); err == nil {
		var results []models.SearchResult
		if json.Unmarshal(cached, &results) == nil {
			return results, nil
		}
	}

	var (
		wg                          sync.WaitGroup
		screen, anime, manga, books []models.SearchResult
	)
	providers := []struct {
		name string
		dest *[]models.SearchResult
		run  func(context.Context, string) ([]models.SearchResult, error)
	}{
		{"tmdb", &screen, s.searchTMDB},
		{"jikan-anime", &anime, s.searchAnime},
		{"jikan-manga", &manga, s.searchManga},
		{"google-books", &books, s.searchBooks},
	}
	for _, p := range providers {
		wg.Add(1)
		go func(name string, dest *[]models.SearchResult, run func(context.Context, string) ([]models.SearchResult, error)) {
			defer wg.Done()
			results, err := run(ctx, query)
			if err != nil {
				log.Warn().Err(err).Str("provider", name).Str("query", query).Msg("External search provider failed")
				return
			}
			*dest = results
		}(p.name, p.dest, p.run)
	}
	wg.Wait()

	merged := make([]models.SearchResult, 0, len(screen)+len(anime)+len(manga)+len(books))
	merged = append(merged, screen...)
	merged = append(merged, anime...)
	merged = append(merged, manga...)
	merged = append(merged, books...)

	if encoded, err := json.Marshal(merged); err == nil {
		if err := s.cache.Set(query, encoded); err != nil {
			log.Warn().Err(err).Msg("Failed to cache search results")
		}
	}
	return merged, nil
}

func (s *SearchService) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *SearchService) searchTMDB(ctx context.Context, query string) ([]models.SearchResult, error) {
	params := url.Values{
		"api_key":       {s.tmdbKey},
		"query":         {query},
		"include_adult": {"false"},
	}
	var data struct {
		Results []struct {
			ID           int64  `json:"id"`
			MediaType    string `json:"media_type"`
			Title        string `json:"title"`
			Name         string `json:"name"`
			Overview     string `json:"overview"`
			PosterPath   string `json:"poster_path"`
			ReleaseDate  string `json:"release_date"`
			FirstAirDate string `json:"first_air_date"`
		} `json:"results"`
	}
	if err := s.getJSON(ctx, s.tmdbBase+"/search/multi?"+params.Encode(), &data); err != nil {
		return nil, err
	}

	results := []models.SearchResult{}
	for _, item := range data.Results {
		if item.MediaType != "movie" && item.MediaType != "tv" {
			continue
		}
		title := item.Title
		if title == "" {
			title = item.Name
		}
		release := item.ReleaseDate
		if release == "" {
			release = item.FirstAirDate
		}
		poster := ""
		if item.PosterPath != "" {
			poster = tmdbPosterBase + item.PosterPath
		}
		results = append(results, models.SearchResult{
			ID:          item.ID,
			Title:       title,
			Overview:    item.Overview,
			Poster:      poster,
			Type:        item.MediaType,
			ReleaseDate: release,
		})
	}
	return results, nil
}

// jikanEntry is the subset of the Jikan anime/manga shape we map.
type jikanEntry struct {
	MalID    int64  `json:"mal_id"`
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	Images   struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Aired struct {
		From string `json:"from"`
	} `json:"aired"`
	Published struct {
		From string `json:"from"`
	} `json:"published"`
}

func (s *SearchService) searchJikan(ctx context.Context, kind, query string) ([]models.SearchResult, error) {
	params := url.Values{
		"q":        {query},
		"limit":    {"8"},
		"order_by": {"score"},
		"sort":     {"desc"},
	}
	var data struct {
		Data []jikanEntry `json:"data"`
	}
	if err := s.getJSON(ctx, s.jikanBase+"/"+kind+"?"+params.Encode(), &data); err != nil {
		return nil, err
	}

	results := []models.SearchResult{}
	for _, item := range data.Data {
		release := item.Aired.From
		if kind == "manga" {
			release = item.Published.From
		}
		results = append(results, models.SearchResult{
			ID:          item.MalID,
			Title:       item.Title,
			Overview:    item.Synopsis,
			Poster:      item.Images.JPG.ImageURL,
			Type:        kind,
			ReleaseDate: release,
		})
	}
	return results, nil
}

func (s *SearchService) searchAnime(ctx context.Context, query string) ([]models.SearchResult, error) {
	return s.searchJikan(ctx, "anime", query)
}

func (s *SearchService) searchManga(ctx context.Context, query string) ([]models.SearchResult, error) {
	return s.searchJikan(ctx, "manga", query)
}

func (s *SearchService) searchBooks(ctx context.Context, query string) ([]models.SearchResult, error) {
	params := url.Values{
		"q":          {query},
		"maxResults": {"8"},
	}
	var data struct {
		Items []struct {
			ID         string `json:"id"`
			VolumeInfo struct {
				Title         string `json:"title"`
				Description   string `json:"description"`
				PublishedDate string `json:"publishedDate"`
				ImageLinks    struct {
					Thumbnail string `json:"thumbnail"`
				} `json:"imageLinks"`
			} `json:"volumeInfo"`
		} `json:"items"`
	}
	if err := s.getJSON(ctx, s.booksBase+"/volumes?"+params.Encode(), &data); err != nil {
		return nil, err
	}

	results := []models.SearchResult{}
	for _, item := range data.Items {
		results = append(results, models.SearchResult{
			ID:          StringCatalogID(item.ID),
			Title:       item.VolumeInfo.Title,
			Overview:    item.VolumeInfo.Description,
			Poster:      item.VolumeInfo.ImageLinks.Thumbnail,
			Type:        "book",
			ReleaseDate: item.VolumeInfo.PublishedDate,
		})
	}
	return results, nil
}
