package services

import (
	"path/filepath"
	"testing"

	"github.com/flams/lore-archive/internal/database"
	"github.com/flams/lore-archive/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMediaService(t *testing.T) *MediaService {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewMediaService(db)
}

func matrix() models.MediaItem {
	return models.MediaItem{
		ID:          603,
		Title:       "The Matrix",
		Poster:      "https://image.tmdb.org/t/p/w500/matrix.jpg",
		ReleaseDate: "1999-03-30",
		Category:    models.CategoryMovie,
		Genres:      []string{"Action", "Science Fiction"},
	}
}

func TestAddAndList(t *testing.T) {
	svc := testMediaService(t)

	created, alreadyExists, err := svc.Add("flams1", matrix())
	require.NoError(t, err)
	assert.False(t, alreadyExists)
	assert.Equal(t, "The Matrix", created.Title)
	assert.Equal(t, []string{"Action", "Science Fiction"}, created.Genres)
	assert.Nil(t, created.Rating)

	items, err := svc.ListByCategory("flams1", models.CategoryMovie)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(603), items[0].ID)
	assert.Equal(t, []string{"Action", "Science Fiction"}, items[0].Genres)
}

func TestAdd_AlreadyExists(t *testing.T) {
	svc := testMediaService(t)

	_, _, err := svc.Add("flams1", matrix())
	require.NoError(t, err)

	changed := matrix()
	changed.Title = "Different Title"
	existing, alreadyExists, err := svc.Add("flams1", changed)
	require.NoError(t, err)
	assert.True(t, alreadyExists)
	assert.Equal(t, "The Matrix", existing.Title)
}

func TestCatalogIsPerOwner(t *testing.T) {
	svc := testMediaService(t)

	_, _, err := svc.Add("flams1", matrix())
	require.NoError(t, err)

	items, err := svc.ListByCategory("random1", models.CategoryMovie)
	require.NoError(t, err)
	assert.Empty(t, items)

	// The same catalog id can exist in two accounts independently.
	_, alreadyExists, err := svc.Add("random1", matrix())
	require.NoError(t, err)
	assert.False(t, alreadyExists)
}

func TestListByCategory_FiltersCategory(t *testing.T) {
	svc := testMediaService(t)

	_, _, err := svc.Add("flams1", matrix())
	require.NoError(t, err)

	anime := matrix()
	anime.ID = 1
	anime.Title = "Cowboy Bebop"
	anime.Category = models.CategoryAnime
	_, _, err = svc.Add("flams1", anime)
	require.NoError(t, err)

	movies, err := svc.ListByCategory("flams1", models.CategoryMovie)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, models.CategoryMovie, movies[0].Category)

	animes, err := svc.ListByCategory("flams1", models.CategoryAnime)
	require.NoError(t, err)
	require.Len(t, animes, 1)
	assert.Equal(t, "Cowboy Bebop", animes[0].Title)
}

func TestRateItem_Upsert(t *testing.T) {
	svc := testMediaService(t)

	_, _, err := svc.Add("flams1", matrix())
	require.NoError(t, err)

	require.NoError(t, svc.RateItem("flams1", 603, 8))
	items, err := svc.ListByCategory("flams1", models.CategoryMovie)
	require.NoError(t, err)
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 8, *items[0].Rating)

	// Rating again replaces the value.
	require.NoError(t, svc.RateItem("flams1", 603, 3))
	items, err = svc.ListByCategory("flams1", models.CategoryMovie)
	require.NoError(t, err)
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 3, *items[0].Rating)
}

func TestDelete(t *testing.T) {
	svc := testMediaService(t)

	_, _, err := svc.Add("flams1", matrix())
	require.NoError(t, err)
	require.NoError(t, svc.RateItem("flams1", 603, 8))

	require.NoError(t, svc.Delete("flams1", 603))

	items, err := svc.ListByCategory("flams1", models.CategoryMovie)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.Error(t, svc.Delete("flams1", 603))
}

func TestStringCatalogID(t *testing.T) {
	a := StringCatalogID("zyTCAlFPjgYC")
	b := StringCatalogID("zyTCAlFPjgYC")
	c := StringCatalogID("another-volume")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Positive(t, a)
	assert.Positive(t, c)
}
