package api

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"

	"github.com/flams/lore-archive/internal/accounts"
	"github.com/flams/lore-archive/internal/api/handlers"
	"github.com/flams/lore-archive/internal/auth"
	"github.com/flams/lore-archive/internal/config"
	"github.com/flams/lore-archive/internal/database"
	"github.com/flams/lore-archive/internal/services"
	"github.com/flams/lore-archive/internal/session"
)

func newTestRouter(t *testing.T) (*chi.Mux, *session.Codec) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	store, err := accounts.NewStore([]config.AccountSeed{
		{ID: "flams1", Username: "flams", DisplayName: "flams", Password: "1234", Salt: "2e3d8b4fa3a84620"},
	})
	require.NoError(t, err)

	codec := session.NewCodec([]byte("test-secret"))
	cookies := session.NewCookieManager(false)
	gate := auth.NewGate(codec)

	searchService, err := services.NewSearchService("")
	require.NoError(t, err)

	router := NewRouter(
		gate,
		handlers.NewAuthHandler(store, codec, cookies, gate),
		handlers.NewMediaHandler(services.NewMediaService(db)),
		handlers.NewSearchHandler(searchService),
	)
	return router, codec
}

func validToken(t *testing.T, codec *session.Codec) string {
	t.Helper()
	token, err := codec.Issue(session.User{ID: "flams1", Username: "flams", DisplayName: "flams"})
	require.NoError(t, err)
	return token
}

func TestLogin_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Post("/login").
		JSON(`{"username": "flams", "password": "1234"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.id", "flams1")).
		Assert(jsonpath.Equal("$.user.username", "flams")).
		Assert(jsonpath.Equal("$.user.displayName", "flams")).
		CookiePresent(session.CookieName).
		End()
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Post("/login").
		JSON(`{"username": "flams", "password": "wrong"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		CookieNotPresent(session.CookieName).
		End()
}

func TestLogin_UnknownUser(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Post("/login").
		JSON(`{"username": "nobody", "password": "1234"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		CookieNotPresent(session.CookieName).
		End()
}

func TestLogin_MissingFields(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing password", `{"username": "flams"}`},
		{"missing username", `{"password": "1234"}`},
		{"non-string username", `{"username": 5, "password": "1234"}`},
		{"not json", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apitest.Handler(router).
				Post("/login").
				Body(tt.body).
				Expect(t).
				Status(http.StatusBadRequest).
				End()
		})
	}
}

func TestSession_WithValidCookie(t *testing.T) {
	router, codec := newTestRouter(t)

	apitest.Handler(router).
		Get("/session").
		Cookie(session.CookieName, validToken(t, codec)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.id", "flams1")).
		Assert(jsonpath.Equal("$.user.username", "flams")).
		End()
}

func TestSession_WithoutCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Get("/session").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user": null}`).
		End()
}

func TestSession_GarbledCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Get("/session").
		Cookie(session.CookieName, "garbled.%%%").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user": null}`).
		End()
}

func TestLogout_ClearsCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Delete("/login").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"success": true}`).
		Cookies(apitest.NewCookie(session.CookieName).Value("")).
		End()
}

func TestProtectedPage_RedirectsWithoutSession(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Get("/dashboard").
		Expect(t).
		Status(http.StatusFound).
		Header("Location", auth.LoginPath).
		End()
}

func TestProtectedPage_ServedWithSession(t *testing.T) {
	router, codec := newTestRouter(t)

	apitest.Handler(router).
		Get("/dashboard").
		Cookie(session.CookieName, validToken(t, codec)).
		Expect(t).
		Status(http.StatusOK).
		End()
}

func TestAPI_RequiresSession(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Get("/api/movies").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestCatalogFlow(t *testing.T) {
	router, codec := newTestRouter(t)
	token := validToken(t, codec)

	apitest.Handler(router).
		Post("/api/movies").
		Cookie(session.CookieName, token).
		JSON(`{"id": 603, "title": "The Matrix", "poster": "/matrix.jpg", "releaseDate": "1999-03-30", "genres": ["Action"]}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.item.title", "The Matrix")).
		End()

	// Adding the same item again reports it as already catalogued.
	apitest.Handler(router).
		Post("/api/movies").
		Cookie(session.CookieName, token).
		JSON(`{"id": 603, "title": "The Matrix"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.alreadyExists", true)).
		End()

	apitest.Handler(router).
		Post("/api/rating").
		Cookie(session.CookieName, token).
		JSON(`{"mediaId": 603, "value": 9}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.rating.value", float64(9))).
		End()

	apitest.Handler(router).
		Get("/api/movies").
		Cookie(session.CookieName, token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.items", 1)).
		Assert(jsonpath.Equal("$.items[0].rating", float64(9))).
		End()

	apitest.Handler(router).
		Delete("/api/movies").
		Query("id", "603").
		Cookie(session.CookieName, token).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"ok": true}`).
		End()

	apitest.Handler(router).
		Get("/api/movies").
		Cookie(session.CookieName, token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.items", 0)).
		End()
}

func TestSearch_EmptyQueryShortCircuits(t *testing.T) {
	router, _ := newTestRouter(t)

	apitest.Handler(router).
		Get("/api/search").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.results", 0)).
		End()
}
