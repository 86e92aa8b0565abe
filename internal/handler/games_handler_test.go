package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihateani-me/ihaapi-go/internal/steam"
)

func gamesRouter(storeURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGamesHandler(steam.NewClient(steam.Config{BaseURL: storeURL}))

	r := gin.New()
	r.GET("/games/search", h.Search)
	r.GET("/games/:appid", h.AppDetails)
	return r
}

func TestGamesAppDetails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("appids") {
		case "440":
			w.Write([]byte(`{"440": {"success": true, "data": {"steam_appid": 440, "name": "Team Fortress 2", "is_free": true, "release_date": {"coming_soon": false}}}}`))
		default:
			w.Write([]byte(`{"999": {"success": false}}`))
		}
	}))
	defer srv.Close()

	r := gamesRouter(srv.URL)

	t.Run("known app", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/440", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Team Fortress 2")
	})

	t.Run("unknown app", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/999", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error": "Failed fetching that appID from Steam.", "code": 404}`, rec.Body.String())
	})
}

func TestGamesSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "portal", r.URL.Query().Get("term"))
		w.Write([]byte(`{"total": 1, "items": [{"id": 620, "name": "Portal 2", "tiny_image": "x"}]}`))
	}))
	defer srv.Close()

	r := gamesRouter(srv.URL)

	t.Run("with query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/search?q=portal", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Portal 2")
	})

	t.Run("missing query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/search", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "please provide")
	})
}
