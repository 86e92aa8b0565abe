package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appDetailsFixture = `{
	"440": {
		"success": true,
		"data": {
			"type": "game",
			"name": "Team Fortress 2",
			"steam_appid": 440,
			"is_free": true,
			"short_description": "Nine distinct classes.",
			"header_image": "https://cdn.example/header.jpg",
			"developers": ["Valve"],
			"publishers": ["Valve"],
			"platforms": {"windows": true, "mac": true, "linux": true},
			"categories": [
				{"id": 1, "description": "Multi-player"},
				{"id": 22, "description": "Steam Achievements"}
			],
			"achievements": {"total": 520},
			"screenshots": [
				{"id": 0, "path_full": "https://cdn.example/ss1.jpg"},
				{"id": 1, "path_full": "https://cdn.example/ss2.jpg"}
			],
			"release_date": {"coming_soon": false, "date": "10 Oct, 2007"}
		}
	}
}`

const appDetailsPaidFixture = `{
	"620": {
		"success": true,
		"data": {
			"type": "game",
			"name": "Portal 2",
			"steam_appid": 620,
			"is_free": false,
			"platforms": {"windows": true, "mac": true, "linux": true},
			"release_date": {"coming_soon": true},
			"price_overview": {
				"currency": "IDR",
				"initial": 1059900,
				"final": 529950,
				"discount_percent": 50,
				"initial_formatted": "Rp 105 990",
				"final_formatted": "Rp 52 995"
			}
		}
	}
}`

const searchFixture = `{
	"total": 2,
	"items": [
		{
			"id": 620,
			"name": "Portal 2",
			"price": {"currency": "IDR", "initial": 1059900, "final": 1059900},
			"tiny_image": "https://cdn.example/tiny620.jpg",
			"platforms": {"windows": true, "mac": true, "linux": true},
			"controller_support": "full"
		},
		{
			"id": 440,
			"name": "Team Fortress 2",
			"tiny_image": "https://cdn.example/tiny440.jpg",
			"platforms": {"windows": true, "mac": false, "linux": true}
		}
	]
}`

func TestParseAppDetails(t *testing.T) {
	t.Parallel()

	t.Run("free released game", func(t *testing.T) {
		t.Parallel()

		game, err := parseAppDetails("440", []byte(appDetailsFixture))
		require.NoError(t, err)

		assert.Equal(t, int64(440), game.ID)
		assert.Equal(t, "Team Fortress 2", game.Title)
		assert.True(t, game.IsFree)
		assert.True(t, game.IsReleased)
		assert.Equal(t, []string{"Valve"}, game.Developer)
		assert.Equal(t, "https://cdn.example/header.jpg", game.Thumbnail)
		require.NotNil(t, game.Released)
		assert.Equal(t, "10 Oct, 2007", *game.Released)
		require.Len(t, game.Category, 2)
		assert.Equal(t, "Multi-player", game.Category[0].Description)
		require.NotNil(t, game.TotalAchievements)
		assert.Equal(t, int64(520), *game.TotalAchievements)
		assert.Equal(t, []string{"https://cdn.example/ss1.jpg", "https://cdn.example/ss2.jpg"}, game.Screenshots)
		assert.Nil(t, game.PriceData)
		assert.True(t, game.Platforms["linux"])
	})

	t.Run("discounted unreleased game", func(t *testing.T) {
		t.Parallel()

		game, err := parseAppDetails("620", []byte(appDetailsPaidFixture))
		require.NoError(t, err)

		assert.False(t, game.IsFree)
		assert.False(t, game.IsReleased)
		assert.Nil(t, game.Released)
		require.NotNil(t, game.PriceData)
		assert.True(t, game.PriceData.Discount)
		assert.Equal(t, "Rp 52 995", game.PriceData.Price)
		assert.Equal(t, "Rp 105 990", game.PriceData.OriginalPrice)
		assert.Equal(t, "-50%", game.PriceData.Discounted)
	})

	t.Run("unknown app id", func(t *testing.T) {
		t.Parallel()

		_, err := parseAppDetails("999999", []byte(`{"999999": {"success": false}}`))
		assert.ErrorIs(t, err, ErrAppNotFound)
	})
}

func TestParseSearchResults(t *testing.T) {
	t.Parallel()

	results := parseSearchResults([]byte(searchFixture))
	require.Len(t, results, 2)

	paid := results[0]
	assert.Equal(t, int64(620), paid.ID)
	assert.False(t, paid.IsFree)
	assert.Equal(t, "Rp 10.599,00", paid.Price)
	assert.Equal(t, "Full", paid.ControllerSupport)

	free := results[1]
	assert.Equal(t, int64(440), free.ID)
	assert.True(t, free.IsFree)
	assert.Empty(t, free.Price)
	assert.Equal(t, "None", free.ControllerSupport)
	assert.False(t, free.Platforms["mac"])
}

func TestParseSearchResultsEmpty(t *testing.T) {
	t.Parallel()

	results := parseSearchResults([]byte(`{"total": 0, "items": []}`))
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFormatRupiah(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		final    int64
		expected string
	}{
		{name: "millions", final: 1059900, expected: "Rp 10.599,00"},
		{name: "small amount", final: 529950, expected: "Rp 5.299,50"},
		{name: "under a thousand", final: 99900, expected: "Rp 999,00"},
		{name: "exact thousand boundary", final: 100000, expected: "Rp 1.000,00"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, formatRupiah(tt.final))
		})
	}
}

func TestClientAppDetails(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "440", r.URL.Query().Get("appids"))
		w.Write([]byte(appDetailsFixture))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	game, err := client.AppDetails(context.Background(), "440")

	require.NoError(t, err)
	assert.Equal(t, "/appdetails", gotPath)
	assert.Equal(t, "Team Fortress 2", game.Title)
}

func TestClientSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storesearch", r.URL.Path)
		assert.Equal(t, "portal", r.URL.Query().Get("term"))
		w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	results, err := client.Search(context.Background(), "portal")

	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestClientUpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.AppDetails(context.Background(), "440")
	assert.Error(t, err)
}
