// Package steam proxies the Steam storefront API for app lookups and
// store search, with parsed responses cached in redis.
package steam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

const (
	defaultStoreURL = "https://store.steampowered.com/api"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/86.0.4240.111 Safari/537.36"

	// CacheTTL bounds how long parsed storefront responses live.
	CacheTTL = 1800 * time.Second
)

// ErrAppNotFound means the storefront has no data for the app id.
var ErrAppNotFound = errors.New("steam: app not found")

type responseCache interface {
	GetWithTTL(ctx context.Context, key string, dest interface{}) (bool, time.Duration, error)
	SetEX(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// GameCategory is a storefront category or genre tag.
type GameCategory struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

// PriceData is the storefront price block, discount aware.
type PriceData struct {
	Discount      bool   `json:"discount"`
	Price         string `json:"price"`
	OriginalPrice string `json:"original_price,omitempty"`
	Discounted    string `json:"discounted,omitempty"`
}

// Game is a parsed appdetails response.
type Game struct {
	ID                int64           `json:"id"`
	Title             string          `json:"title"`
	Platforms         map[string]bool `json:"platforms"`
	Developer         []string        `json:"developer"`
	Publisher         []string        `json:"publisher"`
	Thumbnail         string          `json:"thumbnail"`
	IsFree            bool            `json:"is_free"`
	IsReleased        bool            `json:"is_released"`
	Category          []GameCategory  `json:"category"`
	Description       string          `json:"description"`
	Type              string          `json:"type"`
	Released          *string         `json:"released"`
	TotalAchievements *int64          `json:"total_achievements,omitempty"`
	Screenshots       []string        `json:"screenshots"`
	PriceData         *PriceData      `json:"price_data,omitempty"`
}

// SearchResult is a single storesearch hit.
type SearchResult struct {
	ID                int64           `json:"id"`
	Title             string          `json:"title"`
	Price             string          `json:"price,omitempty"`
	IsFree            bool            `json:"is_free"`
	Thumbnail         string          `json:"thumbnail"`
	Platforms         map[string]bool `json:"platforms"`
	ControllerSupport string          `json:"controller_support"`
}

// Client talks to the Steam storefront API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      responseCache
	log        *zap.Logger
}

// Config holds the storefront client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Cache   responseCache
}

// NewClient creates a storefront client. Cache is optional.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultStoreURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cfg.Cache,
		log:        logger.Named("steam.client"),
	}
}

// AppDetails fetches and parses a single app from the storefront.
func (c *Client) AppDetails(ctx context.Context, appID string) (*Game, error) {
	cacheKey := "steam-app-" + appID
	var cached Game
	if c.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	body, err := c.get(ctx, "/appdetails", url.Values{
		"cc":     {"id"},
		"l":      {"en"},
		"appids": {appID},
	})
	if err != nil {
		return nil, err
	}

	game, err := parseAppDetails(appID, body)
	if err != nil {
		return nil, err
	}
	c.cacheSet(ctx, cacheKey, game)
	return game, nil
}

// Search runs a storefront text search.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	cacheKey := "steam-search-" + term
	var cached []SearchResult
	if c.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	body, err := c.get(ctx, "/storesearch", url.Values{
		"cc":   {"id"},
		"l":    {"en"},
		"term": {term},
	})
	if err != nil {
		return nil, err
	}

	results := parseSearchResults(body)
	if len(results) > 0 {
		c.cacheSet(ctx, cacheKey, results)
	}
	return results, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	found, _, err := c.cache.GetWithTTL(ctx, key, dest)
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (c *Client) cacheSet(ctx context.Context, key string, value interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetEX(ctx, key, value, CacheTTL); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func parseAppDetails(appID string, body []byte) (*Game, error) {
	root := gjson.GetBytes(body, appID)
	if !root.Get("success").Bool() {
		return nil, ErrAppNotFound
	}
	data := root.Get("data")

	game := &Game{
		ID:          data.Get("steam_appid").Int(),
		Title:       data.Get("name").String(),
		Platforms:   boolMap(data.Get("platforms")),
		Developer:   stringList(data.Get("developers")),
		Publisher:   stringList(data.Get("publishers")),
		Thumbnail:   data.Get("header_image").String(),
		IsFree:      data.Get("is_free").Bool(),
		IsReleased:  !data.Get("release_date.coming_soon").Bool(),
		Description: data.Get("short_description").String(),
		Type:        data.Get("type").String(),
		Screenshots: []string{},
	}

	for _, cat := range data.Get("categories").Array() {
		game.Category = append(game.Category, GameCategory{
			ID:          cat.Get("id").Int(),
			Description: cat.Get("description").String(),
		})
	}
	if rls := data.Get("release_date.date"); rls.Exists() && rls.String() != "" {
		v := rls.String()
		game.Released = &v
	}
	if total := data.Get("achievements.total"); total.Exists() {
		v := total.Int()
		game.TotalAchievements = &v
	}
	for _, shot := range data.Get("screenshots").Array() {
		game.Screenshots = append(game.Screenshots, shot.Get("path_full").String())
	}
	if price := data.Get("price_overview"); price.Exists() {
		pd := &PriceData{Price: price.Get("final_formatted").String()}
		if pct := price.Get("discount_percent").Int(); pct != 0 {
			pd.Discount = true
			pd.OriginalPrice = price.Get("initial_formatted").String()
			pd.Discounted = fmt.Sprintf("-%d%%", pct)
		}
		game.PriceData = pd
	}
	return game, nil
}

func parseSearchResults(body []byte) []SearchResult {
	results := []SearchResult{}
	for _, item := range gjson.GetBytes(body, "items").Array() {
		res := SearchResult{
			ID:                item.Get("id").Int(),
			Title:             item.Get("name").String(),
			IsFree:            true,
			Thumbnail:         item.Get("tiny_image").String(),
			Platforms:         boolMap(item.Get("platforms")),
			ControllerSupport: "None",
		}
		if price := item.Get("price.final"); price.Exists() {
			res.Price = formatRupiah(price.Int())
			res.IsFree = false
		}
		if cs := item.Get("controller_support"); cs.Exists() {
			res.ControllerSupport = capitalize(cs.String())
		}
		results = append(results, res)
	}
	return results
}

// formatRupiah renders a storefront price in minor units as an
// Indonesian formatted string, e.g. 1059900 becomes "Rp 10.599,00".
func formatRupiah(final int64) string {
	cents := final % 100
	whole := strconv.FormatInt(final/100, 10)

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(whole[i : i+3])
	}
	return fmt.Sprintf("Rp %s,%02d", b.String(), cents)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func boolMap(res gjson.Result) map[string]bool {
	out := make(map[string]bool)
	res.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value.Bool()
		return true
	})
	return out
}

func stringList(res gjson.Result) []string {
	out := []string{}
	for _, item := range res.Array() {
		out = append(out, item.String())
	}
	return out
}
