// Package u2 scrapes the U2 private tracker: the torrent RSS feed and
// the candidate offers page. Both require operator credentials, the
// passkey for the feed and a session cookie for offers.
package u2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

const (
	defaultBaseURL = "https://u2.dmhy.org"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.116 Safari/537.36"

	// latestFilter selects the anime categories for the latest feed.
	latestFilter = "cat14=1&cat15=1&cat16=1&cat30=1&cat40=1&rows=10"
	feedOptions  = "&icat=1&ismalldescr=1&isize=1&iuplder=1&trackerssl=1"

	// CacheTTL bounds how long scraped pages live in the cache.
	CacheTTL = 300 * time.Second
)

var (
	// ErrNoPasskey means the RSS feed cannot be fetched because no
	// passkey is configured.
	ErrNoPasskey = errors.New("u2: passkey is not configured")
	// ErrNoCookies means the offers page cannot be fetched because no
	// session cookie is configured.
	ErrNoCookies = errors.New("u2: session cookies are not configured")

	rssTitleRe  = regexp.MustCompile(`(?i)\[(\w+)\](.*)\[([\d. \w]+)\]\[(\w+)\]`)
	sizeCellRe  = regexp.MustCompile(`^([\d.]*)([\w]+)$`)
	dateCellRe  = regexp.MustCompile(`^([\d]{2,4}-[\d]{1,2}-[\d]{2})(.*)$`)
	jakartaZone = loadJakarta()
)

type responseCache interface {
	GetWithTTL(ctx context.Context, key string, dest interface{}) (bool, time.Duration, error)
	SetEX(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Torrent is a single entry from the torrent RSS feed.
type Torrent struct {
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Category      string `json:"category"`
	Link          string `json:"link"`
	DownloadLink  string `json:"download_link"`
	Author        string `json:"author"`
	Size          string `json:"size"`
	PublishedAt   string `json:"publishedAt"`
	PubSort       int64  `json:"pubSort"`
}

// OfferVotes is the current accept and reject tallies of an offer.
type OfferVotes struct {
	For     int `json:"for"`
	Against int `json:"against"`
}

// Offer is a torrent candidate scraped from the offers page.
type Offer struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Summary  string     `json:"summary"`
	Link     string     `json:"link"`
	Category string     `json:"category"`
	Size     string     `json:"size"`
	Author   string     `json:"author"`
	VoteURL  string     `json:"vote_url"`
	VoteData OfferVotes `json:"vote_data"`
	Posted   string     `json:"posted"`
	Timeout  string     `json:"timeout"`
}

// Scraper fetches and parses U2 tracker pages.
type Scraper struct {
	baseURL    string
	passkey    string
	cookies    string
	httpClient *http.Client
	cache      responseCache
	log        *zap.Logger
}

// Config holds the tracker scraper settings.
type Config struct {
	BaseURL string
	Passkey string
	Cookies string
	Timeout time.Duration
	Cache   responseCache
}

// NewScraper creates a tracker scraper. Cache is optional.
func NewScraper(cfg Config) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Scraper{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		passkey:    cfg.Passkey,
		cookies:    cfg.Cookies,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cache:      cfg.Cache,
		log:        logger.Named("u2.scraper"),
	}
}

// Latest fetches the newest torrents from the RSS feed, oldest first.
func (s *Scraper) Latest(ctx context.Context) ([]Torrent, error) {
	if s.passkey == "" {
		return nil, ErrNoPasskey
	}

	const cacheKey = "u2-latest"
	var cached []Torrent
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	feedURL := fmt.Sprintf("%s/torrentrss.php?%s%s&passkey=%s", s.baseURL, latestFilter, feedOptions, s.passkey)
	body, err := s.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	torrents, err := parseFeed(body)
	if err != nil {
		return nil, err
	}
	if len(torrents) > 0 {
		s.cacheSet(ctx, cacheKey, torrents)
	}
	return torrents, nil
}

// Offers scrapes the offers page for torrent candidates under vote.
func (s *Scraper) Offers(ctx context.Context) ([]Offer, error) {
	if s.cookies == "" {
		return nil, ErrNoCookies
	}

	const cacheKey = "u2-offers"
	var cached []Offer
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	body, err := s.fetch(ctx, s.baseURL+"/offers.php")
	if err != nil {
		return nil, err
	}

	offers, err := s.parseOffers(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	if len(offers) > 0 {
		s.cacheSet(ctx, cacheKey, offers)
	}
	return offers, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-cache")
	if s.cookies != "" {
		req.Header.Set("Cookie", s.cookies)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracker returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// parseOffers walks the offers table. The page nests tables inside
// table cells, so selectors must stay on direct children to avoid
// picking up inner rows.
func (s *Scraper) parseOffers(r io.Reader) ([]Offer, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse offers page: %w", err)
	}

	offers := []Offer{}
	rows := doc.Find("table.mainouter").Find("table.torrents > tbody > tr")
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// header row
			return
		}
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 8 {
			return
		}

		titleRows := cells.Eq(1).Find("table.torrentname > tbody > tr")
		alink := titleRows.Eq(0).Find("a")
		href := strings.TrimSpace(alink.AttrOr("href", ""))
		offerURL := s.baseURL + "/offers.php" + href

		votes := cells.Eq(2).Find("a")
		fonts := votes.ChildrenFiltered("font")

		offers = append(offers, Offer{
			ID:       offerIDFromURL(offerURL),
			Title:    alink.AttrOr("title", ""),
			Summary:  strings.TrimSpace(titleRows.Eq(1).Find("td.embedded.overflow-control").Text()),
			Link:     offerURL,
			Category: strings.TrimRight(cells.Eq(0).ChildrenFiltered("a").Text(), " \t\n"),
			Size:     splitCell(sizeCellRe, cells.Eq(3).Text()),
			Author:   cells.Eq(7).Text(),
			VoteURL:  s.baseURL + "/offers.php" + votes.AttrOr("href", ""),
			VoteData: OfferVotes{
				For:     cellInt(fonts.Eq(0).Text()),
				Against: cellInt(fonts.Eq(1).Text()),
			},
			Posted:  splitCell(dateCellRe, cells.Eq(5).Text()),
			Timeout: splitCell(dateCellRe, cells.Eq(6).Text()),
		})
	})
	return offers, nil
}

func (s *Scraper) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, _, err := s.cache.GetWithTTL(ctx, key, dest)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return found
}

func (s *Scraper) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetEX(ctx, key, value, CacheTTL); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func offerIDFromURL(url string) string {
	start := strings.Index(url, "?id=")
	if start < 0 {
		return ""
	}
	start += len("?id=")
	if end := strings.Index(url, "&off_detail"); end > start {
		return url[start:end]
	}
	return url[start:]
}

// splitCell separates the numeric and unit halves of a table cell,
// e.g. "12.5GiB" becomes "12.5 GiB".
func splitCell(re *regexp.Regexp, text string) string {
	groups := re.FindStringSubmatch(strings.TrimSpace(text))
	if groups == nil {
		return strings.TrimSpace(text)
	}
	parts := []string{}
	for _, g := range groups[1:] {
		if g = strings.TrimSpace(g); g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, " ")
}

func cellInt(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return n
}

func sortByPublished(torrents []Torrent) {
	sort.SliceStable(torrents, func(i, j int) bool {
		return torrents[i].PubSort < torrents[j].PubSort
	})
}

func loadJakarta() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}
