package u2

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>U2 Torrents</title>
	<item>
		<title>[Lossless Music]Aimer - Walpurgis[1.21 GB][sakura]</title>
		<link>https://u2.dmhy.org/details.php?id=44556</link>
		<author>sakura@u2.dmhy.org (sakura)</author>
		<category>Lossless Music</category>
		<pubDate>Sat, 02 Jan 2021 10:00:00 +0000</pubDate>
		<enclosure url="https://u2.dmhy.org/download.php?id=44556" length="1" type="application/x-bittorrent"/>
	</item>
	<item>
		<title>[BDMV]Mahou Shoujo Madoka Magica Vol.1[22.5 GB][walpurgis]</title>
		<link>https://u2.dmhy.org/details.php?id=44555</link>
		<author>walpurgis@u2.dmhy.org (walpurgis)</author>
		<category>BDMV</category>
		<pubDate>Sat, 02 Jan 2021 03:00:00 +0000</pubDate>
		<enclosure url="https://u2.dmhy.org/download.php?id=44555" length="1" type="application/x-bittorrent"/>
	</item>
</channel>
</rss>`

const offersFixture = `<html><body>
<table class="mainouter"><tbody><tr><td>
<table class="torrents"><tbody>
	<tr><td>Category</td><td>Title</td><td>Votes</td><td>Size</td><td>S</td><td>Posted</td><td>Timeout</td><td>Uploader</td></tr>
	<tr>
		<td><a href="?cat=15">BDMV</a></td>
		<td>
			<table class="torrentname"><tbody>
				<tr><td><a href="?id=1234&amp;off_detail=1" title="Some BDMV release"></a></td></tr>
				<tr><td class="embedded overflow-control">A very nice release</td></tr>
			</tbody></table>
		</td>
		<td><a href="?id=1234&amp;vote=1"><font>12</font><font>3</font></a></td>
		<td>12.5GiB</td>
		<td>4</td>
		<td>2021-01-0203:04:05</td>
		<td>2021-01-0903:04:05</td>
		<td>uploader_a</td>
	</tr>
</tbody></table>
</td></tr></tbody></table>
</body></html>`

func TestParseFeed(t *testing.T) {
	t.Parallel()

	torrents, err := parseFeed([]byte(feedFixture))
	require.NoError(t, err)
	require.Len(t, torrents, 2)

	// sorted oldest first
	first := torrents[0]
	assert.Equal(t, "Mahou Shoujo Madoka Magica Vol.1", first.Title)
	assert.Equal(t, "[BDMV]Mahou Shoujo Madoka Magica Vol.1[22.5 GB][walpurgis]", first.OriginalTitle)
	assert.Equal(t, "BDMV", first.Category)
	assert.Equal(t, "22.5 GB", first.Size)
	assert.Equal(t, "walpurgis@u2.dmhy.org (walpurgis)", first.Author)
	assert.Equal(t, "https://u2.dmhy.org/download.php?id=44555", first.DownloadLink)
	assert.Equal(t, "Sat, 02 Jan 2021 10:00:00 +07:00", first.PublishedAt)

	second := torrents[1]
	assert.Equal(t, "Aimer - Walpurgis", second.Title)
	assert.Greater(t, second.PubSort, first.PubSort)
}

func TestParseFeedInvalidXML(t *testing.T) {
	t.Parallel()

	_, err := parseFeed([]byte("<rss><channel>"))
	assert.Error(t, err)
}

func TestParseOffers(t *testing.T) {
	t.Parallel()

	s := NewScraper(Config{Cookies: "nexusphp_u2=abc"})
	offers, err := s.parseOffers(strings.NewReader(offersFixture))
	require.NoError(t, err)
	require.Len(t, offers, 1)

	offer := offers[0]
	assert.Equal(t, "1234", offer.ID)
	assert.Equal(t, "Some BDMV release", offer.Title)
	assert.Equal(t, "A very nice release", offer.Summary)
	assert.Equal(t, "https://u2.dmhy.org/offers.php?id=1234&off_detail=1", offer.Link)
	assert.Equal(t, "BDMV", offer.Category)
	assert.Equal(t, "12.5 GiB", offer.Size)
	assert.Equal(t, "uploader_a", offer.Author)
	assert.Equal(t, "https://u2.dmhy.org/offers.php?id=1234&vote=1", offer.VoteURL)
	assert.Equal(t, 12, offer.VoteData.For)
	assert.Equal(t, 3, offer.VoteData.Against)
	assert.Equal(t, "2021-01-02 03:04:05", offer.Posted)
	assert.Equal(t, "2021-01-09 03:04:05", offer.Timeout)
}

func TestLatestRequiresPasskey(t *testing.T) {
	t.Parallel()

	s := NewScraper(Config{})
	_, err := s.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoPasskey)
}

func TestOffersRequireCookies(t *testing.T) {
	t.Parallel()

	s := NewScraper(Config{Passkey: "key"})
	_, err := s.Offers(context.Background())
	assert.ErrorIs(t, err, ErrNoCookies)
}

func TestLatestFetchesFeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/torrentrss.php", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("passkey"))
		assert.Equal(t, "1", r.URL.Query().Get("cat15"))
		w.Write([]byte(feedFixture))
	}))
	defer srv.Close()

	s := NewScraper(Config{BaseURL: srv.URL, Passkey: "secret"})
	torrents, err := s.Latest(context.Background())

	require.NoError(t, err)
	assert.Len(t, torrents, 2)
}

func TestOffersSendCookies(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offers.php", r.URL.Path)
		assert.Equal(t, "nexusphp_u2=abc", r.Header.Get("Cookie"))
		w.Write([]byte(offersFixture))
	}))
	defer srv.Close()

	s := NewScraper(Config{BaseURL: srv.URL, Cookies: "nexusphp_u2=abc"})
	offers, err := s.Offers(context.Background())

	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestSplitCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "size with unit", input: "12.5GiB", expected: "12.5 GiB"},
		{name: "no match passes through", input: "free leech", expected: "free leech"},
		{name: "trims whitespace", input: "  4.0MiB ", expected: "4.0 MiB"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, splitCell(sizeCellRe, tt.input))
		})
	}
}
