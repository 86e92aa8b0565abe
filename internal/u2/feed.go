package u2

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

type rssEnclosure struct {
	URL string `xml:"url,attr"`
}

type rssItem struct {
	Title      string       `xml:"title"`
	Link       string       `xml:"link"`
	Author     string       `xml:"author"`
	Categories []string     `xml:"category"`
	PubDate    string       `xml:"pubDate"`
	Enclosure  rssEnclosure `xml:"enclosure"`
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// parseFeed maps RSS items to torrents, oldest first. Feed titles
// carry category, size and uploader in bracketed segments.
func parseFeed(body []byte) ([]Torrent, error) {
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	torrents := []Torrent{}
	for _, item := range feed.Channel.Items {
		torrent := Torrent{
			Title:         item.Title,
			OriginalTitle: item.Title,
			Link:          item.Link,
			DownloadLink:  item.Enclosure.URL,
			Author:        feedAuthor(item.Author),
		}
		if groups := rssTitleRe.FindStringSubmatch(item.Title); groups != nil {
			torrent.Title = groups[2]
			torrent.Size = groups[3]
		}
		if len(item.Categories) > 0 {
			torrent.Category = item.Categories[0]
		}
		if published, err := parsePubDate(item.PubDate); err == nil {
			torrent.PublishedAt = published.In(jakartaZone).Format("Mon, 02 Jan 2006 15:04:05 -07:00")
			torrent.PubSort = published.Unix()
		}
		torrents = append(torrents, torrent)
	}
	sortByPublished(torrents)
	return torrents, nil
}

func feedAuthor(author string) string {
	name := strings.TrimSpace(author)
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	return fmt.Sprintf("%s@u2.dmhy.org (%s)", name, name)
}

func parsePubDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range pubDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
