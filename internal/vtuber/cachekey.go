package vtuber

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/models"
)

// CachePrefix heads every response-cache key so the whole namespace
// can be flushed with one pattern.
const CachePrefix = "vtapi-gqlcache"

// LiveKeyParams are the normalized arguments of a stream query that
// participate in its cache identity.
type LiveKeyParams struct {
	Groups     []string
	ChannelIDs []string
	Platforms  []models.Platform
	SortBy     string
	SortOrder  db.SortOrder
	Limit      int
	Cursor     string
	// MaxLookback is only meaningful for ended-stream queries.
	MaxLookback int
	// MaxScheduledTime is only meaningful for upcoming queries; nil
	// means no bound.
	MaxScheduledTime *int64
}

// ChannelKeyParams are the normalized arguments of a channel query
// that participate in its cache identity.
type ChannelKeyParams struct {
	Groups     []string
	ChannelIDs []string
	Platforms  []models.Platform
	SortBy     string
	SortOrder  db.SortOrder
	Limit      int
	Cursor     string
}

// platformToken maps a platform to its short cache-key token.
var platformToken = map[models.Platform]string{
	models.PlatformYouTube:     "yt",
	models.PlatformBiliBili:    "b2",
	models.PlatformTwitch:      "twch",
	models.PlatformTwitcasting: "twcast",
	models.PlatformMildom:      "mildom",
}

// LiveCacheKey derives the deterministic cache key for a stream query.
// Two queries with the same logical parameters always map to the same
// key; a differing cursor always yields a differing key.
func LiveCacheKey(status models.LiveStatus, p LiveKeyParams) string {
	var b strings.Builder
	b.WriteString(CachePrefix)
	b.WriteByte('-')
	b.WriteString(string(status))
	writeGroupSegment(&b, p.Groups)
	writeChannelSegment(&b, p.ChannelIDs)
	writePlatformSegment(&b, p.Platforms)
	writeSortSegment(&b, p.SortBy, p.SortOrder, p.Limit)
	if status == models.StatusUpcoming {
		if p.MaxScheduledTime != nil {
			fmt.Fprintf(&b, "-lf_%d", *p.MaxScheduledTime)
		} else {
			b.WriteString("-lf_nomax")
		}
	}
	if status == models.StatusPast {
		fmt.Fprintf(&b, "-lb_%d", p.MaxLookback)
	}
	writeCursorSegment(&b, p.Cursor)
	return b.String()
}

// ChannelsCacheKey derives the deterministic cache key for a channel
// listing query.
func ChannelsCacheKey(p ChannelKeyParams) string {
	var b strings.Builder
	b.WriteString(CachePrefix)
	b.WriteString("-channels")
	writeGroupSegment(&b, p.Groups)
	writeChannelSegment(&b, p.ChannelIDs)
	writePlatformSegment(&b, p.Platforms)
	writeSortSegment(&b, p.SortBy, p.SortOrder, p.Limit)
	writeCursorSegment(&b, p.Cursor)
	return b.String()
}

// SingleChannelCacheKey derives the cache key for a one-channel
// lookup, keyed by platform and channel id alone.
func SingleChannelCacheKey(platform models.Platform, channelID string) string {
	return fmt.Sprintf("%s-singlech-platforms_%s-ch_%s", CachePrefix, platform, channelID)
}

// GrowthCacheKey derives the cache key for a channel growth lookup.
func GrowthCacheKey(platform models.Platform, channelID string) string {
	return fmt.Sprintf("%s-growth-platforms_%s-ch_%s", CachePrefix, platform, channelID)
}

// HistoryCacheKey derives the cache key for a channel history lookup.
func HistoryCacheKey(platform models.Platform, channelID string) string {
	return fmt.Sprintf("%s-history-platforms_%s-ch_%s", CachePrefix, platform, channelID)
}

// GroupsCacheKey is the cache key for the distinct group listing.
func GroupsCacheKey() string {
	return CachePrefix + "-groups"
}

func writeGroupSegment(b *strings.Builder, groups []string) {
	if len(groups) == 0 {
		b.WriteString("-nogroups")
		return
	}
	b.WriteString("-groups_")
	b.WriteString(strings.Join(sortedCopy(groups), "_"))
}

func writeChannelSegment(b *strings.Builder, channels []string) {
	if len(channels) == 0 {
		b.WriteString("-nospecifics")
		return
	}
	b.WriteString("-channels_")
	b.WriteString(strings.Join(sortedCopy(channels), "_"))
}

// sortedCopy keeps list segments order-insensitive so permuted but
// equivalent queries share one cache entry.
func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

func writePlatformSegment(b *strings.Builder, platforms []models.Platform) {
	if len(platforms) == 0 {
		b.WriteString("-noplatforms")
		return
	}
	present := make(map[models.Platform]bool, len(platforms))
	for _, p := range platforms {
		present[p] = true
	}
	all := true
	for _, p := range models.AllPlatforms() {
		if !present[p] {
			all = false
			break
		}
	}
	if all {
		b.WriteString("-allplatforms")
		return
	}
	b.WriteString("-platforms")
	// Canonical order keeps the key independent of argument order.
	for _, p := range models.AllPlatforms() {
		if present[p] {
			b.WriteByte('_')
			b.WriteString(platformToken[p])
		}
	}
}

func writeSortSegment(b *strings.Builder, sortBy string, order db.SortOrder, limit int) {
	normalized := strings.ToLower(string(order))
	switch normalized {
	case "asc", "ascending", "desc", "descending":
	default:
		normalized = "asc"
	}
	fmt.Fprintf(b, "-sort_%s-ord_%s-l%d", sortBy, normalized, limit)
}

func writeCursorSegment(b *strings.Builder, cursor string) {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		cursor = "nocursor"
	}
	b.WriteString("-cur_")
	b.WriteString(cursor)
}
