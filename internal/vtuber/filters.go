package vtuber

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/models"
)

// In-memory lookback bounds, in hours, for ended streams on the REST
// collection endpoints.
const (
	restDefaultLookbackHours = 6
	restMinLookbackHours     = 1
	restMaxLookbackHours     = 24
)

// LiveFilter narrows an already-fetched stream list. Empty slices
// mean no restriction on that dimension.
type LiveFilter struct {
	// Groups are logical names; they are expanded before matching.
	Groups     []string
	ChannelIDs []string
	Statuses   []models.LiveStatus
	// LookbackHours bounds endTime age for ended streams. 0 means the
	// default window.
	LookbackHours int
}

// ParseListParam splits a comma-separated, possibly URL-encoded query
// value into its non-empty elements.
func ParseListParam(raw string) []string {
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FilterLives applies group, channel, status and lookback restrictions
// to a stream list. Group membership is only enforced on records that
// carry a group tag. Always returns a non-nil slice.
func FilterLives(items []models.LiveObject, f LiveFilter) []models.LiveObject {
	return filterLivesAt(items, f, time.Now().UTC())
}

func filterLivesAt(items []models.LiveObject, f LiveFilter, now time.Time) []models.LiveObject {
	allowedGroups := toSet(ExpandGroups(f.Groups))
	allowedChannels := toSet(f.ChannelIDs)
	allowedStatuses := make(map[models.LiveStatus]struct{}, len(f.Statuses))
	for _, s := range f.Statuses {
		allowedStatuses[s] = struct{}{}
	}

	lookback := f.LookbackHours
	if lookback == 0 {
		lookback = restDefaultLookbackHours
	}
	if lookback < restMinLookbackHours {
		lookback = restMinLookbackHours
	}
	if lookback > restMaxLookbackHours {
		lookback = restMaxLookbackHours
	}
	cutoff := now.Add(-time.Duration(lookback) * time.Hour).Unix()

	out := make([]models.LiveObject, 0, len(items))
	for _, item := range items {
		if len(allowedStatuses) > 0 {
			if _, ok := allowedStatuses[item.Status]; !ok {
				continue
			}
		}
		if len(allowedGroups) > 0 && item.Group != "" {
			if _, ok := allowedGroups[item.Group]; !ok {
				continue
			}
		}
		if len(allowedChannels) > 0 {
			if _, ok := allowedChannels[item.ChannelID]; !ok {
				continue
			}
		}
		if item.Status == models.StatusPast && item.TimeData.EndTime != nil && *item.TimeData.EndTime < cutoff {
			continue
		}
		out = append(out, item)
	}
	return out
}

// SortLives orders a stream list by one of its time or viewer fields.
// Unknown keys fall back to start time. Records missing the sort field
// sort first.
func SortLives(items []models.LiveObject, sortBy string, order db.SortOrder) []models.LiveObject {
	key := liveSortValue(sortBy)
	sorted := make([]models.LiveObject, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		less := key(sorted[i]) < key(sorted[j])
		if order.Direction() < 0 {
			return !less && key(sorted[i]) != key(sorted[j])
		}
		return less
	})
	return sorted
}

func liveSortValue(sortBy string) func(models.LiveObject) int64 {
	deref := func(v *int64) int64 {
		if v == nil {
			return 0
		}
		return *v
	}
	switch sortBy {
	case "endTime":
		return func(o models.LiveObject) int64 { return deref(o.TimeData.EndTime) }
	case "scheduledStartTime":
		return func(o models.LiveObject) int64 { return deref(o.TimeData.ScheduledStartTime) }
	case "viewers":
		return func(o models.LiveObject) int64 { return deref(o.Viewers) }
	case "peakViewers":
		return func(o models.LiveObject) int64 { return deref(o.PeakViewers) }
	default:
		return func(o models.LiveObject) int64 { return deref(o.TimeData.StartTime) }
	}
}

// SortChannels orders a channel list by name, published date or a
// statistics field. Unknown keys fall back to name ordering.
func SortChannels(items []models.ChannelObject, sortBy string, order db.SortOrder) []models.ChannelObject {
	sorted := make([]models.ChannelObject, len(items))
	copy(sorted, items)
	less := channelLess(sortBy)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order.Direction() < 0 {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}

func channelLess(sortBy string) func(a, b models.ChannelObject) bool {
	deref := func(v *int64) int64 {
		if v == nil {
			return 0
		}
		return *v
	}
	switch sortBy {
	case "subscriberCount", "statistics.subscriberCount":
		return func(a, b models.ChannelObject) bool {
			return a.Statistics.SubscriberCount < b.Statistics.SubscriberCount
		}
	case "viewCount", "statistics.viewCount":
		return func(a, b models.ChannelObject) bool {
			return deref(a.Statistics.ViewCount) < deref(b.Statistics.ViewCount)
		}
	case "videoCount", "statistics.videoCount":
		return func(a, b models.ChannelObject) bool {
			return deref(a.Statistics.VideoCount) < deref(b.Statistics.VideoCount)
		}
	case "publishedAt":
		return func(a, b models.ChannelObject) bool {
			return derefString(a.PublishedAt) < derefString(b.PublishedAt)
		}
	default:
		return func(a, b models.ChannelObject) bool { return a.Name < b.Name }
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// ProjectFields builds field-whitelisted copies of items. Each output
// record contains only the requested fields; an empty whitelist keeps
// every field. The input is never mutated.
func ProjectFields[T any](items []T, fields []string) []map[string]interface{} {
	keep := toSet(fields)
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var full map[string]interface{}
		if err := json.Unmarshal(raw, &full); err != nil {
			continue
		}
		if len(keep) == 0 {
			out = append(out, full)
			continue
		}
		projected := make(map[string]interface{}, len(keep))
		for k, v := range full {
			if _, ok := keep[k]; ok {
				projected[k] = v
			}
		}
		out = append(out, projected)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
