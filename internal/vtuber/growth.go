package vtuber

import (
	"sort"
	"time"

	"github.com/ihateani-me/ihaapi-go/internal/models"
)

// Growth lookback windows, in days.
var growthWindows = []int{1, 7, 14, 30, 183, 365}

const day = 24 * time.Hour

// metricOf extracts one metric from a history point. Returns nil when
// the snapshot never recorded that metric.
type metricOf func(models.HistoryPoint) *int64

func subscriberMetric(p models.HistoryPoint) *int64 { return p.SubscriberCount }
func followerMetric(p models.HistoryPoint) *int64   { return p.FollowerCount }
func viewMetric(p models.HistoryPoint) *int64       { return p.ViewCount }
func videoMetric(p models.HistoryPoint) *int64      { return p.VideoCount }

// ComputeGrowth derives per-window growth deltas from a channel's
// metric history. Each window keeps points no older than its span,
// sorted ascending; the delta is last minus first. A window with no
// points, or with points missing the metric, contributes a zero delta.
//
// Returns nil when the history is empty, when every window is empty,
// or for platforms without meaningful growth data (bilibili).
// Subscriber-style growth comes from followerCount on platforms that
// track followers instead of subscribers; twitcasting additionally has
// no view series.
func ComputeGrowth(platform models.Platform, history []models.HistoryPoint) *models.ChannelGrowthSet {
	return computeGrowthAt(platform, history, time.Now().UTC())
}

func computeGrowthAt(platform models.Platform, history []models.HistoryPoint, now time.Time) *models.ChannelGrowthSet {
	if len(history) == 0 || platform == models.PlatformBiliBili {
		return nil
	}

	sorted := make([]models.HistoryPoint, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	windows := make([][]models.HistoryPoint, 0, len(growthWindows))
	anyPoints := false
	for _, days := range growthWindows {
		cutoff := now.Add(-time.Duration(days) * day).Unix()
		idx := sort.Search(len(sorted), func(i int) bool { return sorted[i].Timestamp >= cutoff })
		window := sorted[idx:]
		if len(window) > 0 {
			anyPoints = true
		}
		windows = append(windows, window)
	}
	if !anyPoints {
		return nil
	}

	subsMetric := subscriberMetric
	if platform.UsesFollowerCount() {
		subsMetric = followerMetric
	}

	set := &models.ChannelGrowthSet{
		SubscribersGrowth: growthFromWindows(windows, subsMetric),
	}
	if platform != models.PlatformTwitcasting {
		set.ViewsGrowth = growthFromWindows(windows, viewMetric)
	}
	return set
}

func growthFromWindows(windows [][]models.HistoryPoint, metric metricOf) *models.ChannelGrowth {
	deltas := make([]int64, len(windows))
	for i, window := range windows {
		deltas[i] = windowDelta(window, metric)
	}
	growth := &models.ChannelGrowth{
		OneDay:      deltas[0],
		OneWeek:     deltas[1],
		TwoWeeks:    deltas[2],
		OneMonth:    deltas[3],
		SixMonths:   deltas[4],
		OneYear:     deltas[5],
		LastUpdated: -1,
	}
	if oneDay := windows[0]; len(oneDay) > 0 {
		growth.LastUpdated = oneDay[len(oneDay)-1].Timestamp
	}
	return growth
}

func windowDelta(window []models.HistoryPoint, metric metricOf) int64 {
	if len(window) == 0 {
		return 0
	}
	first := metric(window[0])
	last := metric(window[len(window)-1])
	if first == nil || last == nil {
		return 0
	}
	return *last - *first
}

// ComputeHistory downsamples a channel's metric history to one point
// per UTC day over the last week. Per-metric series follow the same
// platform rules as growth: follower-tracking platforms report
// followers as the subscriber series, twitcasting has no view series,
// and only youtube and bilibili record video counts.
func ComputeHistory(platform models.Platform, history []models.HistoryPoint) *models.ChannelHistorySet {
	return computeHistoryAt(platform, history, time.Now().UTC())
}

func computeHistoryAt(platform models.Platform, history []models.HistoryPoint, now time.Time) *models.ChannelHistorySet {
	if len(history) == 0 {
		return nil
	}

	cutoff := now.Add(-7 * day).Unix()
	recent := make([]models.HistoryPoint, 0, len(history))
	for _, p := range history {
		if p.Timestamp >= cutoff {
			recent = append(recent, p)
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].Timestamp < recent[j].Timestamp })

	subsMetric := subscriberMetric
	if platform != models.PlatformYouTube {
		subsMetric = followerMetric
	}

	set := &models.ChannelHistorySet{
		SubscribersCount: dailySeries(recent, subsMetric),
	}
	if platform != models.PlatformTwitcasting {
		set.ViewsCount = dailySeries(recent, viewMetric)
	}
	if platform == models.PlatformYouTube || platform == models.PlatformBiliBili {
		set.VideosCount = dailySeries(recent, videoMetric)
	}
	return set
}

// dailySeries keeps the last point of each UTC day, in day order.
func dailySeries(points []models.HistoryPoint, metric metricOf) []models.HistoryData {
	series := make([]models.HistoryData, 0, len(points))
	index := make(map[string]int)
	for _, p := range points {
		key := time.Unix(p.Timestamp, 0).UTC().Format("01/02")
		point := models.HistoryData{Time: p.Timestamp, Data: metric(p)}
		if i, ok := index[key]; ok {
			series[i] = point
			continue
		}
		index[key] = len(series)
		series = append(series, point)
	}
	return series
}
