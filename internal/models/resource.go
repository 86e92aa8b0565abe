package models

// LiveTimeData is the public time-window shape of a live entry.
type LiveTimeData struct {
	ScheduledStartTime *int64  `json:"scheduledStartTime"`
	StartTime          *int64  `json:"startTime"`
	EndTime            *int64  `json:"endTime"`
	Duration           *int64  `json:"duration"`
	PublishedAt        *string `json:"publishedAt"`
	LateBy             *int64  `json:"lateBy"`
}

// LiveObject is the public response shape of a stream record.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type LiveObject struct {
	ID             string       `json:"id"`
	RoomID         *string      `json:"room_id"`
	Title          string       `json:"title"`
	Status         LiveStatus   `json:"status"`
	TimeData       LiveTimeData `json:"timeData"`
	ChannelID      string       `json:"channel_id"`
	Viewers        *int64       `json:"viewers"`
	PeakViewers    *int64       `json:"peakViewers"`
	AverageViewers *int64       `json:"averageViewers"`
	Thumbnail      string       `json:"thumbnail"`
	Group          string       `json:"group"`
	Platform       Platform     `json:"platform"`
	IsMissing      *bool        `json:"is_missing"`
	IsPremiere     *bool        `json:"is_premiere"`
	IsMember       *bool        `json:"is_member"`
}

// ChannelStatistics is the unified statistics sub-record. For
// follower-based platforms the follower count is remapped into
// SubscriberCount.
type ChannelStatistics struct {
	SubscriberCount int64  `json:"subscriberCount"`
	ViewCount       *int64 `json:"viewCount"`
	VideoCount      *int64 `json:"videoCount"`
	Level           *int64 `json:"level"`
}

// ChannelObject is the public response shape of a channel record.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ChannelObject struct {
	ID          string            `json:"id"`
	RoomID      *string           `json:"room_id"`
	UserID      *string           `json:"user_id"`
	Name        string            `json:"name"`
	EnName      *string           `json:"en_name"`
	Description *string           `json:"description"`
	PublishedAt *string           `json:"publishedAt"`
	Image       string            `json:"image"`
	Group       string            `json:"group"`
	Statistics  ChannelStatistics `json:"statistics"`
	IsLive      *bool             `json:"is_live"`
	Platform    Platform          `json:"platform"`
}

// ChannelGrowth is the delta of one metric over the six fixed
// lookback windows.
type ChannelGrowth struct {
	OneDay      int64 `json:"oneDay"`
	OneWeek     int64 `json:"oneWeek"`
	TwoWeeks    int64 `json:"twoWeeks"`
	OneMonth    int64 `json:"oneMonth"`
	SixMonths   int64 `json:"sixMonths"`
	OneYear     int64 `json:"oneYear"`
	LastUpdated int64 `json:"lastUpdated"`
}

// ChannelGrowthSet groups the growth metrics a platform reports.
// ViewsGrowth is nil for follower-only platforms.
type ChannelGrowthSet struct {
	SubscribersGrowth *ChannelGrowth `json:"subscribersGrowth"`
	ViewsGrowth       *ChannelGrowth `json:"viewsGrowth"`
}

// HistoryData is one point of a downsampled history series.
type HistoryData struct {
	Time int64  `json:"time"`
	Data *int64 `json:"data"`
}

// ChannelHistorySet carries the per-metric daily history series over
// the last week.
type ChannelHistorySet struct {
	SubscribersCount []HistoryData `json:"subscribersCount"`
	ViewsCount       []HistoryData `json:"viewsCount"`
	VideosCount      []HistoryData `json:"videosCount"`
}

// PageInfo is the pagination metadata echoed with every collection
// response. NextCursor is non-nil iff HasNextPage.
type PageInfo struct {
	TotalResults   int     `json:"total_results"`
	ResultsPerPage int     `json:"results_per_page"`
	NextCursor     *string `json:"nextCursor"`
	HasNextPage    bool    `json:"hasNextPage"`
}

// LivesResource is the collection response for stream queries.
type LivesResource struct {
	Total    int          `json:"_total"`
	Items    []LiveObject `json:"items"`
	PageInfo PageInfo     `json:"pageInfo"`
}

// ChannelsResource is the collection response for channel queries.
type ChannelsResource struct {
	Total    int             `json:"_total"`
	Items    []ChannelObject `json:"items"`
	PageInfo PageInfo        `json:"pageInfo"`
}

// GroupsResource is the response for the group listing.
type GroupsResource struct {
	Items []string `json:"items"`
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
