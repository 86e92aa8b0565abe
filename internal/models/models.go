// Package models contains the data models and DTOs for the VTuber API service.
package models

// Platform identifies an upstream streaming platform.
type Platform string

// Platform constants define the supported upstream platforms.
const (
	PlatformYouTube     Platform = "youtube"
	PlatformBiliBili    Platform = "bilibili"
	PlatformTwitch      Platform = "twitch"
	PlatformTwitcasting Platform = "twitcasting"
	PlatformMildom      Platform = "mildom"
)

// AllPlatforms returns every supported platform, in canonical order.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformYouTube,
		PlatformBiliBili,
		PlatformTwitch,
		PlatformTwitcasting,
		PlatformMildom,
	}
}

func (p Platform) String() string {
	return string(p)
}

// IsValid reports whether p is a known platform.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformYouTube, PlatformBiliBili, PlatformTwitch, PlatformTwitcasting, PlatformMildom:
		return true
	default:
		return false
	}
}

// UsesFollowerCount reports whether the platform tracks followers
// rather than subscribers as its primary audience metric.
func (p Platform) UsesFollowerCount() bool {
	switch p {
	case PlatformTwitch, PlatformTwitcasting, PlatformMildom:
		return true
	default:
		return false
	}
}

// LiveStatus represents the lifecycle state of a stream record.
type LiveStatus string

// LiveStatus constants define the possible stream states. StatusVideo
// marks uploaded VODs that were never live.
const (
	StatusLive     LiveStatus = "live"
	StatusUpcoming LiveStatus = "upcoming"
	StatusPast     LiveStatus = "past"
	StatusVideo    LiveStatus = "video"
)

func (s LiveStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status.
func (s LiveStatus) IsValid() bool {
	switch s {
	case StatusLive, StatusUpcoming, StatusPast, StatusVideo:
		return true
	default:
		return false
	}
}

// TimeData holds the time window of a stream record. Which fields are
// populated depends on status: upcoming entries carry only
// ScheduledStartTime, past entries always carry EndTime.
type TimeData struct {
	ScheduledStartTime *int64  `bson:"scheduledStartTime,omitempty" json:"scheduledStartTime"`
	StartTime          *int64  `bson:"startTime,omitempty" json:"startTime"`
	EndTime            *int64  `bson:"endTime,omitempty" json:"endTime"`
	LateTime           *int64  `bson:"lateTime,omitempty" json:"lateBy"`
	Duration           *int64  `bson:"duration,omitempty" json:"duration"`
	PublishedAt        *string `bson:"publishedAt,omitempty" json:"publishedAt"`
}

// Video is a stream/video document as written by the ingestion
// process. This layer never mutates it.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	ID             string     `bson:"id" json:"id"`
	RoomID         *string    `bson:"room_id,omitempty" json:"room_id,omitempty"` // BiliBili specific
	Title          string     `bson:"title" json:"title"`
	Status         LiveStatus `bson:"status" json:"status"`
	TimeData       TimeData   `bson:"timedata" json:"timedata"`
	Viewers        *int64     `bson:"viewers,omitempty" json:"viewers"`
	PeakViewers    *int64     `bson:"peakViewers,omitempty" json:"peakViewers"`
	AverageViewers *int64     `bson:"averageViewers,omitempty" json:"averageViewers"`
	ChannelUUID    *string    `bson:"channel_uuid,omitempty" json:"channel_uuid,omitempty"` // Twitch specific
	ChannelID      string     `bson:"channel_id" json:"channel_id"`
	Thumbnail      string     `bson:"thumbnail" json:"thumbnail"`
	Group          string     `bson:"group" json:"group"`
	Platform       Platform   `bson:"platform" json:"platform"`
	IsMissing      *bool      `bson:"is_missing,omitempty" json:"is_missing"`
	IsPremiere     *bool      `bson:"is_premiere,omitempty" json:"is_premiere"`
	IsMember       *bool      `bson:"is_member,omitempty" json:"is_member"`
}

// Channel is a channel/account document. Exactly one of
// SubscriberCount/FollowerCount is the primary audience metric,
// depending on platform.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Channel struct {
	ID              string   `bson:"id" json:"id"`
	RoomID          *string  `bson:"room_id,omitempty" json:"room_id,omitempty"` // BiliBili specific
	UserID          *string  `bson:"user_id,omitempty" json:"user_id,omitempty"` // Twitch specific
	Name            string   `bson:"name" json:"name"`
	EnName          *string  `bson:"en_name,omitempty" json:"en_name"`
	Description     *string  `bson:"description,omitempty" json:"description"`
	PublishedAt     *string  `bson:"publishedAt,omitempty" json:"publishedAt"`
	SubscriberCount *int64   `bson:"subscriberCount,omitempty" json:"subscriberCount"`
	ViewCount       *int64   `bson:"viewCount,omitempty" json:"viewCount"`
	VideoCount      *int64   `bson:"videoCount,omitempty" json:"videoCount"`
	FollowerCount   *int64   `bson:"followerCount,omitempty" json:"followerCount"` // Twitcasting/Mildom specific
	Level           *int64   `bson:"level,omitempty" json:"level"`                 // Mildom/Twitcasting specific
	Thumbnail       string   `bson:"thumbnail" json:"thumbnail"`
	Group           string   `bson:"group" json:"group"`
	Platform        Platform `bson:"platform" json:"platform"`
	IsLive          *bool    `bson:"is_live,omitempty" json:"is_live"`
	IsRetired       *bool    `bson:"is_retired,omitempty" json:"is_retired"`
}

// HistoryPoint is one timestamped snapshot of a channel's statistics.
// The history sequence is append-only and owned by the ingestion
// process.
type HistoryPoint struct {
	Timestamp       int64  `bson:"timestamp" json:"timestamp"`
	SubscriberCount *int64 `bson:"subscriberCount,omitempty" json:"subscriberCount,omitempty"`
	ViewCount       *int64 `bson:"viewCount,omitempty" json:"viewCount,omitempty"`
	VideoCount      *int64 `bson:"videoCount,omitempty" json:"videoCount,omitempty"`
	Level           *int64 `bson:"level,omitempty" json:"level,omitempty"`
	FollowerCount   *int64 `bson:"followerCount,omitempty" json:"followerCount,omitempty"`
}

// ChannelStats is a channel statistics history document.
type ChannelStats struct {
	ID       string         `bson:"id" json:"id"`
	History  []HistoryPoint `bson:"history" json:"history"`
	Group    string         `bson:"group" json:"group"`
	Platform Platform       `bson:"platform" json:"platform"`
}
