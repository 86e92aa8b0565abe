package vtuber

import "github.com/ihateani-me/ihaapi-go/internal/models"

// MapLive converts a stream document into its public response shape.
// Duration falls back to endTime-startTime when the scraper never
// recorded one.
func MapLive(doc models.Video) models.LiveObject {
	return models.LiveObject{
		ID:             doc.ID,
		RoomID:         doc.RoomID,
		Title:          doc.Title,
		Status:         doc.Status,
		TimeData:       mapTimeData(doc.TimeData),
		ChannelID:      doc.ChannelID,
		Viewers:        doc.Viewers,
		PeakViewers:    doc.PeakViewers,
		AverageViewers: doc.AverageViewers,
		Thumbnail:      doc.Thumbnail,
		Group:          doc.Group,
		Platform:       doc.Platform,
		IsMissing:      doc.IsMissing,
		IsPremiere:     doc.IsPremiere,
		IsMember:       doc.IsMember,
	}
}

func mapTimeData(td models.TimeData) models.LiveTimeData {
	duration := td.Duration
	if duration == nil && td.StartTime != nil && td.EndTime != nil {
		d := *td.EndTime - *td.StartTime
		duration = &d
	}
	return models.LiveTimeData{
		ScheduledStartTime: td.ScheduledStartTime,
		StartTime:          td.StartTime,
		EndTime:            td.EndTime,
		Duration:           duration,
		PublishedAt:        td.PublishedAt,
		LateBy:             td.LateTime,
	}
}

// MapChannel converts a channel document into its public response
// shape. Platforms that track followers instead of subscribers get
// their follower count remapped into statistics.subscriberCount so
// every platform reports exactly one primary metric.
func MapChannel(doc models.Channel) models.ChannelObject {
	primary := int64(0)
	if doc.Platform.UsesFollowerCount() {
		if doc.FollowerCount != nil {
			primary = *doc.FollowerCount
		}
	} else if doc.SubscriberCount != nil {
		primary = *doc.SubscriberCount
	}
	return models.ChannelObject{
		ID:          doc.ID,
		RoomID:      doc.RoomID,
		UserID:      doc.UserID,
		Name:        doc.Name,
		EnName:      doc.EnName,
		Description: doc.Description,
		PublishedAt: doc.PublishedAt,
		Image:       doc.Thumbnail,
		Group:       doc.Group,
		Statistics: models.ChannelStatistics{
			SubscriberCount: primary,
			ViewCount:       doc.ViewCount,
			VideoCount:      doc.VideoCount,
			Level:           doc.Level,
		},
		IsLive:   doc.IsLive,
		Platform: doc.Platform,
	}
}

// MapLives converts a page of stream documents.
func MapLives(docs []models.Video) []models.LiveObject {
	out := make([]models.LiveObject, 0, len(docs))
	for _, d := range docs {
		out = append(out, MapLive(d))
	}
	return out
}

// MapChannels converts a page of channel documents.
func MapChannels(docs []models.Channel) []models.ChannelObject {
	out := make([]models.ChannelObject, 0, len(docs))
	for _, d := range docs {
		out = append(out, MapChannel(d))
	}
	return out
}
