package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/models"
)

// Lookback bounds, in hours, for the ended-stream window.
const (
	DefaultLookbackHours = 24
	MinLookbackHours     = 1
	MaxLookbackHours     = 24
)

// VideoQuery narrows a video page fetch. Zero values mean "no
// restriction" for that dimension.
type VideoQuery struct {
	Platforms []models.Platform
	Statuses  []models.LiveStatus
	// ChannelIDs and Groups are $in allow-lists.
	ChannelIDs []string
	Groups     []string
	// LookbackHours bounds how far back an ended stream's endTime may
	// be. Only applied when Statuses includes past. Clamped to
	// [MinLookbackHours, MaxLookbackHours]; 0 means DefaultLookbackHours.
	LookbackHours int
	// MaxScheduledTime drops upcoming streams scheduled after this
	// unix timestamp. 0 disables the bound.
	MaxScheduledTime int64
}

// VideoRepository reads stream documents.
type VideoRepository struct {
	coll *mongo.Collection
}

// NewVideoRepository creates a video repository over db.
func NewVideoRepository(database *mongo.Database) *VideoRepository {
	return &VideoRepository{coll: database.Collection(videosCollection)}
}

// clampLookback coerces an hour count into the accepted window.
func clampLookback(hours int) int {
	if hours == 0 {
		return DefaultLookbackHours
	}
	if hours < MinLookbackHours {
		return MinLookbackHours
	}
	if hours > MaxLookbackHours {
		return MaxLookbackHours
	}
	return hours
}

// buildFilter translates a VideoQuery into a Mongo filter document.
func (q VideoQuery) buildFilter(now time.Time) bson.M {
	filter := bson.M{}
	if len(q.Platforms) > 0 {
		filter["platform"] = bson.M{"$in": platformStrings(q.Platforms)}
	}
	switch len(q.Statuses) {
	case 0:
	case 1:
		filter["status"] = bson.M{"$eq": string(q.Statuses[0])}
	default:
		statuses := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			statuses = append(statuses, string(s))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if len(q.ChannelIDs) > 0 {
		filter["channel_id"] = bson.M{"$in": q.ChannelIDs}
	}
	if len(q.Groups) > 0 {
		filter["group"] = bson.M{"$in": q.Groups}
	}
	if hasStatus(q.Statuses, models.StatusPast) {
		cutoff := now.Add(-time.Duration(clampLookback(q.LookbackHours)) * time.Hour).Unix()
		// Ended streams missing their endTime are kept rather than
		// silently aged out.
		filter["$or"] = bson.A{
			bson.M{"timedata.endTime": bson.M{"$gte": cutoff}},
			bson.M{"timedata.endTime": nil},
		}
	}
	if q.MaxScheduledTime > 0 {
		filter["timedata.scheduledStartTime"] = bson.M{"$lte": q.MaxScheduledTime}
	}
	return filter
}

// GetVideos fetches one page of stream documents matching query.
// pageOpts.SortBy is a schema-level key and is remapped to its
// document path; unknown keys sort by start time.
func (r *VideoRepository) GetVideos(ctx context.Context, query VideoQuery, pageOpts db.PaginateOptions) (db.PaginateResult[models.Video], error) {
	pageOpts.SortBy = db.RemapVideoSortKey(pageOpts.SortBy, "timedata.startTime")
	return db.FindPaginated[models.Video](ctx, r.coll, query.buildFilter(time.Now().UTC()), pageOpts)
}

func platformStrings(platforms []models.Platform) []string {
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, string(p))
	}
	return out
}

func hasStatus(statuses []models.LiveStatus, want models.LiveStatus) bool {
	for _, s := range statuses {
		if s == want {
			return true
		}
	}
	return false
}
