package repository

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/models"
)

// ChannelQuery narrows a channel page fetch. Zero values mean "no
// restriction" for that dimension.
type ChannelQuery struct {
	Platforms  []models.Platform
	ChannelIDs []string
	Groups     []string
}

// ChannelRepository reads channel documents.
type ChannelRepository struct {
	coll *mongo.Collection
}

// NewChannelRepository creates a channel repository over db.
func NewChannelRepository(database *mongo.Database) *ChannelRepository {
	return &ChannelRepository{coll: database.Collection(channelsCollection)}
}

func (q ChannelQuery) buildFilter() bson.M {
	filter := bson.M{}
	if len(q.Platforms) > 0 {
		filter["platform"] = bson.M{"$in": platformStrings(q.Platforms)}
	}
	if len(q.ChannelIDs) > 0 {
		filter["id"] = bson.M{"$in": q.ChannelIDs}
	}
	if len(q.Groups) > 0 {
		filter["group"] = bson.M{"$in": q.Groups}
	}
	return filter
}

// GetChannels fetches one page of channel documents matching query.
// pageOpts.SortBy is a schema-level key; unknown keys sort by name.
func (r *ChannelRepository) GetChannels(ctx context.Context, query ChannelQuery, pageOpts db.PaginateOptions) (db.PaginateResult[models.Channel], error) {
	pageOpts.SortBy = db.RemapChannelSortKey(pageOpts.SortBy, "name")
	return db.FindPaginated[models.Channel](ctx, r.coll, query.buildFilter(), pageOpts)
}

// InsertChannel writes a new channel document. Used by the admin
// mutation to register a channel before the scraper first sees it.
func (r *ChannelRepository) InsertChannel(ctx context.Context, doc models.Channel) error {
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

// GetGroups returns every distinct channel group, sorted.
func (r *ChannelRepository) GetGroups(ctx context.Context) ([]string, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$project", Value: bson.M{"group": 1}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	seen := make(map[string]struct{})
	for cur.Next(ctx) {
		var doc struct {
			Group string `bson:"group"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.Group == "" {
			continue
		}
		seen[doc.Group] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups, nil
}
