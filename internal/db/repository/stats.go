package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ihateani-me/ihaapi-go/internal/models"
)

// ErrNoHistory means no statistics document exists for the channel.
var ErrNoHistory = errors.New("no history for channel")

// StatsRepository reads channel statistics history documents.
type StatsRepository struct {
	coll *mongo.Collection
}

// NewStatsRepository creates a stats repository over db.
func NewStatsRepository(database *mongo.Database) *StatsRepository {
	return &StatsRepository{coll: database.Collection(statsCollection)}
}

// GetChannelHistory loads the recorded metric history for one channel
// on one platform. Returns ErrNoHistory when no document exists.
func (r *StatsRepository) GetChannelHistory(ctx context.Context, id string, platform models.Platform) (*models.ChannelStats, error) {
	filter := bson.M{"id": id, "platform": string(platform)}
	opts := options.FindOne().SetProjection(bson.M{"id": 1, "platform": 1, "history": 1})

	var stats models.ChannelStats
	err := r.coll.FindOne(ctx, filter, opts).Decode(&stats)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoHistory
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
