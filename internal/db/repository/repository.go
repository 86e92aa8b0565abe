// Package repository provides MongoDB read operations for the VTuber API.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names used by the scraper that feeds this database.
const (
	videosCollection   = "videosdatas"
	channelsCollection = "channelsdatas"
	statsCollection    = "channelstatshistdatas"
)

// Repositories bundles every repository over one database handle.
type Repositories struct {
	Videos   *VideoRepository
	Channels *ChannelRepository
	Stats    *StatsRepository

	db *mongo.Database
}

// New creates the repository set for the provided database.
func New(db *mongo.Database) *Repositories {
	return &Repositories{
		Videos:   NewVideoRepository(db),
		Channels: NewChannelRepository(db),
		Stats:    NewStatsRepository(db),
		db:       db,
	}
}

// Ping checks the database connection health.
func (r *Repositories) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}
