package vtuber

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/db/repository"
	"github.com/ihateani-me/ihaapi-go/internal/models"
	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

// Limit bounds for every paginated resource.
const (
	DefaultLimit = 25
	MaxLimit     = 75
)

// Per-resource cache TTLs. Live data churns fast, channel and video
// listings barely move between scraper runs.
const (
	TTLLive     = 20 * time.Second
	TTLEnded    = 300 * time.Second
	TTLGroups   = 300 * time.Second
	TTLVideos   = 1800 * time.Second
	TTLChannels = 1800 * time.Second
	TTLGrowth   = 1800 * time.Second
	TTLSingle   = 1800 * time.Second
)

// VideoStore is the video repository surface the service needs.
type VideoStore interface {
	GetVideos(ctx context.Context, query repository.VideoQuery, pageOpts db.PaginateOptions) (db.PaginateResult[models.Video], error)
}

// ChannelStore is the channel repository surface the service needs.
type ChannelStore interface {
	GetChannels(ctx context.Context, query repository.ChannelQuery, pageOpts db.PaginateOptions) (db.PaginateResult[models.Channel], error)
	GetGroups(ctx context.Context) ([]string, error)
	InsertChannel(ctx context.Context, doc models.Channel) error
}

// StatsStore is the statistics repository surface the service needs.
type StatsStore interface {
	GetChannelHistory(ctx context.Context, id string, platform models.Platform) (*models.ChannelStats, error)
}

// ResponseCache is the cache surface the service needs.
type ResponseCache interface {
	GetWithTTL(ctx context.Context, key string, dest interface{}) (bool, time.Duration, error)
	SetEX(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, pattern string) (int64, error)
}

// Service answers every VTuber read query: normalize arguments, check
// the response cache, fall through to MongoDB, map documents to their
// public shape and refill the cache.
//
// Repository and cache failures never escape: a failed store query
// degrades to an empty result and a failed cache operation to a miss,
// both logged. The HTTP surface stays 200 for the whole read path.
type Service struct {
	videos   VideoStore
	channels ChannelStore
	stats    StatsStore
	cache    ResponseCache
	log      *zap.Logger
}

// NewService wires the read-query service.
func NewService(videos VideoStore, channels ChannelStore, stats StatsStore, cache ResponseCache) *Service {
	return &Service{
		videos:   videos,
		channels: channels,
		stats:    stats,
		cache:    cache,
		log:      logger.Named("vtuber.service"),
	}
}

// LiveParams are the arguments of a stream query. Zero values take
// resource-specific defaults during normalization.
type LiveParams struct {
	Groups     []string
	ChannelIDs []string
	Platforms  []models.Platform
	SortBy     string
	SortOrder  db.SortOrder
	Limit      int
	Cursor     string
	// MaxLookback, in hours, bounds ended-stream age.
	MaxLookback int
	// MaxScheduledTime bounds upcoming streams; nil means unbounded.
	MaxScheduledTime *int64
	// NoCache bypasses the response cache in both directions.
	NoCache bool
}

// ChannelParams are the arguments of a channel listing query.
type ChannelParams struct {
	Groups     []string
	ChannelIDs []string
	Platforms  []models.Platform
	SortBy     string
	SortOrder  db.SortOrder
	Limit      int
	Cursor     string
	NoCache    bool
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit >= MaxLimit {
		return MaxLimit
	}
	return limit
}

func normalizePlatforms(platforms []models.Platform) []models.Platform {
	valid := make([]models.Platform, 0, len(platforms))
	for _, p := range platforms {
		if p.IsValid() {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return models.AllPlatforms()
	}
	return valid
}

func normalizeOrder(order db.SortOrder) db.SortOrder {
	switch db.SortOrder(strings.ToLower(string(order))) {
	case db.SortAsc, db.SortAscending, db.SortDesc, db.SortDescending:
		return db.SortOrder(strings.ToLower(string(order)))
	default:
		return db.SortAsc
	}
}

func defaultLiveSort(status models.LiveStatus) string {
	switch status {
	case models.StatusPast:
		return "timeData.endTime"
	case models.StatusVideo:
		return "timeData.publishedAt"
	default:
		return "timeData.startTime"
	}
}

func (p LiveParams) normalized(status models.LiveStatus) LiveParams {
	p.Limit = normalizeLimit(p.Limit)
	p.Platforms = normalizePlatforms(p.Platforms)
	p.SortOrder = normalizeOrder(p.SortOrder)
	if p.SortBy == "" {
		p.SortBy = defaultLiveSort(status)
	}
	if status == models.StatusPast && p.MaxLookback == 0 {
		p.MaxLookback = repository.DefaultLookbackHours
	}
	return p
}

func (p ChannelParams) normalized() ChannelParams {
	p.Limit = normalizeLimit(p.Limit)
	p.Platforms = normalizePlatforms(p.Platforms)
	p.SortOrder = normalizeOrder(p.SortOrder)
	if p.SortBy == "" {
		p.SortBy = "publishedAt"
	}
	return p
}

// liveTTL picks the cache TTL for one stream resource.
func liveTTL(status models.LiveStatus) time.Duration {
	switch status {
	case models.StatusLive, models.StatusUpcoming:
		return TTLLive
	case models.StatusPast:
		return TTLEnded
	default:
		return TTLVideos
	}
}

// GetLives answers a stream query for one lifecycle status. The
// returned TTL is the remaining cache lifetime, for Cache-Control.
// The "video" status additionally matches archived past streams.
func (s *Service) GetLives(ctx context.Context, status models.LiveStatus, params LiveParams) (models.LivesResource, time.Duration, error) {
	p := params.normalized(status)
	key := LiveCacheKey(status, LiveKeyParams{
		Groups:           p.Groups,
		ChannelIDs:       p.ChannelIDs,
		Platforms:        p.Platforms,
		SortBy:           p.SortBy,
		SortOrder:        p.SortOrder,
		Limit:            p.Limit,
		Cursor:           p.Cursor,
		MaxLookback:      p.MaxLookback,
		MaxScheduledTime: p.MaxScheduledTime,
	})
	ttl := liveTTL(status)

	if !p.NoCache {
		var cached models.LivesResource
		if found, remaining := s.cacheGet(ctx, key, &cached); found {
			return cached, remaining, nil
		}
	}

	statuses := []models.LiveStatus{status}
	if status == models.StatusVideo {
		statuses = []models.LiveStatus{models.StatusVideo, models.StatusPast}
	}
	query := repository.VideoQuery{
		Platforms:     p.Platforms,
		Statuses:      statuses,
		ChannelIDs:    p.ChannelIDs,
		Groups:        ExpandGroups(p.Groups),
		LookbackHours: p.MaxLookback,
	}
	if p.MaxScheduledTime != nil {
		query.MaxScheduledTime = *p.MaxScheduledTime
	}

	page, err := s.videos.GetVideos(ctx, query, db.PaginateOptions{
		Limit:     p.Limit,
		Cursor:    p.Cursor,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
	})
	if err != nil {
		s.log.Error("video query failed, returning empty page",
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return emptyLives(p.Limit), ttl, nil
	}

	items := MapLives(page.Docs)
	resource := models.LivesResource{
		Total: int(page.PageInfo.TotalData),
		Items: items,
		PageInfo: models.PageInfo{
			TotalResults:   len(items),
			ResultsPerPage: p.Limit,
			NextCursor:     page.PageInfo.NextCursor,
			HasNextPage:    page.PageInfo.NextCursor != nil && page.PageInfo.HasNextPage,
		},
	}
	if !p.NoCache && len(items) > 0 {
		s.cacheSet(ctx, key, resource, ttl)
	}
	return resource, ttl, nil
}

// GetChannels answers a channel listing query.
func (s *Service) GetChannels(ctx context.Context, params ChannelParams) (models.ChannelsResource, time.Duration, error) {
	p := params.normalized()
	key := ChannelsCacheKey(ChannelKeyParams{
		Groups:     p.Groups,
		ChannelIDs: p.ChannelIDs,
		Platforms:  p.Platforms,
		SortBy:     p.SortBy,
		SortOrder:  p.SortOrder,
		Limit:      p.Limit,
		Cursor:     p.Cursor,
	})

	if !p.NoCache {
		var cached models.ChannelsResource
		if found, remaining := s.cacheGet(ctx, key, &cached); found {
			return cached, remaining, nil
		}
	}

	page, err := s.channels.GetChannels(ctx, repository.ChannelQuery{
		Platforms:  p.Platforms,
		ChannelIDs: p.ChannelIDs,
		Groups:     ExpandGroups(p.Groups),
	}, db.PaginateOptions{
		Limit:     p.Limit,
		Cursor:    p.Cursor,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
	})
	if err != nil {
		s.log.Error("channel query failed, returning empty page", zap.Error(err))
		return models.ChannelsResource{
			Items:    []models.ChannelObject{},
			PageInfo: models.PageInfo{ResultsPerPage: p.Limit},
		}, TTLChannels, nil
	}

	items := MapChannels(page.Docs)
	resource := models.ChannelsResource{
		Total: int(page.PageInfo.TotalData),
		Items: items,
		PageInfo: models.PageInfo{
			TotalResults:   len(items),
			ResultsPerPage: p.Limit,
			NextCursor:     page.PageInfo.NextCursor,
			HasNextPage:    page.PageInfo.NextCursor != nil && page.PageInfo.HasNextPage,
		},
	}
	if !p.NoCache && len(items) > 0 {
		s.cacheSet(ctx, key, resource, TTLChannels)
	}
	return resource, TTLChannels, nil
}

// GetGroups lists every known channel group.
func (s *Service) GetGroups(ctx context.Context, noCache bool) (models.GroupsResource, time.Duration, error) {
	key := GroupsCacheKey()
	if !noCache {
		var cached models.GroupsResource
		if found, remaining := s.cacheGet(ctx, key, &cached); found {
			return cached, remaining, nil
		}
	}

	groups, err := s.channels.GetGroups(ctx)
	if err != nil {
		s.log.Error("group query failed, returning empty list", zap.Error(err))
		return models.GroupsResource{Items: []string{}}, TTLGroups, nil
	}

	resource := models.GroupsResource{Items: groups}
	if !noCache && len(groups) > 0 {
		s.cacheSet(ctx, key, resource, TTLGroups)
	}
	return resource, TTLGroups, nil
}

// GetChannel resolves a single channel by id and platform, as used by
// the stream-to-channel join. A missing channel is logged and returned
// as nil rather than an error.
func (s *Service) GetChannel(ctx context.Context, channelID string, platform models.Platform) (*models.ChannelObject, error) {
	key := SingleChannelCacheKey(platform, channelID)
	var cached models.ChannelObject
	if found, _ := s.cacheGet(ctx, key, &cached); found {
		return &cached, nil
	}

	// Force-single lookup; the small page guards against duplicate
	// scraper entries for the same id.
	page, err := s.channels.GetChannels(ctx, repository.ChannelQuery{
		Platforms:  []models.Platform{platform},
		ChannelIDs: []string{channelID},
	}, db.PaginateOptions{Limit: 5, SortOrder: db.SortAsc})
	if err != nil {
		s.log.Error("single channel query failed",
			zap.String("channel_id", channelID),
			zap.String("platform", string(platform)),
			zap.Error(err),
		)
		return nil, nil
	}
	if len(page.Docs) == 0 {
		s.log.Error("channel not found for join",
			zap.String("channel_id", channelID),
			zap.String("platform", string(platform)),
		)
		return nil, nil
	}

	mapped := MapChannel(page.Docs[0])
	s.cacheSet(ctx, key, mapped, TTLSingle)
	return &mapped, nil
}

// GetGrowth resolves the growth deltas for one channel. Channels with
// no usable history resolve to nil.
func (s *Service) GetGrowth(ctx context.Context, channelID string, platform models.Platform) (*models.ChannelGrowthSet, error) {
	key := GrowthCacheKey(platform, channelID)
	var cached models.ChannelGrowthSet
	if found, _ := s.cacheGet(ctx, key, &cached); found {
		return &cached, nil
	}

	history, err := s.channelHistory(ctx, channelID, platform)
	if err != nil || history == nil {
		return nil, nil
	}
	growth := ComputeGrowth(platform, history.History)
	if growth != nil {
		s.cacheSet(ctx, key, growth, TTLGrowth)
	}
	return growth, nil
}

// GetHistory resolves the one-week daily metric series for one channel.
func (s *Service) GetHistory(ctx context.Context, channelID string, platform models.Platform) (*models.ChannelHistorySet, error) {
	key := HistoryCacheKey(platform, channelID)
	var cached models.ChannelHistorySet
	if found, _ := s.cacheGet(ctx, key, &cached); found {
		return &cached, nil
	}

	history, err := s.channelHistory(ctx, channelID, platform)
	if err != nil || history == nil {
		return nil, nil
	}
	series := ComputeHistory(platform, history.History)
	if series != nil {
		s.cacheSet(ctx, key, series, TTLGrowth)
	}
	return series, nil
}

func (s *Service) channelHistory(ctx context.Context, channelID string, platform models.Platform) (*models.ChannelStats, error) {
	history, err := s.stats.GetChannelHistory(ctx, channelID, platform)
	if err != nil {
		if !errors.Is(err, repository.ErrNoHistory) {
			s.log.Error("history query failed",
				zap.String("channel_id", channelID),
				zap.String("platform", string(platform)),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return history, nil
}

// AddChannel inserts a skeleton channel document for later enrichment
// by the scraper, and primes the single-channel cache with its mapped
// shape.
func (s *Service) AddChannel(ctx context.Context, doc models.Channel) (*models.ChannelObject, error) {
	if err := s.channels.InsertChannel(ctx, doc); err != nil {
		return nil, err
	}
	mapped := MapChannel(doc)
	s.cacheSet(ctx, SingleChannelCacheKey(doc.Platform, doc.ID), mapped, TTLSingle)
	return &mapped, nil
}

// FlushCache drops every response-cache entry. Admin only.
func (s *Service) FlushCache(ctx context.Context) (int64, error) {
	return s.cache.Delete(ctx, CachePrefix+"-*")
}

// cacheGet treats every cache failure as a miss.
func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) (bool, time.Duration) {
	found, remaining, err := s.cache.GetWithTTL(ctx, key, dest)
	if err != nil {
		s.log.Warn("cache lookup failed, treating as miss", zap.String("key", key), zap.Error(err))
		return false, 0
	}
	if found {
		s.log.Debug("cache hit", zap.String("key", key))
	}
	return found, remaining
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.SetEX(ctx, key, value, ttl); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func emptyLives(limit int) models.LivesResource {
	return models.LivesResource{
		Items:    []models.LiveObject{},
		PageInfo: models.PageInfo{ResultsPerPage: limit},
	}
}
