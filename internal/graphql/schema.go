package graphql

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/models"
	"github.com/ihateani-me/ihaapi-go/internal/vtuber"
	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

// Resolver binds the schema to the read-query service. The admin
// password guards the VTuberAdd mutation.
type Resolver struct {
	svc           *vtuber.Service
	adminPassword string
	log           *zap.Logger
}

// NewSchema builds the executable schema over the given service.
func NewSchema(svc *vtuber.Service, adminPassword string) (graphql.Schema, error) {
	r := &Resolver{
		svc:           svc,
		adminPassword: adminPassword,
		log:           logger.Named("graphql"),
	}
	return r.buildSchema()
}

func (r *Resolver) buildSchema() (graphql.Schema, error) {
	platformEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "PlatformName",
		Values: graphql.EnumValueConfigMap{
			"youtube":     &graphql.EnumValueConfig{Value: "youtube"},
			"bilibili":    &graphql.EnumValueConfig{Value: "bilibili"},
			"twitch":      &graphql.EnumValueConfig{Value: "twitch"},
			"twitcasting": &graphql.EnumValueConfig{Value: "twitcasting"},
			"mildom":      &graphql.EnumValueConfig{Value: "mildom"},
		},
	})

	timeDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LiveTimeData",
		Fields: graphql.Fields{
			"scheduledStartTime": &graphql.Field{Type: graphql.Int},
			"startTime":          &graphql.Field{Type: graphql.Int},
			"endTime":            &graphql.Field{Type: graphql.Int},
			"duration":           &graphql.Field{Type: graphql.Int},
			"publishedAt":        &graphql.Field{Type: graphql.String},
			"lateBy":             &graphql.Field{Type: graphql.Int},
		},
	})

	pageInfoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"total_results":    &graphql.Field{Type: graphql.Int},
			"results_per_page": &graphql.Field{Type: graphql.Int},
			"nextCursor":       &graphql.Field{Type: graphql.String},
			"hasNextPage":      &graphql.Field{Type: graphql.Boolean},
		},
	})

	statisticsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelStatistics",
		Fields: graphql.Fields{
			"subscriberCount": &graphql.Field{Type: graphql.Int},
			"viewCount":       &graphql.Field{Type: graphql.Int},
			"videoCount":      &graphql.Field{Type: graphql.Int},
			"level":           &graphql.Field{Type: graphql.Int},
		},
	})

	growthType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelGrowth",
		Fields: graphql.Fields{
			"oneDay":      &graphql.Field{Type: graphql.Int},
			"oneWeek":     &graphql.Field{Type: graphql.Int},
			"twoWeeks":    &graphql.Field{Type: graphql.Int},
			"oneMonth":    &graphql.Field{Type: graphql.Int},
			"sixMonths":   &graphql.Field{Type: graphql.Int},
			"oneYear":     &graphql.Field{Type: graphql.Int},
			"lastUpdated": &graphql.Field{Type: graphql.Int},
		},
	})

	growthSetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelsGrowthData",
		Fields: graphql.Fields{
			"subscribersGrowth": &graphql.Field{Type: growthType},
			"viewsGrowth":       &graphql.Field{Type: growthType},
		},
	})

	historyDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelDataHistory",
		Fields: graphql.Fields{
			"time": &graphql.Field{Type: graphql.Int},
			"data": &graphql.Field{Type: graphql.Int},
		},
	})

	historySetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelsStatsHistory",
		Fields: graphql.Fields{
			"subscribersCount": &graphql.Field{Type: graphql.NewList(historyDataType)},
			"viewsCount":       &graphql.Field{Type: graphql.NewList(historyDataType)},
			"videosCount":      &graphql.Field{Type: graphql.NewList(historyDataType)},
		},
	})

	channelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelObject",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"room_id":     &graphql.Field{Type: graphql.String},
			"user_id":     &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"en_name":     &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"publishedAt": &graphql.Field{Type: graphql.String},
			"image":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"group":       &graphql.Field{Type: graphql.String},
			"statistics":  &graphql.Field{Type: statisticsType},
			"is_live":     &graphql.Field{Type: graphql.Boolean},
			"platform":    &graphql.Field{Type: graphql.NewNonNull(platformEnum)},
			"growth": &graphql.Field{
				Type:    growthSetType,
				Resolve: r.resolveChannelGrowth,
			},
			"history": &graphql.Field{
				Type:    historySetType,
				Resolve: r.resolveChannelHistory,
			},
		},
	})

	liveType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LiveObject",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"room_id":        &graphql.Field{Type: graphql.String},
			"title":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"status":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"timeData":       &graphql.Field{Type: timeDataType},
			"channel_id":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"viewers":        &graphql.Field{Type: graphql.Int},
			"peakViewers":    &graphql.Field{Type: graphql.Int},
			"averageViewers": &graphql.Field{Type: graphql.Int},
			"thumbnail":      &graphql.Field{Type: graphql.String},
			"group":          &graphql.Field{Type: graphql.String},
			"platform":       &graphql.Field{Type: graphql.NewNonNull(platformEnum)},
			"is_missing":     &graphql.Field{Type: graphql.Boolean},
			"is_premiere":    &graphql.Field{Type: graphql.Boolean},
			"is_member":      &graphql.Field{Type: graphql.Boolean},
			"channel": &graphql.Field{
				Type:    channelType,
				Resolve: r.resolveLiveChannel,
			},
		},
	})

	livesResourceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LivesResource",
		Fields: graphql.Fields{
			"_total":   &graphql.Field{Type: graphql.Int},
			"items":    &graphql.Field{Type: graphql.NewList(liveType)},
			"pageInfo": &graphql.Field{Type: pageInfoType},
		},
	})

	channelsResourceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChannelsResource",
		Fields: graphql.Fields{
			"_total":   &graphql.Field{Type: graphql.Int},
			"items":    &graphql.Field{Type: graphql.NewList(channelType)},
			"pageInfo": &graphql.Field{Type: pageInfoType},
		},
	})

	groupsResourceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GroupsResource",
		Fields: graphql.Fields{
			"items": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	liveArgs := graphql.FieldConfigArgument{
		"channel_id": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
		"groups":     &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
		"platforms":  &graphql.ArgumentConfig{Type: graphql.NewList(platformEnum)},
		"sort_by":    &graphql.ArgumentConfig{Type: graphql.String},
		"sort_order": &graphql.ArgumentConfig{Type: graphql.String},
		"cursor":     &graphql.ArgumentConfig{Type: graphql.String},
		"limit":      &graphql.ArgumentConfig{Type: graphql.Int},
	}
	upcomingArgs := withArg(liveArgs, "max_scheduled_time", &graphql.ArgumentConfig{Type: graphql.Int})
	endedArgs := withArg(liveArgs, "max_lookback", &graphql.ArgumentConfig{Type: graphql.Int})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"live": &graphql.Field{
				Type:    livesResourceType,
				Args:    liveArgs,
				Resolve: r.resolveLives(models.StatusLive),
			},
			"upcoming": &graphql.Field{
				Type:    livesResourceType,
				Args:    upcomingArgs,
				Resolve: r.resolveLives(models.StatusUpcoming),
			},
			"ended": &graphql.Field{
				Type:    livesResourceType,
				Args:    endedArgs,
				Resolve: r.resolveLives(models.StatusPast),
			},
			"videos": &graphql.Field{
				Type:    livesResourceType,
				Args:    liveArgs,
				Resolve: r.resolveLives(models.StatusVideo),
			},
			"channels": &graphql.Field{
				Type: channelsResourceType,
				Args: graphql.FieldConfigArgument{
					"id":         &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"groups":     &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"platforms":  &graphql.ArgumentConfig{Type: graphql.NewList(platformEnum)},
					"sort_by":    &graphql.ArgumentConfig{Type: graphql.String},
					"sort_order": &graphql.ArgumentConfig{Type: graphql.String},
					"cursor":     &graphql.ArgumentConfig{Type: graphql.String},
					"limit":      &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.resolveChannels,
			},
			"groups": &graphql.Field{
				Type:    groupsResourceType,
				Resolve: r.resolveGroups,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"VTuberAdd": &graphql.Field{
				Type: channelType,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"group":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"platform": &graphql.ArgumentConfig{Type: graphql.NewNonNull(platformEnum)},
				},
				Resolve: r.resolveVTuberAdd,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func withArg(base graphql.FieldConfigArgument, name string, cfg *graphql.ArgumentConfig) graphql.FieldConfigArgument {
	out := make(graphql.FieldConfigArgument, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[name] = cfg
	return out
}

func (r *Resolver) resolveLives(status models.LiveStatus) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		params := vtuber.LiveParams{
			ChannelIDs: stringListArg(p.Args, "channel_id"),
			Groups:     stringListArg(p.Args, "groups"),
			Platforms:  platformListArg(p.Args),
			SortBy:     stringArg(p.Args, "sort_by"),
			SortOrder:  db.SortOrder(stringArg(p.Args, "sort_order")),
			Cursor:     stringArg(p.Args, "cursor"),
		}
		if limit, ok := intArg(p.Args, "limit"); ok {
			params.Limit = limit
		}
		if lb, ok := intArg(p.Args, "max_lookback"); ok {
			params.MaxLookback = lb
		}
		if maxSched, ok := intArg(p.Args, "max_scheduled_time"); ok {
			v := int64(maxSched)
			params.MaxScheduledTime = &v
		}

		gc := ginFromContext(p.Context)
		if gc != nil {
			params.NoCache = isTruthy(gc.Query("nocache"))
		}
		res, ttl, err := r.svc.GetLives(p.Context, status, params)
		if err != nil {
			return nil, err
		}
		setCacheControl(gc, ttl)
		return res, nil
	}
}

func (r *Resolver) resolveChannels(p graphql.ResolveParams) (interface{}, error) {
	params := vtuber.ChannelParams{
		ChannelIDs: stringListArg(p.Args, "id"),
		Groups:     stringListArg(p.Args, "groups"),
		Platforms:  platformListArg(p.Args),
		SortBy:     stringArg(p.Args, "sort_by"),
		SortOrder:  db.SortOrder(stringArg(p.Args, "sort_order")),
		Cursor:     stringArg(p.Args, "cursor"),
	}
	if limit, ok := intArg(p.Args, "limit"); ok {
		params.Limit = limit
	}

	gc := ginFromContext(p.Context)
	if gc != nil {
		params.NoCache = isTruthy(gc.Query("nocache"))
	}
	res, ttl, err := r.svc.GetChannels(p.Context, params)
	if err != nil {
		return nil, err
	}
	setCacheControl(gc, ttl)
	return res, nil
}

func (r *Resolver) resolveGroups(p graphql.ResolveParams) (interface{}, error) {
	gc := ginFromContext(p.Context)
	noCache := gc != nil && isTruthy(gc.Query("nocache"))
	res, ttl, err := r.svc.GetGroups(p.Context, noCache)
	if err != nil {
		return nil, err
	}
	setCacheControl(gc, ttl)
	return res, nil
}

func (r *Resolver) resolveLiveChannel(p graphql.ResolveParams) (interface{}, error) {
	src, ok := p.Source.(models.LiveObject)
	if !ok {
		return nil, nil
	}
	ch, err := r.svc.GetChannel(p.Context, src.ChannelID, src.Platform)
	if err != nil || ch == nil {
		return nil, err
	}
	return *ch, nil
}

func (r *Resolver) resolveChannelGrowth(p graphql.ResolveParams) (interface{}, error) {
	src, ok := p.Source.(models.ChannelObject)
	if !ok {
		return nil, nil
	}
	growth, err := r.svc.GetGrowth(p.Context, src.ID, src.Platform)
	if err != nil || growth == nil {
		return nil, err
	}
	return *growth, nil
}

func (r *Resolver) resolveChannelHistory(p graphql.ResolveParams) (interface{}, error) {
	src, ok := p.Source.(models.ChannelObject)
	if !ok {
		return nil, nil
	}
	history, err := r.svc.GetHistory(p.Context, src.ID, src.Platform)
	if err != nil || history == nil {
		return nil, err
	}
	return *history, nil
}

func (r *Resolver) resolveVTuberAdd(p graphql.ResolveParams) (interface{}, error) {
	gc := ginFromContext(p.Context)
	if err := r.authorize(gc); err != nil {
		return nil, err
	}

	platform := models.Platform(stringArg(p.Args, "platform"))
	doc := models.Channel{
		ID:       stringArg(p.Args, "id"),
		Name:     stringArg(p.Args, "name"),
		Group:    stringArg(p.Args, "group"),
		Platform: platform,
	}
	r.log.Info("registering channel",
		zap.String("id", doc.ID),
		zap.String("platform", string(platform)),
	)
	ch, err := r.svc.AddChannel(p.Context, doc)
	if err != nil {
		r.log.Error("channel insert failed", zap.String("id", doc.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to register channel %s", doc.ID)
	}
	return *ch, nil
}

// authorize checks the `Authorization: password <secret>` header used
// by the admin mutation.
func (r *Resolver) authorize(gc *gin.Context) error {
	if gc == nil {
		return errors.New("authorization unavailable for this transport")
	}
	header := gc.GetHeader("Authorization")
	if header == "" {
		return errors.New("missing Authorization header")
	}
	scheme, secret, found := strings.Cut(header, " ")
	if !found || strings.ToLower(scheme) != "password" {
		return errors.New("invalid Authorization scheme, expected `password <secret>`")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(r.adminPassword)) != 1 {
		return errors.New("wrong administrator password")
	}
	return nil
}
