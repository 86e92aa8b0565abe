// Package handler provides the REST surface of the API.
package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/internal/db"
	"github.com/ihateani-me/ihaapi-go/internal/models"
	"github.com/ihateani-me/ihaapi-go/internal/vtuber"
	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

// VTuberHandler serves the /v2/vtuber read endpoints.
type VTuberHandler struct {
	svc *vtuber.Service
	log *zap.Logger
}

// NewVTuberHandler creates a new VTuberHandler instance.
func NewVTuberHandler(svc *vtuber.Service) *VTuberHandler {
	return &VTuberHandler{
		svc: svc,
		log: logger.Named("handler.vtuber"),
	}
}

// Lives lists currently live streams.
func (h *VTuberHandler) Lives(c *gin.Context) {
	h.lives(c, models.StatusLive)
}

// Upcoming lists scheduled streams.
func (h *VTuberHandler) Upcoming(c *gin.Context) {
	h.lives(c, models.StatusUpcoming)
}

// Ended lists recently finished streams.
func (h *VTuberHandler) Ended(c *gin.Context) {
	h.lives(c, models.StatusPast)
}

// Videos lists uploaded videos, finished streams included.
func (h *VTuberHandler) Videos(c *gin.Context) {
	h.lives(c, models.StatusVideo)
}

func (h *VTuberHandler) lives(c *gin.Context, status models.LiveStatus) {
	params := liveParamsFromQuery(c)

	res, ttl, err := h.svc.GetLives(c.Request.Context(), status, params)
	if err != nil {
		h.log.Error("live query failed", zap.String("status", string(status)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error occured.",
			Code:  http.StatusInternalServerError,
		})
		return
	}

	items := res.Items
	filter := vtuber.LiveFilter{
		Statuses: toStatuses(vtuber.ParseListParam(c.Query("status"))),
	}
	// Ended streams additionally get the in-memory lookback window
	// (default 6h, tighter than the repository's 24h bound) and the
	// group/channel allow-lists.
	if status == models.StatusPast {
		filter.Groups = params.Groups
		filter.ChannelIDs = params.ChannelIDs
		filter.LookbackHours = params.MaxLookback
		items = vtuber.FilterLives(items, filter)
	} else if len(filter.Statuses) > 0 {
		items = vtuber.FilterLives(items, filter)
	}
	if sortBy, order := c.Query("sort_by"), c.Query("sort_order"); sortBy != "" || order != "" {
		items = vtuber.SortLives(items, strings.TrimPrefix(sortBy, "timeData."), db.SortOrder(order))
	}

	setCacheControl(c, ttl)
	if fields := vtuber.ParseListParam(c.Query("fields")); len(fields) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"_total":   res.Total,
			"items":    vtuber.ProjectFields(items, fields),
			"pageInfo": res.PageInfo,
		})
		return
	}
	res.Items = items
	c.JSON(http.StatusOK, res)
}

// Channels lists registered channels.
func (h *VTuberHandler) Channels(c *gin.Context) {
	params := vtuber.ChannelParams{
		Groups:     vtuber.ParseListParam(c.Query("groups")),
		ChannelIDs: vtuber.ParseListParam(c.Query("channel_ids")),
		Platforms:  toPlatforms(vtuber.ParseListParam(c.Query("platforms"))),
		SortBy:     c.Query("sort_by"),
		SortOrder:  db.SortOrder(c.Query("sort_order")),
		Limit:      intQuery(c, "limit"),
		Cursor:     c.Query("cursor"),
		NoCache:    truthyQuery(c, "nocache"),
	}

	res, ttl, err := h.svc.GetChannels(c.Request.Context(), params)
	if err != nil {
		h.log.Error("channel query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error occured.",
			Code:  http.StatusInternalServerError,
		})
		return
	}

	if sortBy, order := c.Query("sort_by"), c.Query("sort_order"); sortBy != "" || order != "" {
		res.Items = vtuber.SortChannels(res.Items, sortBy, db.SortOrder(order))
	}

	setCacheControl(c, ttl)
	if fields := vtuber.ParseListParam(c.Query("fields")); len(fields) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"_total":   res.Total,
			"items":    vtuber.ProjectFields(res.Items, fields),
			"pageInfo": res.PageInfo,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Groups lists every distinct channel group.
func (h *VTuberHandler) Groups(c *gin.Context) {
	res, ttl, err := h.svc.GetGroups(c.Request.Context(), truthyQuery(c, "nocache"))
	if err != nil {
		h.log.Error("group query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error occured.",
			Code:  http.StatusInternalServerError,
		})
		return
	}

	setCacheControl(c, ttl)
	c.JSON(http.StatusOK, res)
}

// FlushCache drops every cached API response. Admin only.
func (h *VTuberHandler) FlushCache(c *gin.Context) {
	removed, err := h.svc.FlushCache(c.Request.Context())
	if err != nil {
		h.log.Error("cache flush failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "failed to flush the response cache",
			Code:  http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func liveParamsFromQuery(c *gin.Context) vtuber.LiveParams {
	params := vtuber.LiveParams{
		Groups:      vtuber.ParseListParam(c.Query("groups")),
		ChannelIDs:  vtuber.ParseListParam(c.Query("channel_ids")),
		Platforms:   toPlatforms(vtuber.ParseListParam(c.Query("platforms"))),
		SortBy:      c.Query("sort_by"),
		SortOrder:   db.SortOrder(c.Query("sort_order")),
		Limit:       intQuery(c, "limit"),
		Cursor:      c.Query("cursor"),
		MaxLookback: intQuery(c, "max_lookback"),
		NoCache:     truthyQuery(c, "nocache"),
	}
	if raw := c.Query("max_scheduled_time"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			params.MaxScheduledTime = &v
		}
	}
	return params
}

func toPlatforms(tokens []string) []models.Platform {
	platforms := make([]models.Platform, 0, len(tokens))
	for _, token := range tokens {
		platforms = append(platforms, models.Platform(strings.ToLower(token)))
	}
	return platforms
}

func toStatuses(tokens []string) []models.LiveStatus {
	statuses := make([]models.LiveStatus, 0, len(tokens))
	for _, token := range tokens {
		statuses = append(statuses, models.LiveStatus(strings.ToLower(token)))
	}
	return statuses
}

func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func truthyQuery(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func setCacheControl(c *gin.Context, ttl time.Duration) {
	seconds := int64(ttl / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", seconds))
}
