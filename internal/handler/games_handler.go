package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/internal/models"
	"github.com/ihateani-me/ihaapi-go/internal/steam"
	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

// GamesHandler proxies Steam storefront lookups.
type GamesHandler struct {
	client *steam.Client
	log    *zap.Logger
}

// NewGamesHandler creates a new GamesHandler instance.
func NewGamesHandler(client *steam.Client) *GamesHandler {
	return &GamesHandler{
		client: client,
		log:    logger.Named("handler.games"),
	}
}

// Search runs a storefront text search via the q query param.
func (h *GamesHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		query = c.Query("query")
	}
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "please provide `q` args on the url",
			"example": "/games/search?q=ori and the",
			"code":    http.StatusBadRequest,
		})
		return
	}
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}

	results, err := h.client.Search(c.Request.Context(), query)
	if err != nil {
		h.log.Error("storefront search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error occured.",
			Code:  http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// AppDetails looks up a single app by storefront id.
func (h *GamesHandler) AppDetails(c *gin.Context) {
	appID := c.Param("appid")

	game, err := h.client.AppDetails(c.Request.Context(), appID)
	if err != nil {
		if errors.Is(err, steam.ErrAppNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: "Failed fetching that appID from Steam.",
				Code:  http.StatusNotFound,
			})
			return
		}
		h.log.Error("storefront lookup failed", zap.String("app_id", appID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Internal server error occured.",
			Code:  http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, game)
}
