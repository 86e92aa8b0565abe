package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ihateani-me/ihaapi-go/internal/models"
	"github.com/ihateani-me/ihaapi-go/internal/u2"
	"github.com/ihateani-me/ihaapi-go/pkg/logger"
)

// U2Handler serves scraped U2 tracker data.
type U2Handler struct {
	scraper *u2.Scraper
	log     *zap.Logger
}

// NewU2Handler creates a new U2Handler instance.
func NewU2Handler(scraper *u2.Scraper) *U2Handler {
	return &U2Handler{
		scraper: scraper,
		log:     logger.Named("handler.u2"),
	}
}

// Latest returns the newest torrents from the tracker feed.
func (h *U2Handler) Latest(c *gin.Context) {
	torrents, err := h.scraper.Latest(c.Request.Context())
	if err != nil {
		h.fail(c, "feed fetch failed", err, u2.ErrNoPasskey, "webmaster doesn't provide U2 Passkey")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": torrents})
}

// Offers returns torrent candidates currently under vote.
func (h *U2Handler) Offers(c *gin.Context) {
	offers, err := h.scraper.Offers(c.Request.Context())
	if err != nil {
		h.fail(c, "offers scrape failed", err, u2.ErrNoCookies, "webmaster doesn't provide U2 Cookies")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": offers})
}

// fail maps a missing-credential error to its operator-facing message,
// everything else to a generic 500.
func (h *U2Handler) fail(c *gin.Context, msg string, err, credErr error, credMsg string) {
	h.log.Error(msg, zap.Error(err))
	message := "Internal server error occured."
	if errors.Is(err, credErr) {
		message = credMsg
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: message,
		Code:  http.StatusInternalServerError,
	})
}
