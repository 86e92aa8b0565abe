package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ihateani-me/ihaapi-go/internal/cache"
	"github.com/ihateani-me/ihaapi-go/internal/db/repository"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repos *repository.Repositories
	cache *cache.Service
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(repos *repository.Repositories, cacheSvc *cache.Service) *HealthHandler {
	return &HealthHandler{
		repos: repos,
		cache: cacheSvc,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks if the application is ready to serve traffic.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.repos.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "DOWN",
			"database": "unhealthy",
			"error":    err.Error(),
			"time":     time.Now(),
		})
		return
	}

	if err := h.cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "DOWN",
			"database": "healthy",
			"cache":    "unhealthy",
			"error":    err.Error(),
			"time":     time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"database": "healthy",
		"cache":    "healthy",
		"time":     time.Now(),
	})
}
