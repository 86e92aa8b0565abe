package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ihateani-me/ihaapi-go/internal/middleware"
)

// RouterDeps bundles everything the route table needs.
type RouterDeps struct {
	VTuber  *VTuberHandler
	Games   *GamesHandler
	U2      *U2Handler
	Health  *HealthHandler
	GraphQL gin.HandlerFunc
	// APIKeys guard the admin routes.
	APIKeys []string
}

// NewRouter assembles the gin engine with all routes and middleware.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	r.GET("/health", deps.Health.ReadinessProbe)
	r.GET("/health/live", deps.Health.LivenessProbe)
	r.GET("/metrics", middleware.MetricsHandler())

	v2 := r.Group("/v2")
	{
		vtuber := v2.Group("/vtuber")
		vtuber.GET("/lives", deps.VTuber.Lives)
		vtuber.GET("/upcoming", deps.VTuber.Upcoming)
		vtuber.GET("/ended", deps.VTuber.Ended)
		vtuber.GET("/videos", deps.VTuber.Videos)
		vtuber.GET("/channels", deps.VTuber.Channels)
		vtuber.GET("/groups", deps.VTuber.Groups)

		auth := middleware.NewAPIKeyAuth(deps.APIKeys)
		vtuber.DELETE("/cache", auth.Middleware(), deps.VTuber.FlushCache)

		if deps.GraphQL != nil {
			v2.GET("/graphql", deps.GraphQL)
			v2.POST("/graphql", deps.GraphQL)
		}
	}

	games := r.Group("/games")
	{
		games.GET("/search", deps.Games.Search)
		games.GET("/:appid", deps.Games.AppDetails)
	}

	u2group := r.Group("/u2")
	{
		u2group.GET("/latest", deps.U2.Latest)
		u2group.GET("/offers", deps.U2.Offers)
	}

	return r
}
