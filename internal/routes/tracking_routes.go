package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"vip_transport/internal/controllers"
	"vip_transport/internal/middleware"
)

// TrackingRoutes exposes the read-only dashboard. Responses are cached
// briefly per department so a wall of dashboards doesn't hammer the
// store; redaction for tracking-only staff happens in the controller.
func TrackingRoutes(r *gin.Engine) {
	store := cache.New(15*time.Second, time.Minute)

	tracking := r.Group("/tracking")
	tracking.Use(middleware.RequireAuthWithRole("coordinator", "admin", "staff"))
	tracking.Use(middleware.RateLimit(rate.Limit(10), 20))
	tracking.Use(middleware.CacheResponse(store, 15*time.Second))
	{
		tracking.GET("/drivers", controllers.TrackDrivers)
	}
}
