package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Middleware must be attached before route registration.
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())

	AuthRoutes(r)
	DriverRoutes(r)
	CoordinatorRoutes(r)
	TrackingRoutes(r)

	return r
}
