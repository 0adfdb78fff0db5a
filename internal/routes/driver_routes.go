package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"vip_transport/internal/controllers"
	"vip_transport/internal/middleware"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/driver")
	driver.Use(middleware.RequireAuthWithRole("driver"))
	{
		driver.GET("/assignments", controllers.ListMyAssignments)
		driver.GET("/assignments/:id/checkins", controllers.ListMyCheckins)
		driver.GET("/assignments/:id/progress", controllers.GetAssignmentProgress)
		driver.POST("/checkins", middleware.RateLimit(rate.Limit(5), 10), controllers.CreateCheckin)
		driver.POST("/observations", controllers.CreateObservation)
		driver.POST("/location", controllers.CreateLocationUpdate)
	}
}
