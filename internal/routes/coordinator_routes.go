package routes

import (
	"github.com/gin-gonic/gin"

	"vip_transport/internal/controllers"
	"vip_transport/internal/middleware"
)

func CoordinatorRoutes(r *gin.Engine) {
	coord := r.Group("/coordination")
	coord.Use(middleware.RequireAuthWithRole("coordinator", "admin"))
	{
		coord.GET("/drivers", controllers.ListDrivers)
		coord.GET("/drivers/:id", controllers.GetDriver)
		coord.PATCH("/drivers/:id", controllers.UpdateDriver)
		coord.POST("/drivers/:id/approve", controllers.ApproveDriver)
		coord.POST("/drivers/:id/reject", controllers.RejectDriver)
		coord.DELETE("/drivers/:id", controllers.DeleteDriver)

		coord.POST("/vehicles", controllers.CreateVehicle)
		coord.GET("/vehicles", controllers.ListVehicles)
		coord.GET("/vehicles/:id", controllers.GetVehicle)
		coord.PATCH("/vehicles/:id", controllers.UpdateVehicle)
		coord.DELETE("/vehicles/:id", controllers.DeleteVehicle)
		coord.GET("/vehicles/:id/observations", controllers.ListVehicleObservations)

		coord.POST("/vips", controllers.CreateVIP)
		coord.GET("/vips", controllers.ListVIPs)
		coord.GET("/vips/:id", controllers.GetVIP)
		coord.PATCH("/vips/:id", controllers.UpdateVIP)
		coord.DELETE("/vips/:id", controllers.DeleteVIP)

		coord.POST("/assignments", controllers.CreateAssignment)
		coord.GET("/assignments", controllers.ListAssignments)
		coord.GET("/assignments/:id", controllers.GetAssignment)
		coord.PATCH("/assignments/:id", controllers.UpdateAssignment)
		coord.PATCH("/assignments/:id/status", controllers.UpdateAssignmentStatus)
		coord.DELETE("/assignments/:id", controllers.DeleteAssignment)
	}
}
