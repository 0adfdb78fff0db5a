package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"vip_transport/internal/controllers"
	"vip_transport/internal/middleware"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", controllers.SignupUser)
		auth.POST("/login", controllers.LoginUser)
		// Public self-registration, throttled per IP.
		auth.POST("/driver-register", middleware.RateLimit(rate.Limit(1), 5), controllers.RegisterDriver)
	}
}
