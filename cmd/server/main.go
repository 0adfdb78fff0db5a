package main

import (
	"log"
	"net/http"

	"vip_transport/internal/config"
	"vip_transport/internal/logger"
	"vip_transport/internal/middleware"
	"vip_transport/internal/routes"
)

func main() {
	// Structured logging to a rotating file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Setup Gin router (recovery + request logging attached inside)
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Println("🚀 Server running at :8080")
	log.Fatal(http.ListenAndServe("0.0.0.0:8080", handler))
}
