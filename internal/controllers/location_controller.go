package controllers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	geom "github.com/twpayne/go-geom"
	"gorm.io/gorm"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
)

type locationUpdateInput struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Accuracy  float64 `json:"accuracy"`
	Speed     float64 `json:"speed"`
	Bearing   float64 `json:"bearing"`
	IsMoving  bool    `json:"is_moving"`
	EventType string  `json:"event_type"`
}

// CreateLocationUpdate stores a GPS fix for the authenticated driver.
// Distance from the previous fix is derived server-side; a failure to
// find the previous fix just leaves the distance at zero.
func CreateLocationUpdate(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	var input locationUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := models.LocationUpdate{
		DriverID:  driver.ID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Accuracy:  input.Accuracy,
		Speed:     input.Speed,
		Bearing:   input.Bearing,
		IsMoving:  input.IsMoving,
		Timestamp: time.Now(),
		EventType: input.EventType,
	}

	var last models.LocationUpdate
	err := config.DB.Where("driver_id = ?", driver.ID).
		Order("timestamp DESC").First(&last).Error
	if err == nil {
		update.DistanceFromLast = distanceMeters(
			geom.Coord{last.Longitude, last.Latitude},
			geom.Coord{input.Longitude, input.Latitude},
		)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}

	if err := config.DB.Create(&update).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store location update: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"location": update})
}

const earthRadiusMeters = 6371000

// distanceMeters is the haversine great-circle distance between two
// lng/lat coordinates.
func distanceMeters(from, to geom.Coord) float64 {
	lat1 := from.Y() * math.Pi / 180
	lat2 := to.Y() * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (to.X() - from.X()) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
