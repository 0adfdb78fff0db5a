package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
)

type createObservationInput struct {
	AssignmentID    uint    `json:"assignment_id" binding:"required"`
	ObservationType string  `json:"observation_type" binding:"required"`
	Mileage         *int    `json:"mileage"`
	FuelLevel       *string `json:"fuel_level"`
	DamageNotes     string  `json:"damage_notes"`
	Photos          string  `json:"photos"`
}

// CreateObservation files a vehicle condition record against one of the
// authenticated driver's assignments. The vehicle is taken from the
// assignment, never from the caller.
func CreateObservation(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	var input createObservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidObservationType(input.ObservationType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "observation_type must be one of pickup, dropoff, maintenance_issue"})
		return
	}

	var assignment models.Assignment
	if err := config.DB.Where("id = ? AND driver_id = ?", input.AssignmentID, driver.ID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Assignment not found or not assigned to you."})
		return
	}

	observation := models.VehicleObservation{
		VehicleID:       assignment.VehicleID,
		AssignmentID:    assignment.ID,
		DriverID:        driver.ID,
		ObservationType: input.ObservationType,
		Mileage:         input.Mileage,
		FuelLevel:       input.FuelLevel,
		DamageNotes:     strings.TrimSpace(input.DamageNotes),
		Photos:          input.Photos,
	}
	if err := config.DB.Create(&observation).Error; err != nil {
		logrus.WithError(err).Error("failed to create vehicle observation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record observation"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"observation": observation})
}

// ListVehicleObservations returns the condition history for a vehicle,
// for coordinator review.
func ListVehicleObservations(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var observations []models.VehicleObservation
	if err := config.DB.Where("vehicle_id = ?", uint(id)).
		Order("created_at DESC").Find(&observations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing observations: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": observations})
}
