package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
)

// Vehicle create/update payloads deliberately have no current_driver_id
// field: that back-reference belongs to the assignment write path alone.
type vehicleInput struct {
	Make         string `json:"make" binding:"required"`
	VehicleModel string `json:"vehicle_model" binding:"required"`
	Registration string `json:"registration" binding:"required"`

	PickupMileage   *int       `json:"pickup_mileage"`
	PickupFuelGauge *string    `json:"pickup_fuel_gauge"`
	PickupPhotos    string     `json:"pickup_photos"`
	PickupDate      *time.Time `json:"pickup_date"`
}

type updateVehicleInput struct {
	Make         *string `json:"make"`
	VehicleModel *string `json:"vehicle_model"`
	Registration *string `json:"registration"`

	PickupMileage   *int       `json:"pickup_mileage"`
	PickupFuelGauge *string    `json:"pickup_fuel_gauge"`
	PickupPhotos    *string    `json:"pickup_photos"`
	PickupDate      *time.Time `json:"pickup_date"`

	DropoffMileage   *int       `json:"dropoff_mileage"`
	DropoffFuelGauge *string    `json:"dropoff_fuel_gauge"`
	DropoffPhotos    *string    `json:"dropoff_photos"`
	DropoffDate      *time.Time `json:"dropoff_date"`
}

func CreateVehicle(c *gin.Context) {
	var input vehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		Make:            input.Make,
		VehicleModel:    input.VehicleModel,
		Registration:    input.Registration,
		PickupMileage:   input.PickupMileage,
		PickupFuelGauge: input.PickupFuelGauge,
		PickupPhotos:    input.PickupPhotos,
		PickupDate:      input.PickupDate,
	}

	if err := config.DB.Create(&vehicle).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "a vehicle with this registration already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func ListVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.DB.Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing vehicles: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

func GetVehicle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

func UpdateVehicle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	var input updateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update: " + err.Error()})
		return
	}

	if input.Make != nil {
		vehicle.Make = *input.Make
	}
	if input.VehicleModel != nil {
		vehicle.VehicleModel = *input.VehicleModel
	}
	if input.Registration != nil {
		vehicle.Registration = *input.Registration
	}
	if input.PickupMileage != nil {
		vehicle.PickupMileage = input.PickupMileage
	}
	if input.PickupFuelGauge != nil {
		vehicle.PickupFuelGauge = input.PickupFuelGauge
	}
	if input.PickupPhotos != nil {
		vehicle.PickupPhotos = *input.PickupPhotos
	}
	if input.PickupDate != nil {
		vehicle.PickupDate = input.PickupDate
	}
	if input.DropoffMileage != nil {
		vehicle.DropoffMileage = input.DropoffMileage
	}
	if input.DropoffFuelGauge != nil {
		vehicle.DropoffFuelGauge = input.DropoffFuelGauge
	}
	if input.DropoffPhotos != nil {
		vehicle.DropoffPhotos = *input.DropoffPhotos
	}
	if input.DropoffDate != nil {
		vehicle.DropoffDate = input.DropoffDate
	}

	if err := config.DB.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// DeleteVehicle refuses while the vehicle is held by a live assignment.
func DeleteVehicle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle ID format."})
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	var live int64
	if err := config.DB.Model(&models.Assignment{}).
		Where("vehicle_id = ? AND status IN ?", vehicle.ID,
			[]string{models.AssignmentStatusScheduled, models.AssignmentStatusActive}).
		Count(&live).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}
	if live > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "vehicle is referenced by a live assignment"})
		return
	}

	if err := config.DB.Delete(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}
