package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
)

type vipInput struct {
	Name  string `json:"name" binding:"required"`
	Title string `json:"title"`

	ArrivalDate       *time.Time `json:"arrival_date"`
	ArrivalTime       string     `json:"arrival_time"`
	ArrivalAirport    string     `json:"arrival_airport"`
	ArrivalTerminal   string     `json:"arrival_terminal"`
	ArrivalFlightNo   string     `json:"arrival_flight_no"`
	DepartureDate     *time.Time `json:"departure_date"`
	DepartureTime     string     `json:"departure_time"`
	DepartureAirport  string     `json:"departure_airport"`
	DepartureFlightNo string     `json:"departure_flight_no"`
	Notes             string     `json:"notes"`
}

// CreateVIP registers a VIP itinerary. assigned_driver_id is not part of
// the payload; only the assignment write path sets it.
func CreateVIP(c *gin.Context) {
	var input vipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vip := models.VIP{
		Name:              input.Name,
		Title:             input.Title,
		ArrivalDate:       input.ArrivalDate,
		ArrivalTime:       input.ArrivalTime,
		ArrivalAirport:    input.ArrivalAirport,
		ArrivalTerminal:   input.ArrivalTerminal,
		ArrivalFlightNo:   input.ArrivalFlightNo,
		DepartureDate:     input.DepartureDate,
		DepartureTime:     input.DepartureTime,
		DepartureAirport:  input.DepartureAirport,
		DepartureFlightNo: input.DepartureFlightNo,
		Notes:             input.Notes,
	}

	if err := config.DB.Create(&vip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create VIP: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vip": vip})
}

func GetVIP(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid VIP ID format."})
		return
	}

	var vip models.VIP
	if err := config.DB.First(&vip, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "VIP not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"vip": vip})
}

func ListVIPs(c *gin.Context) {
	var vips []models.VIP
	if err := config.DB.Find(&vips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch VIPs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vips})
}

func UpdateVIP(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid VIP ID format."})
		return
	}

	var vip models.VIP
	if err := config.DB.First(&vip, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "VIP not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	var input struct {
		Name              *string    `json:"name"`
		Title             *string    `json:"title"`
		ArrivalDate       *time.Time `json:"arrival_date"`
		ArrivalTime       *string    `json:"arrival_time"`
		ArrivalAirport    *string    `json:"arrival_airport"`
		ArrivalTerminal   *string    `json:"arrival_terminal"`
		ArrivalFlightNo   *string    `json:"arrival_flight_no"`
		DepartureDate     *time.Time `json:"departure_date"`
		DepartureTime     *string    `json:"departure_time"`
		DepartureAirport  *string    `json:"departure_airport"`
		DepartureFlightNo *string    `json:"departure_flight_no"`
		Notes             *string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		vip.Name = *input.Name
	}
	if input.Title != nil {
		vip.Title = *input.Title
	}
	if input.ArrivalDate != nil {
		vip.ArrivalDate = input.ArrivalDate
	}
	if input.ArrivalTime != nil {
		vip.ArrivalTime = *input.ArrivalTime
	}
	if input.ArrivalAirport != nil {
		vip.ArrivalAirport = *input.ArrivalAirport
	}
	if input.ArrivalTerminal != nil {
		vip.ArrivalTerminal = *input.ArrivalTerminal
	}
	if input.ArrivalFlightNo != nil {
		vip.ArrivalFlightNo = *input.ArrivalFlightNo
	}
	if input.DepartureDate != nil {
		vip.DepartureDate = input.DepartureDate
	}
	if input.DepartureTime != nil {
		vip.DepartureTime = *input.DepartureTime
	}
	if input.DepartureAirport != nil {
		vip.DepartureAirport = *input.DepartureAirport
	}
	if input.DepartureFlightNo != nil {
		vip.DepartureFlightNo = *input.DepartureFlightNo
	}
	if input.Notes != nil {
		vip.Notes = *input.Notes
	}

	if err := config.DB.Save(&vip).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update VIP: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vip": vip})
}

// DeleteVIP refuses while the VIP is attached to a live assignment.
func DeleteVIP(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid VIP ID format."})
		return
	}

	var live int64
	if err := config.DB.Model(&models.Assignment{}).
		Where("vip_id = ? AND status IN ?", uint(id),
			[]string{models.AssignmentStatusScheduled, models.AssignmentStatusActive}).
		Count(&live).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		return
	}
	if live > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "VIP is referenced by a live assignment"})
		return
	}

	if err := config.DB.Delete(&models.VIP{}, uint(id)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete VIP"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "VIP deleted"})
}
