package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
	"vip_transport/internal/notifier"
)

type createAssignmentInput struct {
	DriverID  uint       `json:"driver_id" binding:"required"`
	VehicleID uint       `json:"vehicle_id" binding:"required"`
	VIPID     *uint      `json:"vip_id"`
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
}

// updateAssignmentInput: driver_id is deliberately absent. The driver on
// an assignment is set once at creation; reassigning a driver means
// completing this assignment and creating a new one.
type updateAssignmentInput struct {
	VehicleID *uint      `json:"vehicle_id"`
	VIPID     *uint      `json:"vip_id"`
	RemoveVIP bool       `json:"remove_vip"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// CreateAssignment pairs a driver with a vehicle (and optionally a VIP).
// The assignment insert and both back-reference writes commit in a single
// transaction so the exclusivity invariant can never be half-applied.
func CreateAssignment(c *gin.Context) {
	var input createAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, input.DriverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	var vehicle models.Vehicle
	if err := tx.First(&vehicle, input.VehicleID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}
	if vehicle.CurrentDriverID != nil && *vehicle.CurrentDriverID != input.DriverID {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "Vehicle is already assigned to another driver"})
		return
	}

	var vip *models.VIP
	if input.VIPID != nil {
		vip = &models.VIP{}
		if err := tx.First(vip, *input.VIPID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "VIP not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
			}
			return
		}
		if vip.AssignedDriverID != nil && *vip.AssignedDriverID != input.DriverID {
			tx.Rollback()
			c.JSON(http.StatusConflict, gin.H{"error": "VIP is already assigned to another driver"})
			return
		}
	}

	assignment := models.Assignment{
		DriverID:  input.DriverID,
		VehicleID: input.VehicleID,
		VIPID:     input.VIPID,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Status:    models.AssignmentStatusScheduled,
	}
	if err := tx.Create(&assignment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignment: " + err.Error()})
		return
	}

	vehicle.CurrentDriverID = &assignment.DriverID
	if err := tx.Save(&vehicle).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle assignment: " + err.Error()})
		return
	}
	if vip != nil {
		vip.AssignedDriverID = &assignment.DriverID
		if err := tx.Save(vip).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update VIP assignment: " + err.Error()})
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	if driver.Email != "" {
		notifier.SendAsync(driver.Email, "New transport assignment",
			fmt.Sprintf("Hello %s,\n\nYou have been assigned vehicle %s starting %s. Please review your itinerary in the driver app.",
				driver.Name, vehicle.Registration, assignment.StartTime.Format(time.RFC1123)))
	}

	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// UpdateAssignment edits vehicle/VIP pairing and the time window. Swapping
// the vehicle clears the old back-reference and claims the new one inside
// the same transaction; the conflict check runs against the new vehicle.
func UpdateAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	var assignment models.Assignment
	if err := config.DB.First(&assignment, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	var input updateAssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}

	if input.VehicleID != nil && *input.VehicleID != assignment.VehicleID {
		var newVehicle models.Vehicle
		if err := tx.First(&newVehicle, *input.VehicleID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
			}
			return
		}
		if newVehicle.CurrentDriverID != nil && *newVehicle.CurrentDriverID != assignment.DriverID {
			tx.Rollback()
			c.JSON(http.StatusConflict, gin.H{"error": "Vehicle is already assigned to another driver"})
			return
		}

		if err := tx.Model(&models.Vehicle{}).
			Where("id = ?", assignment.VehicleID).
			Update("current_driver_id", nil).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release previous vehicle: " + err.Error()})
			return
		}
		newVehicle.CurrentDriverID = &assignment.DriverID
		if err := tx.Save(&newVehicle).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim vehicle: " + err.Error()})
			return
		}
		assignment.VehicleID = *input.VehicleID
	}

	if input.VIPID != nil || input.RemoveVIP {
		// Release the previous VIP, if any.
		if assignment.VIPID != nil {
			if err := tx.Model(&models.VIP{}).
				Where("id = ?", *assignment.VIPID).
				Update("assigned_driver_id", nil).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release previous VIP: " + err.Error()})
				return
			}
			assignment.VIPID = nil
		}
		if input.VIPID != nil {
			var newVIP models.VIP
			if err := tx.First(&newVIP, *input.VIPID).Error; err != nil {
				tx.Rollback()
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "VIP not found"})
				} else {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
				}
				return
			}
			if newVIP.AssignedDriverID != nil && *newVIP.AssignedDriverID != assignment.DriverID {
				tx.Rollback()
				c.JSON(http.StatusConflict, gin.H{"error": "VIP is already assigned to another driver"})
				return
			}
			newVIP.AssignedDriverID = &assignment.DriverID
			if err := tx.Save(&newVIP).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim VIP: " + err.Error()})
				return
			}
			assignment.VIPID = input.VIPID
		}
	}

	if input.StartTime != nil {
		assignment.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		assignment.EndTime = input.EndTime
	}

	if err := tx.Save(&assignment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignment: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// UpdateAssignmentStatus drives the lifecycle: scheduled → active →
// completed, with scheduled → completed allowed directly and a same-status
// request treated as a no-op. Completing an assignment releases its
// vehicle and VIP back-references in the same transaction; a completed
// assignment no longer holds anything exclusively.
func UpdateAssignmentStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidAssignmentStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: must be one of scheduled, active, completed"})
		return
	}

	var assignment models.Assignment
	if err := config.DB.First(&assignment, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	previous := assignment.Status
	if !models.CanTransition(previous, input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": models.InvalidTransitionError(previous, input.Status).Error()})
		return
	}

	if previous == input.Status {
		c.JSON(http.StatusOK, gin.H{"assignment": assignment, "previous_status": previous})
		return
	}

	now := time.Now()
	assignment.Status = input.Status
	switch input.Status {
	case models.AssignmentStatusActive:
		assignment.ActivatedAt = &now
	case models.AssignmentStatusCompleted:
		assignment.CompletedAt = &now
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&assignment).Error; err != nil {
			return err
		}
		if input.Status == models.AssignmentStatusCompleted {
			return releaseBackReferences(tx, &assignment)
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("assignment_id", assignment.ID).Error("status transition failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignment status"})
		return
	}

	if input.Reason != "" {
		logrus.WithFields(logrus.Fields{
			"assignment_id": assignment.ID,
			"from":          previous,
			"to":            input.Status,
			"reason":        input.Reason,
		}).Info("assignment status changed")
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment, "previous_status": previous})
}

// DeleteAssignment removes the assignment together with its dependent
// check-ins and vehicle observations, and releases both back-references.
// Everything happens in one transaction; the response reports how many
// dependent rows went with it.
func DeleteAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	var assignment models.Assignment
	if err := config.DB.First(&assignment, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	var checkins, observations int64
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Checkin{}).Where("assignment_id = ?", assignment.ID).Count(&checkins).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", assignment.ID).Delete(&models.Checkin{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.VehicleObservation{}).Where("assignment_id = ?", assignment.ID).Count(&observations).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", assignment.ID).Delete(&models.VehicleObservation{}).Error; err != nil {
			return err
		}
		if err := releaseBackReferences(tx, &assignment); err != nil {
			return err
		}
		return tx.Delete(&assignment).Error
	})
	if err != nil {
		logrus.WithError(err).WithField("assignment_id", assignment.ID).Error("assignment delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Assignment deleted",
		"deletedAssignmentId": assignment.ID,
		"relatedRecordsDeleted": gin.H{
			"checkins":     checkins,
			"observations": observations,
		},
	})
}

func GetAssignment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	var assignment models.Assignment
	if err := config.DB.Preload("Driver").Preload("Vehicle").Preload("VIP").
		First(&assignment, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

// ListAssignments supports the filters the dashboard uses: status,
// driver_id and a start_time window (from/to, RFC 3339).
func ListAssignments(c *gin.Context) {
	query := config.DB.Model(&models.Assignment{})

	if status := c.Query("status"); status != "" {
		if !models.ValidAssignmentStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}
	if driverID := c.Query("driver_id"); driverID != "" {
		query = query.Where("driver_id = ?", driverID)
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
			return
		}
		query = query.Where("start_time >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
			return
		}
		query = query.Where("start_time <= ?", t)
	}

	var assignments []models.Assignment
	if err := query.Preload("Driver").Preload("Vehicle").Preload("VIP").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing assignments: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// ListMyAssignments returns the authenticated driver's own assignments,
// newest start first.
func ListMyAssignments(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	query := config.DB.Where("driver_id = ?", driver.ID)
	if status := c.Query("status"); status != "" {
		if !models.ValidAssignmentStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var assignments []models.Assignment
	if err := query.Preload("Vehicle").Preload("VIP").
		Order("start_time DESC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing assignments: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

// releaseBackReferences clears the vehicle and VIP back-references held by
// this assignment. The driver guard keeps a concurrent re-claim safe: only
// a pointer that still belongs to this assignment's driver is cleared.
func releaseBackReferences(tx *gorm.DB, assignment *models.Assignment) error {
	if err := tx.Model(&models.Vehicle{}).
		Where("id = ? AND current_driver_id = ?", assignment.VehicleID, assignment.DriverID).
		Update("current_driver_id", nil).Error; err != nil {
		return err
	}
	if assignment.VIPID != nil {
		if err := tx.Model(&models.VIP{}).
			Where("id = ? AND assigned_driver_id = ?", *assignment.VIPID, assignment.DriverID).
			Update("assigned_driver_id", nil).Error; err != nil {
			return err
		}
	}
	return nil
}
