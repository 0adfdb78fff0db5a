package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
)

type createCheckinInput struct {
	AssignmentID uint     `json:"assignment_id" binding:"required"`
	CheckinType  string   `json:"checkin_type" binding:"required"`
	EventDate    string   `json:"event_date"`
	SessionID    string   `json:"session_id"`
	CustomLabel  string   `json:"custom_label"`
	Notes        string   `json:"notes"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// CreateCheckin records a driver's progress through the daily itinerary.
// Classification flags come from the taxonomy, never from the caller; the
// duplicate check and the insert run in one transaction. The first
// check-in ever recorded for an assignment flips it scheduled → active.
func CreateCheckin(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	var input createCheckinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Ownership: the assignment must belong to the requesting driver.
	var assignment models.Assignment
	if err := config.DB.Where("id = ? AND driver_id = ?", input.AssignmentID, driver.ID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Assignment not found or not assigned to you."})
		return
	}

	class := models.ClassifyCheckin(input.CheckinType)
	switch class {
	case models.CheckinClassUnknown:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown checkin_type: " + input.CheckinType})
		return
	case models.CheckinClassLegacy:
		c.JSON(http.StatusBadRequest, gin.H{"error": input.CheckinType + " is a legacy check-in type and no longer accepted"})
		return
	}

	var eventDate, sessionID, customLabel *string
	if class == models.CheckinClassDaily {
		if input.EventDate == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_date is required for daily check-in types"})
			return
		}
		if _, err := time.Parse("2006-01-02", input.EventDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_date must be formatted YYYY-MM-DD"})
			return
		}
		eventDate = &input.EventDate
		if s := strings.TrimSpace(input.SessionID); s != "" {
			sessionID = &s
		}
	}
	if class == models.CheckinClassUnlimited {
		label := strings.TrimSpace(input.CustomLabel)
		if label == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "custom_label is required for custom check-ins"})
			return
		}
		customLabel = &label
	}

	checkin := models.Checkin{
		DriverID:       driver.ID,
		AssignmentID:   assignment.ID,
		CheckinType:    input.CheckinType,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		Notes:          strings.TrimSpace(input.Notes),
		Timestamp:      time.Now(),
		IsDailyCheckin: class == models.CheckinClassDaily,
		EventDate:      eventDate,
		SessionID:      sessionID,
		CustomLabel:    customLabel,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		switch class {
		case models.CheckinClassDaily:
			dup := tx.Model(&models.Checkin{}).
				Where("driver_id = ? AND assignment_id = ? AND checkin_type = ? AND event_date = ? AND is_daily_checkin = ?",
					driver.ID, assignment.ID, input.CheckinType, *eventDate, true)
			if sessionID != nil {
				dup = dup.Where("session_id = ?", *sessionID)
			} else {
				dup = dup.Where("session_id IS NULL")
			}
			var count int64
			if err := dup.Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errDuplicateCheckin(input.CheckinType, sessionID, *eventDate)
			}
		case models.CheckinClassOneTime:
			var count int64
			if err := tx.Model(&models.Checkin{}).
				Where("driver_id = ? AND assignment_id = ? AND checkin_type = ? AND is_daily_checkin = ?",
					driver.ID, assignment.ID, input.CheckinType, false).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("already checked in for %s on this assignment", input.CheckinType)
			}
		}
		return tx.Create(&checkin).Error
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "already checked in for " + input.CheckinType})
			return
		}
		if strings.HasPrefix(err.Error(), "already checked in") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		logrus.WithError(err).Error("failed to create check-in")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create check-in"})
		return
	}

	maybeActivateAssignment(&assignment, driver.ID)

	c.JSON(http.StatusCreated, gin.H{"checkin": checkin})
}

// maybeActivateAssignment flips a still-scheduled assignment to active
// when its first check-in lands. The WHERE guard makes the update a no-op
// if a concurrent request already activated (or completed) it, and any
// failure is logged rather than surfaced; the check-in write stands.
func maybeActivateAssignment(assignment *models.Assignment, driverID uint) {
	var total int64
	if err := config.DB.Model(&models.Checkin{}).
		Where("assignment_id = ? AND driver_id = ?", assignment.ID, driverID).
		Count(&total).Error; err != nil {
		logrus.WithError(err).WithField("assignment_id", assignment.ID).Warn("auto-activation count failed")
		return
	}
	if total != 1 {
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.Assignment{}).
		Where("id = ? AND status = ?", assignment.ID, models.AssignmentStatusScheduled).
		Updates(map[string]interface{}{
			"status":       models.AssignmentStatusActive,
			"activated_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		logrus.WithError(res.Error).WithField("assignment_id", assignment.ID).Warn("auto-activation update failed")
		return
	}
	if res.RowsAffected > 0 {
		assignment.Status = models.AssignmentStatusActive
		assignment.ActivatedAt = &now
	}
}

func errDuplicateCheckin(checkinType string, sessionID *string, eventDate string) error {
	session := "default"
	if sessionID != nil {
		session = *sessionID
	}
	return fmt.Errorf("already checked in for %s (%s) on %s", checkinType, session, eventDate)
}

// ListMyCheckins returns the authenticated driver's check-in history for
// one of their assignments.
func ListMyCheckins(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	var assignment models.Assignment
	if err := config.DB.Where("id = ? AND driver_id = ?", uint(id), driver.ID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Assignment not found or not assigned to you."})
		return
	}

	var checkins []models.Checkin
	if err := config.DB.Where("assignment_id = ? AND driver_id = ?", assignment.ID, driver.ID).
		Order("timestamp ASC").Find(&checkins).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing check-ins: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": checkins})
}

// GetAssignmentProgress returns the per-date itinerary summary for one of
// the authenticated driver's assignments. event_date defaults to today.
func GetAssignmentProgress(c *gin.Context) {
	driver, ok := driverForUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format."})
		return
	}

	var assignment models.Assignment
	if err := config.DB.Where("id = ? AND driver_id = ?", uint(id), driver.ID).
		First(&assignment).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Assignment not found or not assigned to you."})
		return
	}

	eventDate := c.Query("event_date")
	if eventDate == "" {
		eventDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", eventDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_date must be formatted YYYY-MM-DD"})
		return
	}

	var checkins []models.Checkin
	if err := config.DB.Where("assignment_id = ? AND driver_id = ?", assignment.ID, driver.ID).
		Order("timestamp ASC").Find(&checkins).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading check-ins: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": BuildProgress(checkins, eventDate)})
}
