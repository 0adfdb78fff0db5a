package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
)

// currentStatusLabels maps the latest check-in type to the label the
// dashboard shows. Legacy types stay here: old rows must still render.
var currentStatusLabels = map[string]string{
	models.CheckinAirportArrival: "At Airport",
	models.CheckinVIPPickup:      "VIP Picked Up",
	models.CheckinHotelToVenue:   "En Route to Venue",
	models.CheckinArrivedAtVenue: "At Venue",
	models.CheckinDepartingVenue: "Departing Venue",
	models.CheckinArrivedAtHotel: "At Hotel",
	models.CheckinCustom:         "Custom Check-in",
	models.CheckinEnrouteHotel:   "En Route to Hotel",
	models.CheckinHotelArrival:   "At Hotel",
	models.CheckinEventDeparture: "Departed Event",
}

type trackingLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type trackingCheckin struct {
	CheckinType string    `json:"checkin_type"`
	Timestamp   time.Time `json:"timestamp"`
	SessionID   *string   `json:"session_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	EventDate   *string   `json:"event_date,omitempty"`
}

type trackingEntry struct {
	Assignment    gin.H               `json:"assignment"`
	Driver        gin.H               `json:"driver"`
	Vehicle       gin.H               `json:"vehicle,omitempty"`
	VIP           gin.H               `json:"vip,omitempty"`
	CurrentStatus string              `json:"current_status"`
	LatestCheckin *trackingCheckin    `json:"latest_checkin,omitempty"`
	Location      *trackingLocation   `json:"location,omitempty"`
	Progress      *AssignmentProgress `json:"progress,omitempty"`
}

// TrackDrivers is the read-only dashboard projection: for each matching
// assignment it joins driver, vehicle, VIP, the most recent check-in and
// the aggregated progress, and derives a human status label. Callers in
// the tracking department get the redacted shape: no vehicle details, no
// check-in session/notes; the VIP name is always shown.
func TrackDrivers(c *gin.Context) {
	department, _ := c.Get("department")
	dept, _ := department.(string)
	redacted := dept == models.DepartmentTracking

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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading assignments: " + err.Error()})
		return
	}

	checkinType := c.Query("checkin_type")
	eventDate := c.Query("event_date")
	if eventDate == "" {
		eventDate = time.Now().Format("2006-01-02")
	}

	entries := make([]trackingEntry, 0, len(assignments))
	for i := range assignments {
		entry, err := buildTrackingEntry(&assignments[i], checkinType, eventDate, redacted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error building tracking view: " + err.Error()})
			return
		}
		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func buildTrackingEntry(assignment *models.Assignment, checkinType, eventDate string, redacted bool) (trackingEntry, error) {
	entry := trackingEntry{
		Assignment: gin.H{
			"id":         assignment.ID,
			"status":     assignment.Status,
			"start_time": assignment.StartTime,
			"end_time":   assignment.EndTime,
		},
	}

	if assignment.Driver != nil {
		entry.Driver = gin.H{
			"id":     assignment.Driver.ID,
			"name":   assignment.Driver.Name,
			"phone":  assignment.Driver.Phone,
			"status": assignment.Driver.Status,
		}
	}
	if assignment.Vehicle != nil && !redacted {
		entry.Vehicle = gin.H{
			"id":           assignment.Vehicle.ID,
			"make":         assignment.Vehicle.Make,
			"model":        assignment.Vehicle.VehicleModel,
			"registration": assignment.Vehicle.Registration,
		}
	}
	if assignment.VIP != nil {
		// VIP name is always shown, redacted view included.
		entry.VIP = gin.H{"id": assignment.VIP.ID, "name": assignment.VIP.Name}
		if !redacted {
			entry.VIP["title"] = assignment.VIP.Title
		}
	}

	latestQuery := config.DB.Where("assignment_id = ?", assignment.ID)
	if checkinType != "" {
		latestQuery = latestQuery.Where("checkin_type = ?", checkinType)
	}
	var latest models.Checkin
	err := latestQuery.Order("timestamp DESC").First(&latest).Error
	switch {
	case err == nil:
		entry.CurrentStatus = statusLabelFor(&latest)
		tc := &trackingCheckin{
			CheckinType: latest.CheckinType,
			Timestamp:   latest.Timestamp,
			EventDate:   latest.EventDate,
		}
		if !redacted {
			tc.SessionID = latest.SessionID
			tc.Notes = latest.Notes
		}
		entry.LatestCheckin = tc
		if latest.Latitude != nil && latest.Longitude != nil {
			entry.Location = &trackingLocation{Latitude: *latest.Latitude, Longitude: *latest.Longitude}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		switch assignment.Status {
		case models.AssignmentStatusActive:
			entry.CurrentStatus = "Available"
		case models.AssignmentStatusScheduled:
			entry.CurrentStatus = "Scheduled"
		default:
			entry.CurrentStatus = "Completed"
		}
	default:
		return entry, err
	}

	var history []models.Checkin
	if err := config.DB.Where("assignment_id = ? AND driver_id = ?", assignment.ID, assignment.DriverID).
		Order("timestamp ASC").Find(&history).Error; err != nil {
		return entry, err
	}
	progress := BuildProgress(history, eventDate)
	if redacted {
		redactProgress(&progress)
	}
	entry.Progress = &progress

	return entry, nil
}

func statusLabelFor(checkin *models.Checkin) string {
	if label, ok := currentStatusLabels[checkin.CheckinType]; ok {
		return label
	}
	return "Unknown"
}

// redactProgress strips session breakdowns and notes, leaving only the
// completed flags the tracking department is entitled to.
func redactProgress(progress *AssignmentProgress) {
	for t, daily := range progress.Daily {
		progress.Daily[t] = DailyTypeProgress{Completed: daily.Completed}
	}
	for t, once := range progress.OneTime {
		progress.OneTime[t] = OneTimeTypeProgress{Completed: once.Completed, Timestamp: once.Timestamp}
	}
	for i := range progress.Custom.Checkins {
		progress.Custom.Checkins[i].Notes = ""
	}
}
