package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vip_transport/internal/models"
)

func trackingRouter(department string) *gin.Engine {
	r := gin.New()
	r.Use(authAs(1, "staff", department))
	r.GET("/tracking/drivers", TrackDrivers)
	return r
}

func seedCheckin(t *testing.T, db *gorm.DB, assignment models.Assignment, checkinType string, ts time.Time, mutate func(*models.Checkin)) models.Checkin {
	t.Helper()
	checkin := models.Checkin{
		DriverID:     assignment.DriverID,
		AssignmentID: assignment.ID,
		CheckinType:  checkinType,
		Timestamp:    ts,
	}
	if mutate != nil {
		mutate(&checkin)
	}
	require.NoError(t, db.Create(&checkin).Error)
	return checkin
}

func TestTrackDriversStatusFromLatestCheckin(t *testing.T) {
	db := setupTestDB(t)
	driver := seedDriver(t, db, "amina", nil)
	vehicle := seedVehicle(t, db, "KDA 001A")
	vip := seedVIP(t, db, "Minister Okello")
	assignment := seedAssignment(t, db, driver, vehicle, &vip)
	router := trackingRouter("")

	base := time.Now().Add(-2 * time.Hour)
	lat, lng := -1.2921, 36.8219
	date := time.Now().Format("2006-01-02")
	seedCheckin(t, db, assignment, models.CheckinAirportArrival, base, nil)
	seedCheckin(t, db, assignment, models.CheckinHotelToVenue, base.Add(time.Hour), func(ci *models.Checkin) {
		ci.IsDailyCheckin = true
		ci.EventDate = &date
		ci.Latitude = &lat
		ci.Longitude = &lng
		ci.Notes = "traffic on Mombasa Road"
	})

	w := doJSON(t, router, "GET", "/tracking/drivers", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})

	assert.Equal(t, "En Route to Venue", entry["current_status"])

	latest := entry["latest_checkin"].(map[string]interface{})
	assert.Equal(t, models.CheckinHotelToVenue, latest["checkin_type"])
	assert.Equal(t, "traffic on Mombasa Road", latest["notes"])

	location := entry["location"].(map[string]interface{})
	assert.InDelta(t, lat, location["latitude"].(float64), 1e-9)
	assert.InDelta(t, lng, location["longitude"].(float64), 1e-9)

	vehicleOut := entry["vehicle"].(map[string]interface{})
	assert.Equal(t, "KDA 001A", vehicleOut["registration"])
	vipOut := entry["vip"].(map[string]interface{})
	assert.Equal(t, "Minister Okello", vipOut["name"])
	assert.Contains(t, vipOut, "title")

	progress := entry["progress"].(map[string]interface{})
	oneTime := progress["one_time"].(map[string]interface{})
	airport := oneTime[models.CheckinAirportArrival].(map[string]interface{})
	assert.Equal(t, true, airport["completed"])
}

func TestTrackDriversFallbackStatuses(t *testing.T) {
	db := setupTestDB(t)
	driver := seedDriver(t, db, "amina", nil)
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := trackingRouter("")

	w := doJSON(t, router, "GET", "/tracking/drivers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entry := decodeBody(t, w)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Scheduled", entry["current_status"])
	assert.Nil(t, entry["latest_checkin"])

	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", assignment.ID).
		Update("status", models.AssignmentStatusActive).Error)
	w = doJSON(t, router, "GET", "/tracking/drivers", nil)
	entry = decodeBody(t, w)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Available", entry["current_status"])

	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", assignment.ID).
		Update("status", models.AssignmentStatusCompleted).Error)
	w = doJSON(t, router, "GET", "/tracking/drivers", nil)
	entry = decodeBody(t, w)["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Completed", entry["current_status"])
}

func TestTrackDriversRedactsForTrackingDepartment(t *testing.T) {
	db := setupTestDB(t)
	driver := seedDriver(t, db, "amina", nil)
	vehicle := seedVehicle(t, db, "KDA 001A")
	vip := seedVIP(t, db, "Minister Okello")
	assignment := seedAssignment(t, db, driver, vehicle, &vip)

	date := time.Now().Format("2006-01-02")
	session := "morning"
	seedCheckin(t, db, assignment, models.CheckinHotelToVenue, time.Now(), func(ci *models.Checkin) {
		ci.IsDailyCheckin = true
		ci.EventDate = &date
		ci.SessionID = &session
		ci.Notes = "confidential routing detail"
	})

	router := trackingRouter(models.DepartmentTracking)
	w := doJSON(t, router, "GET", "/tracking/drivers", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entry := decodeBody(t, w)["data"].([]interface{})[0].(map[string]interface{})

	assert.NotContains(t, entry, "vehicle")

	vipOut := entry["vip"].(map[string]interface{})
	assert.Equal(t, "Minister Okello", vipOut["name"])
	assert.NotContains(t, vipOut, "title")

	latest := entry["latest_checkin"].(map[string]interface{})
	assert.NotContains(t, latest, "session_id")
	assert.NotContains(t, latest, "notes")
	assert.Equal(t, models.CheckinHotelToVenue, latest["checkin_type"])

	progress := entry["progress"].(map[string]interface{})
	daily := progress["daily"].(map[string]interface{})
	hotelToVenue := daily[models.CheckinHotelToVenue].(map[string]interface{})
	assert.Equal(t, true, hotelToVenue["completed"])
	assert.Nil(t, hotelToVenue["sessions"])
}

func TestTrackDriversFilters(t *testing.T) {
	db := setupTestDB(t)
	d1 := seedDriver(t, db, "amina", nil)
	d2 := seedDriver(t, db, "brian", nil)
	v1 := seedVehicle(t, db, "KDA 001A")
	v2 := seedVehicle(t, db, "KDB 002B")
	a1 := seedAssignment(t, db, d1, v1, nil)
	seedAssignment(t, db, d2, v2, nil)
	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", a1.ID).
		Update("status", models.AssignmentStatusActive).Error)
	router := trackingRouter("")

	w := doJSON(t, router, "GET", "/tracking/drivers?status=active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"].([]interface{}), 1)

	w = doJSON(t, router, "GET", fmt.Sprintf("/tracking/drivers?driver_id=%d", d2.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, entries, 1)
	driverOut := entries[0].(map[string]interface{})["driver"].(map[string]interface{})
	assert.Equal(t, "brian", driverOut["name"])

	w = doJSON(t, router, "GET", "/tracking/drivers?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
