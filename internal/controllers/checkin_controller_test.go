package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vip_transport/internal/models"
)

func driverRouter(userID uint) *gin.Engine {
	r := gin.New()
	r.Use(authAs(userID, "driver", ""))
	r.POST("/checkins", CreateCheckin)
	r.GET("/assignments/:id/checkins", ListMyCheckins)
	r.GET("/assignments/:id/progress", GetAssignmentProgress)
	return r
}

func TestDailyCheckinIdempotency(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	payload := gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinHotelToVenue,
		"event_date":    "2026-03-10",
		"session_id":    "morning",
	}

	w := doJSON(t, router, "POST", "/checkins", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Exact repeat conflicts, naming type, session and date.
	w = doJSON(t, router, "POST", "/checkins", payload)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already checked in for hotel_to_events_venue (morning) on 2026-03-10", decodeBody(t, w)["error"])

	// Another session on the same date is fine.
	payload["session_id"] = "evening"
	w = doJSON(t, router, "POST", "/checkins", payload)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Same session on another date is fine.
	payload["session_id"] = "morning"
	payload["event_date"] = "2026-03-11"
	w = doJSON(t, router, "POST", "/checkins", payload)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDailyCheckinDefaultSession(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	payload := gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinArrivedAtHotel,
		"event_date":    "2026-03-10",
	}
	w := doJSON(t, router, "POST", "/checkins", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "POST", "/checkins", payload)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already checked in for arrived_at_hotel (default) on 2026-03-10", decodeBody(t, w)["error"])
}

func TestOneTimeCheckinIdempotency(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	payload := gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinAirportArrival,
	}
	w := doJSON(t, router, "POST", "/checkins", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "POST", "/checkins", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCustomCheckinsNeverConflict(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	payload := gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinCustom,
		"custom_label":  "fuel stop",
	}
	for i := 0; i < 3; i++ {
		w := doJSON(t, router, "POST", "/checkins", payload)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	// But the label is mandatory.
	w := doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinCustom,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckinValidation(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	// Daily type without event_date.
	w := doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinHotelToVenue,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown type.
	w = doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  "nap_break",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Legacy types no longer accept writes.
	w = doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinEnrouteHotel,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckinOwnership(t *testing.T) {
	db := setupTestDB(t)
	_, user := seedDriverWithUser(t, db, "amina")
	other := seedDriver(t, db, "brian", nil)
	vehicle := seedVehicle(t, db, "KDA 001A")
	otherAssignment := seedAssignment(t, db, other, vehicle, nil)
	router := driverRouter(user.ID)

	w := doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": otherAssignment.ID,
		"checkin_type":  models.CheckinAirportArrival,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFirstCheckinActivatesAssignment(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	w := doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinAirportArrival,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got models.Assignment
	require.NoError(t, db.First(&got, assignment.ID).Error)
	require.Equal(t, models.AssignmentStatusActive, got.Status)
	require.NotNil(t, got.ActivatedAt)
	firstActivation := *got.ActivatedAt

	// A second check-in does not re-trigger activation.
	w = doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinVIPPickup,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.NoError(t, db.First(&got, assignment.ID).Error)
	assert.Equal(t, models.AssignmentStatusActive, got.Status)
	assert.True(t, got.ActivatedAt.Equal(firstActivation))
}

func TestFirstCheckinLeavesCompletedAlone(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	require.NoError(t, db.Model(&models.Assignment{}).Where("id = ?", assignment.ID).
		Update("status", models.AssignmentStatusCompleted).Error)
	router := driverRouter(user.ID)

	w := doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinAirportArrival,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got models.Assignment
	require.NoError(t, db.First(&got, assignment.ID).Error)
	assert.Equal(t, models.AssignmentStatusCompleted, got.Status)
	assert.Nil(t, got.ActivatedAt)
}

func TestProgressAggregation(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	date := "2026-03-10"
	for _, session := range []string{"morning", "evening"} {
		w := doJSON(t, router, "POST", "/checkins", gin.H{
			"assignment_id": assignment.ID,
			"checkin_type":  models.CheckinHotelToVenue,
			"event_date":    date,
			"session_id":    session,
			"notes":         session + " run",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w := doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinVIPPickup,
		"notes":         "picked up at terminal 1A",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinCustom,
		"custom_label":  "fuel stop",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "GET", fmt.Sprintf("/assignments/%d/progress?event_date=%s", assignment.ID, date), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	progress := decodeBody(t, w)["progress"].(map[string]interface{})
	assert.Equal(t, date, progress["event_date"])

	daily := progress["daily"].(map[string]interface{})
	hotelToVenue := daily[models.CheckinHotelToVenue].(map[string]interface{})
	assert.Equal(t, true, hotelToVenue["completed"])
	sessions := hotelToVenue["sessions"].(map[string]interface{})
	require.Len(t, sessions, 2)
	assert.Contains(t, sessions, "morning")
	assert.Contains(t, sessions, "evening")

	// Untouched daily type is present but incomplete.
	arrivedAtHotel := daily[models.CheckinArrivedAtHotel].(map[string]interface{})
	assert.Equal(t, false, arrivedAtHotel["completed"])

	oneTime := progress["one_time"].(map[string]interface{})
	vipPickup := oneTime[models.CheckinVIPPickup].(map[string]interface{})
	assert.Equal(t, true, vipPickup["completed"])
	assert.Equal(t, "picked up at terminal 1A", vipPickup["notes"])
	airport := oneTime[models.CheckinAirportArrival].(map[string]interface{})
	assert.Equal(t, false, airport["completed"])

	custom := progress["custom"].(map[string]interface{})
	assert.Equal(t, false, custom["completed"])
	customList := custom["checkins"].([]interface{})
	require.Len(t, customList, 1)
	assert.Equal(t, "fuel stop", customList[0].(map[string]interface{})["label"])
}

func TestProgressOtherDateIsEmpty(t *testing.T) {
	db := setupTestDB(t)
	driver, user := seedDriverWithUser(t, db, "amina")
	vehicle := seedVehicle(t, db, "KDA 001A")
	assignment := seedAssignment(t, db, driver, vehicle, nil)
	router := driverRouter(user.ID)

	w := doJSON(t, router, "POST", "/checkins", gin.H{
		"assignment_id": assignment.ID,
		"checkin_type":  models.CheckinHotelToVenue,
		"event_date":    "2026-03-10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, "GET", fmt.Sprintf("/assignments/%d/progress?event_date=2026-03-11", assignment.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decodeBody(t, w)["progress"].(map[string]interface{})
	daily := progress["daily"].(map[string]interface{})
	hotelToVenue := daily[models.CheckinHotelToVenue].(map[string]interface{})
	assert.Equal(t, false, hotelToVenue["completed"])
}
