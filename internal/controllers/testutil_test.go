package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
)

// setupTestDB points the global handle at a fresh in-memory sqlite
// database, named per test so state never bleeds between tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	config.DB = db
	return db
}

// authAs mimics the JWT middleware: claims land in the gin context the
// same way RequireAuth stores them.
func authAs(userID uint, role, department string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", float64(userID))
		c.Set("role", role)
		c.Set("department", department)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// Seed helpers. Each returns the persisted record.

func seedDriver(t *testing.T, db *gorm.DB, name string, userID *uint) models.Driver {
	t.Helper()
	driver := models.Driver{
		Name:          name,
		Email:         name + "@drivers.test",
		Phone:         "0700000000",
		LicenseNumber: "LIC-" + name,
		Status:        models.DriverStatusActive,
		UserID:        userID,
	}
	require.NoError(t, db.Create(&driver).Error)
	return driver
}

func seedDriverWithUser(t *testing.T, db *gorm.DB, name string) (models.Driver, models.User) {
	t.Helper()
	user := models.User{
		Name:  name,
		Email: name + "@users.test",
		Role:  models.RoleDriver,
	}
	require.NoError(t, db.Create(&user).Error)
	driver := seedDriver(t, db, name, &user.ID)
	return driver, user
}

func seedVehicle(t *testing.T, db *gorm.DB, registration string) models.Vehicle {
	t.Helper()
	vehicle := models.Vehicle{
		Make:         "Toyota",
		VehicleModel: "Land Cruiser",
		Registration: registration,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return vehicle
}

func seedVIP(t *testing.T, db *gorm.DB, name string) models.VIP {
	t.Helper()
	vip := models.VIP{Name: name, ArrivalAirport: "JKIA", ArrivalTerminal: "1A"}
	require.NoError(t, db.Create(&vip).Error)
	return vip
}

func seedAssignment(t *testing.T, db *gorm.DB, driver models.Driver, vehicle models.Vehicle, vip *models.VIP) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		DriverID:  driver.ID,
		VehicleID: vehicle.ID,
		StartTime: time.Now(),
		Status:    models.AssignmentStatusScheduled,
	}
	if vip != nil {
		assignment.VIPID = &vip.ID
	}
	require.NoError(t, db.Create(&assignment).Error)

	// Mirror what the create endpoint does with back-references.
	require.NoError(t, db.Model(&models.Vehicle{}).Where("id = ?", vehicle.ID).
		Update("current_driver_id", driver.ID).Error)
	if vip != nil {
		require.NoError(t, db.Model(&models.VIP{}).Where("id = ?", vip.ID).
			Update("assigned_driver_id", driver.ID).Error)
	}
	return assignment
}

func init() {
	gin.SetMode(gin.TestMode)
}
