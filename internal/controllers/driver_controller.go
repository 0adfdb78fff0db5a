package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"vip_transport/internal/config"
	"vip_transport/internal/models"
	"vip_transport/internal/notifier"
)

type registerDriverInput struct {
	Name          string     `json:"name" binding:"required"`
	Email         string     `json:"email" binding:"required,email"`
	Phone         string     `json:"phone" binding:"required"`
	LicenseNumber string     `json:"license_number" binding:"required"`
	LicenseExpiry *time.Time `json:"license_expiry"`
	Languages     string     `json:"languages"`
}

// updateDriverInput lists the fields a coordinator can edit. Status moves
// through the approve/reject endpoints, not here.
type updateDriverInput struct {
	Name          *string    `json:"name"`
	Phone         *string    `json:"phone"`
	LicenseNumber *string    `json:"license_number"`
	LicenseExpiry *time.Time `json:"license_expiry"`
	Languages     *string    `json:"languages"`
}

// RegisterDriver is the public self-registration endpoint. The driver is
// created pending with no login; a coordinator approves or rejects later.
func RegisterDriver(c *gin.Context) {
	var input registerDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	driver := models.Driver{
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		LicenseNumber: input.LicenseNumber,
		LicenseExpiry: input.LicenseExpiry,
		Languages:     input.Languages,
		Status:        models.DriverStatusPending,
	}

	if err := config.DB.Create(&driver).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "a driver with this email is already registered"})
			return
		}
		logrus.WithError(err).Error("failed to create driver registration")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register driver"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"driver": driver})
}

// ListDrivers returns all drivers, optionally filtered by status.
func ListDrivers(c *gin.Context) {
	query := config.DB.Model(&models.Driver{})
	if status := c.Query("status"); status != "" {
		if !models.ValidDriverStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driver status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var drivers []models.Driver
	if err := query.Find(&drivers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing drivers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

func GetDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := config.DB.Preload("User").First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": driver})
}

func UpdateDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	var input updateDriverInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	if input.Name != nil {
		driver.Name = *input.Name
	}
	if input.Phone != nil {
		driver.Phone = *input.Phone
	}
	if input.LicenseNumber != nil {
		driver.LicenseNumber = *input.LicenseNumber
	}
	if input.LicenseExpiry != nil {
		driver.LicenseExpiry = input.LicenseExpiry
	}
	if input.Languages != nil {
		driver.Languages = *input.Languages
	}

	if err := config.DB.Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver updated successfully.", "driver": driver})
}

// ApproveDriver moves a pending driver to approved and provisions their
// login account in the same transaction. The temporary password is mailed
// to the driver; mail failure never fails the approval.
func ApproveDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	if driver.Status != models.DriverStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "only pending drivers can be approved"})
		return
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate credentials"})
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	user := models.User{
		Name:     driver.Name,
		Email:    driver.Email,
		Password: string(hashed),
		Phone:    driver.Phone,
		Role:     models.RoleDriver,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		driver.UserID = &user.ID
		driver.Status = models.DriverStatusApproved
		return tx.Save(&driver).Error
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "a login already exists for this email"})
			return
		}
		logrus.WithError(err).Error("driver approval transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not approve driver"})
		return
	}

	notifier.SendAsync(driver.Email, "Your driver registration was approved",
		fmt.Sprintf("Hello %s,\n\nYour registration has been approved. You can now log in with this email and the temporary password: %s\n\nPlease change it after your first login.", driver.Name, tempPassword))

	c.JSON(http.StatusOK, gin.H{"message": "Driver approved and login provisioned.", "driver": driver})
}

// RejectDriver marks a pending registration inactive.
func RejectDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	if driver.Status != models.DriverStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "only pending drivers can be rejected"})
		return
	}

	driver.Status = models.DriverStatusInactive
	if err := config.DB.Save(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver registration rejected.", "driver": driver})
}

// DeleteDriver refuses to remove a driver that is referenced anywhere:
// assignments, check-ins, observations, location updates or live
// back-references. The caller should deactivate instead.
func DeleteDriver(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid driver ID format."})
		return
	}

	var driver models.Driver
	if err := config.DB.First(&driver, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
		}
		return
	}

	refs := []struct {
		model interface{}
		where string
		what  string
	}{
		{&models.Assignment{}, "driver_id = ?", "assignments"},
		{&models.Checkin{}, "driver_id = ?", "check-ins"},
		{&models.VehicleObservation{}, "driver_id = ?", "vehicle observations"},
		{&models.LocationUpdate{}, "driver_id = ?", "location updates"},
		{&models.VIP{}, "assigned_driver_id = ?", "VIP assignments"},
		{&models.Vehicle{}, "current_driver_id = ?", "vehicle assignments"},
	}
	for _, ref := range refs {
		var count int64
		if err := config.DB.Model(ref.model).Where(ref.where, driver.ID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error: " + err.Error()})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("cannot delete driver with existing %s; deactivate the driver instead", ref.what),
			})
			return
		}
	}

	if err := config.DB.Delete(&driver).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete driver: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Driver deleted successfully."})
}

// driverForUser resolves the Driver record for the authenticated user, the
// way every driver-facing endpoint establishes identity.
func driverForUser(c *gin.Context) (*models.Driver, bool) {
	userID := uint(c.MustGet("user_id").(float64))

	var driver models.Driver
	if err := config.DB.Where("user_id = ?", userID).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Driver profile not found for the authenticated user."})
		} else {
			logrus.WithError(err).Error("failed to resolve driver for authenticated user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify authorization."})
		}
		return nil, false
	}
	return &driver, true
}

func generateTempPassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
