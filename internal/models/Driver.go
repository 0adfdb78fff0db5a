// internal/models/driver.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Driver lifecycle. Self-registration creates a pending driver with no
// login account; approval provisions the User and flips the status.
const (
	DriverStatusPending  = "pending"
	DriverStatusApproved = "approved"
	DriverStatusActive   = "active"
	DriverStatusInactive = "inactive"
)

type Driver struct {
	gorm.Model
	UserID        *uint      `json:"user_id" gorm:"uniqueIndex"` // nil until approved
	User          *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name          string     `json:"name"`
	Email         string     `json:"email" gorm:"unique"`
	Phone         string     `json:"phone"`
	LicenseNumber string     `json:"license_number"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"`
	Languages     string     `json:"languages"`
	Status        string     `json:"status" gorm:"default:pending"` // pending/approved/active/inactive
}

// ValidDriverStatus reports whether s is one of the known driver statuses.
func ValidDriverStatus(s string) bool {
	switch s {
	case DriverStatusPending, DriverStatusApproved, DriverStatusActive, DriverStatusInactive:
		return true
	}
	return false
}
