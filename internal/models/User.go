package models

import "gorm.io/gorm"

// Role values accepted at signup. Drivers never sign up directly;
// their login is provisioned when a coordinator approves the registration.
const (
	RoleDriver      = "driver"
	RoleCoordinator = "coordinator"
	RoleAdmin       = "admin"
	RoleStaff       = "staff"
)

// DepartmentTracking marks users who only get the redacted tracking view.
const DepartmentTracking = "tracking"

type User struct {
	gorm.Model
	Name       string `json:"name"`
	Email      string `json:"email" gorm:"unique"`
	Password   string `json:"-"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`       // "driver", "coordinator", "admin", "staff"
	Department string `json:"department"` // e.g. "operations", "tracking"

	Driver *Driver `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"driver,omitempty"`
}
