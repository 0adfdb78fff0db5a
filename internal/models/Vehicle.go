// internal/models/vehicle.go
package models

import (
	"time"

	"gorm.io/gorm"
)

type Vehicle struct {
	gorm.Model
	Make         string `json:"make"`
	VehicleModel string `json:"vehicle_model" gorm:"column:vehicle_model"`
	Registration string `json:"registration" gorm:"unique"`

	// Condition snapshot taken when the hired vehicle is picked up from the
	// rental company, and optionally again at dropoff. Photos are URL strings,
	// comma separated; object storage itself lives elsewhere.
	PickupMileage   *int       `json:"pickup_mileage,omitempty"`
	PickupFuelGauge *string    `json:"pickup_fuel_gauge,omitempty"`
	PickupPhotos    string     `json:"pickup_photos"`
	PickupDate      *time.Time `json:"pickup_date,omitempty"`

	DropoffMileage   *int       `json:"dropoff_mileage,omitempty"`
	DropoffFuelGauge *string    `json:"dropoff_fuel_gauge,omitempty"`
	DropoffPhotos    string     `json:"dropoff_photos"`
	DropoffDate      *time.Time `json:"dropoff_date,omitempty"`

	// Back-reference maintained exclusively by the assignment write path.
	// Vehicle edit handlers must never touch this field.
	CurrentDriverID *uint `json:"current_driver_id,omitempty" gorm:"index"`
}
