package models

import (
	"time"

	"gorm.io/gorm"
)

// LocationUpdate is a point-in-time GPS fix reported by a driver's device.
// These feed the dashboard only as the most recent position; there is no
// streaming/replay concern.
type LocationUpdate struct {
	gorm.Model
	DriverID uint    `json:"driver_id" gorm:"index"`
	Driver   *Driver `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"` // GPS accuracy in meters
	Speed     float64 `json:"speed"`    // km/h
	Bearing   float64 `json:"bearing"`  // degrees

	IsMoving         bool      `json:"is_moving"`
	DistanceFromLast float64   `json:"distance_from_last"` // meters, from previous fix
	Timestamp        time.Time `json:"timestamp"`
	EventType        string    `json:"event_type"` // "start", "moving", "stopped", "idle"
}
