package models

import "gorm.io/gorm"

const (
	ObservationPickup           = "pickup"
	ObservationDropoff          = "dropoff"
	ObservationMaintenanceIssue = "maintenance_issue"
)

// VehicleObservation is an append-only condition record a driver files
// against a hired vehicle during an assignment. No uniqueness; a driver
// may file as many as needed.
type VehicleObservation struct {
	gorm.Model
	VehicleID    uint     `json:"vehicle_id" gorm:"index;not null"`
	Vehicle      *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	AssignmentID uint     `json:"assignment_id" gorm:"index;not null"`
	DriverID     uint     `json:"driver_id" gorm:"index;not null"`

	ObservationType string  `json:"observation_type"` // pickup/dropoff/maintenance_issue
	Mileage         *int    `json:"mileage,omitempty"`
	FuelLevel       *string `json:"fuel_level,omitempty"`
	DamageNotes     string  `json:"damage_notes"`
	Photos          string  `json:"photos"` // comma separated URLs
}

// ValidObservationType reports whether s is a known observation tag.
func ValidObservationType(s string) bool {
	switch s {
	case ObservationPickup, ObservationDropoff, ObservationMaintenanceIssue:
		return true
	}
	return false
}
