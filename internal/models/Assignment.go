package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	AssignmentStatusScheduled = "scheduled"
	AssignmentStatusActive    = "active"
	AssignmentStatusCompleted = "completed"
)

// Assignment pairs one driver with one vehicle (and optionally one VIP)
// for a bounded time window. DriverID is set once at creation and never
// reassigned; moving the work to another driver means closing this
// assignment and opening a new one.
type Assignment struct {
	gorm.Model
	DriverID  uint     `json:"driver_id" gorm:"index;not null"`
	Driver    *Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	VehicleID uint     `json:"vehicle_id" gorm:"index;not null"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	VIPID     *uint    `json:"vip_id,omitempty" gorm:"index"`
	VIP       *VIP     `gorm:"foreignKey:VIPID" json:"vip,omitempty"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Status      string     `json:"status" gorm:"default:scheduled"` // scheduled/active/completed
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ValidAssignmentStatus reports whether s is a known lifecycle status.
func ValidAssignmentStatus(s string) bool {
	switch s {
	case AssignmentStatusScheduled, AssignmentStatusActive, AssignmentStatusCompleted:
		return true
	}
	return false
}

// assignmentTransitions is the full lifecycle table. A transition to the
// current status is always a permitted no-op and is not listed here.
// "completed" is terminal; "scheduled" may jump straight to "completed".
var assignmentTransitions = map[string][]string{
	AssignmentStatusScheduled: {AssignmentStatusActive, AssignmentStatusCompleted},
	AssignmentStatusActive:    {AssignmentStatusCompleted},
	AssignmentStatusCompleted: {},
}

// CanTransition reports whether moving from to next is allowed.
func CanTransition(from, next string) bool {
	if from == next {
		return true
	}
	for _, allowed := range assignmentTransitions[from] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError names both statuses, matching the API error text.
func InvalidTransitionError(from, next string) error {
	return fmt.Errorf("Invalid status transition from %s to %s", from, next)
}

// IsLive reports whether the assignment still holds its vehicle/VIP
// exclusively (scheduled or active).
func (a *Assignment) IsLive() bool {
	return a.Status == AssignmentStatusScheduled || a.Status == AssignmentStatusActive
}
