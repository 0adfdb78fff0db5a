package models

import (
	"time"

	"gorm.io/gorm"
)

// Check-in taxonomy. Fixed at design time; the only user-extensible type
// is "custom", which carries a caller-supplied label and is unbounded.
const (
	// Daily types: one per event_date × session_id.
	CheckinHotelToVenue   = "hotel_to_events_venue"
	CheckinArrivedAtVenue = "arrived_at_events_venue"
	CheckinDepartingVenue = "departing_events_venue"
	CheckinArrivedAtHotel = "arrived_at_hotel"

	// One-time types: once per assignment.
	CheckinAirportArrival = "airport_arrival"
	CheckinVIPPickup      = "vip_pickup"

	// Unlimited.
	CheckinCustom = "custom"

	// Legacy types, accepted on read paths only.
	CheckinEnrouteHotel   = "enroute_hotel"
	CheckinHotelArrival   = "hotel_arrival"
	CheckinEventDeparture = "event_departure"
)

// CheckinClass is the behaviour of a check-in type: how duplicates are
// scoped and whether the type still accepts new writes.
type CheckinClass int

const (
	CheckinClassUnknown CheckinClass = iota
	CheckinClassDaily                // resets per event_date × session
	CheckinClassOneTime              // once per assignment
	CheckinClassUnlimited
	CheckinClassLegacy // read-only
)

var checkinClasses = map[string]CheckinClass{
	CheckinHotelToVenue:   CheckinClassDaily,
	CheckinArrivedAtVenue: CheckinClassDaily,
	CheckinDepartingVenue: CheckinClassDaily,
	CheckinArrivedAtHotel: CheckinClassDaily,
	CheckinAirportArrival: CheckinClassOneTime,
	CheckinVIPPickup:      CheckinClassOneTime,
	CheckinCustom:         CheckinClassUnlimited,
	CheckinEnrouteHotel:   CheckinClassLegacy,
	CheckinHotelArrival:   CheckinClassLegacy,
	CheckinEventDeparture: CheckinClassLegacy,
}

// DailyCheckinTypes and OneTimeCheckinTypes drive the progress summary;
// order here is the order the dashboard shows them in.
var DailyCheckinTypes = []string{
	CheckinHotelToVenue,
	CheckinArrivedAtVenue,
	CheckinDepartingVenue,
	CheckinArrivedAtHotel,
}

var OneTimeCheckinTypes = []string{
	CheckinAirportArrival,
	CheckinVIPPickup,
}

// ClassifyCheckin returns the class of a check-in type, or
// CheckinClassUnknown for a type outside the taxonomy.
func ClassifyCheckin(checkinType string) CheckinClass {
	return checkinClasses[checkinType]
}

// Checkin is an append-only event reported by a driver against an
// assignment. Rows are never updated; they are deleted only when the
// owning assignment is deleted. The classification flags are derived from
// the taxonomy above, never from caller input.
//
// The composite unique index backstops the duplicate rules for fully
// scoped daily rows. NULL event_date/session rows compare distinct under
// it, so the handler's read-then-insert inside the transaction remains
// the authoritative check for one-time and un-sessioned daily types.
type Checkin struct {
	gorm.Model
	DriverID     uint        `json:"driver_id" gorm:"not null;uniqueIndex:idx_checkin_scope,priority:2"`
	AssignmentID uint        `json:"assignment_id" gorm:"not null;index;uniqueIndex:idx_checkin_scope,priority:1"`
	Assignment   *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`

	CheckinType string    `json:"checkin_type" gorm:"index;uniqueIndex:idx_checkin_scope,priority:3"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Notes       string    `json:"notes"`
	Timestamp   time.Time `json:"timestamp"`

	// EventDate is a YYYY-MM-DD key; SessionID is a named sub-scope within
	// the day ("morning", "evening", ...); nil means the un-sessioned
	// default slot.
	IsDailyCheckin bool    `json:"is_daily_checkin"`
	EventDate      *string `json:"event_date,omitempty" gorm:"uniqueIndex:idx_checkin_scope,priority:4"`
	SessionID      *string `json:"session_id,omitempty" gorm:"uniqueIndex:idx_checkin_scope,priority:5"`
	CustomLabel    *string `json:"custom_label,omitempty"`
}
