package models

import (
	"time"

	"gorm.io/gorm"
)

// VIP is a passenger with a travel itinerary. Same single-owner rule as
// Vehicle: AssignedDriverID is written only by the assignment write path.
type VIP struct {
	gorm.Model
	Name  string `json:"name"`
	Title string `json:"title"`

	ArrivalDate       *time.Time `json:"arrival_date,omitempty"`
	ArrivalTime       string     `json:"arrival_time"`
	ArrivalAirport    string     `json:"arrival_airport"`
	ArrivalTerminal   string     `json:"arrival_terminal"`
	ArrivalFlightNo   string     `json:"arrival_flight_no"`
	DepartureDate     *time.Time `json:"departure_date,omitempty"`
	DepartureTime     string     `json:"departure_time"`
	DepartureAirport  string     `json:"departure_airport"`
	DepartureFlightNo string     `json:"departure_flight_no"`
	Notes             string     `json:"notes"`

	AssignedDriverID *uint `json:"assigned_driver_id,omitempty" gorm:"index"`
}
