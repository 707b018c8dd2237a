package models

import "time"

// Trip represents one ignition-on/ignition-off cycle of a vehicle. A trip is
// derived when an ignition-off event closes the open cycle and is immutable
// afterwards, apart from explicit corrections through UpdateTrip.
type Trip struct {
	ID            int       `bson:"id" json:"id"`
	VehicleID     string    `bson:"vehicle_id" json:"vehicleId"`
	StartTime     time.Time `bson:"start_time" json:"startTime"`
	EndTime       time.Time `bson:"end_time" json:"endTime"`
	StartLocation string    `bson:"start_location" json:"startLocation"`
	EndLocation   string    `bson:"end_location" json:"endLocation"`
	Distance      int       `bson:"distance" json:"distance"` // in kilometers
	Duration      int       `bson:"duration" json:"duration"` // in minutes
	AvgSpeed      int       `bson:"avg_speed" json:"avgSpeed"`
	EnergyUsed    int       `bson:"energy_used" json:"energyUsed"` // in kWh
}

// TripUpdate carries a partial correction for an existing trip. Nil fields
// are left untouched.
type TripUpdate struct {
	StartTime     *time.Time `json:"startTime,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	StartLocation *string    `json:"startLocation,omitempty"`
	EndLocation   *string    `json:"endLocation,omitempty"`
	Distance      *int       `json:"distance,omitempty"`
	Duration      *int       `json:"duration,omitempty"`
	AvgSpeed      *int       `json:"avgSpeed,omitempty"`
	EnergyUsed    *int       `json:"energyUsed,omitempty"`
}
