package models

import (
	"errors"
	"time"
)

// EventType classifies a telemetry event.
type EventType string

const (
	EventIgnitionOn   EventType = "IGNITION_ON"
	EventIgnitionOff  EventType = "IGNITION_OFF"
	EventTimeInterval EventType = "TIME_INTERVAL"

	// EventTypeAll is accepted by filters to mean "no type filtering".
	EventTypeAll EventType = "ALL"
)

// IsValidEventType reports whether t is one of the three known event types.
func IsValidEventType(t EventType) bool {
	return t == EventIgnitionOn || t == EventIgnitionOff || t == EventTimeInterval
}

// EventData holds the health and alert snapshot nested inside an event.
type EventData struct {
	MotorHealth    string   `bson:"motor_health" json:"motorHealth"`
	BrakeHealth    string   `bson:"brake_health" json:"brakeHealth"`
	TiresPressure  string   `bson:"tires_pressure" json:"tiresPressure"`
	EstimatedRange int      `bson:"estimated_range" json:"estimatedRange"`
	Alerts         []string `bson:"alerts" json:"alerts"`
}

// VehicleEvent is an immutable telemetry snapshot for one vehicle at one
// instant. Events are append-only; the store assigns the id on insertion.
type VehicleEvent struct {
	ID           int       `bson:"id" json:"id"`
	VehicleID    string    `bson:"vehicle_id" json:"vehicleId"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
	EventType    EventType `bson:"event_type" json:"eventType"` // "IGNITION_ON", "IGNITION_OFF" or "TIME_INTERVAL"
	Location     string    `bson:"location" json:"location"`
	Speed        int       `bson:"speed" json:"speed"`
	BatteryLevel int       `bson:"battery_level" json:"batteryLevel"` // 0-100
	Odometer     int       `bson:"odometer" json:"odometer"`
	Efficiency   int       `bson:"efficiency" json:"efficiency"`
	Temperature  int       `bson:"temperature" json:"temperature"`
	Data         EventData `bson:"data" json:"data"`
}

// Validate checks the basic shape of an incoming event before it is
// appended to the store.
func (e VehicleEvent) Validate() error {
	if e.VehicleID == "" {
		return errors.New("vehicleId is required")
	}
	if !IsValidEventType(e.EventType) {
		return errors.New("eventType must be IGNITION_ON, IGNITION_OFF or TIME_INTERVAL")
	}
	if e.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if e.BatteryLevel < 0 || e.BatteryLevel > 100 {
		return errors.New("batteryLevel must be between 0 and 100")
	}
	if e.Speed < 0 {
		return errors.New("speed must not be negative")
	}
	return nil
}
