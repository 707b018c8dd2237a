package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() VehicleEvent {
	return VehicleEvent{
		VehicleID:    "V001",
		Timestamp:    time.Now(),
		EventType:    EventIgnitionOn,
		BatteryLevel: 80,
	}
}

func TestVehicleEventValidate(t *testing.T) {
	assert.NoError(t, validEvent().Validate())

	e := validEvent()
	e.VehicleID = ""
	assert.Error(t, e.Validate())

	e = validEvent()
	e.EventType = "REBOOT"
	assert.Error(t, e.Validate())

	e = validEvent()
	e.EventType = EventTypeAll
	assert.Error(t, e.Validate(), "ALL is a filter value, not an event type")

	e = validEvent()
	e.Timestamp = time.Time{}
	assert.Error(t, e.Validate())

	e = validEvent()
	e.BatteryLevel = 101
	assert.Error(t, e.Validate())

	e = validEvent()
	e.Speed = -1
	assert.Error(t, e.Validate())
}

// The JSON field names are the wire contract the dashboard client and the
// free-text search depend on.
func TestVehicleEventWireNames(t *testing.T) {
	event := VehicleEvent{
		VehicleID: "V001",
		EventType: EventTimeInterval,
		Data:      EventData{MotorHealth: "Good", EstimatedRange: 300, Alerts: []string{}},
	}
	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, name := range []string{
		"id", "vehicleId", "timestamp", "eventType", "location", "speed",
		"batteryLevel", "odometer", "efficiency", "temperature", "data",
	} {
		assert.Contains(t, fields, name)
	}

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(fields["data"], &data))
	for _, name := range []string{
		"motorHealth", "brakeHealth", "tiresPressure", "estimatedRange", "alerts",
	} {
		assert.Contains(t, data, name)
	}
}

func TestEnumValues(t *testing.T) {
	assert.Equal(t, "IGNITION_ON", string(EventIgnitionOn))
	assert.Equal(t, "IGNITION_OFF", string(EventIgnitionOff))
	assert.Equal(t, "TIME_INTERVAL", string(EventTimeInterval))
	assert.Equal(t, "ONLINE", string(StatusOnline))
	assert.Equal(t, "OFFLINE", string(StatusOffline))

	assert.True(t, IsValidEventType(EventIgnitionOn))
	assert.False(t, IsValidEventType(EventTypeAll))
	assert.True(t, IsValidStatus(StatusOffline))
	assert.False(t, IsValidStatus("PARKED"))
}
