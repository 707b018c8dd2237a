package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

func testIngestor(t *testing.T) (*Ingestor, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	_, err := store.CreateVehicle(context.Background(), models.Vehicle{
		VehicleID: "V001",
		Name:      "Nissan Leaf",
		Model:     "Leaf",
		Year:      2022,
		Status:    models.StatusOffline,
	})
	require.NoError(t, err)
	return New(Config{Broker: "tcp://localhost:1883", ClientID: "test", Topic: "fleet/+/events"}, store), store
}

func telemetryEvent(vehicleID string, ts time.Time, eventType models.EventType, odometer, battery int) models.VehicleEvent {
	return models.VehicleEvent{
		VehicleID:    vehicleID,
		Timestamp:    ts,
		EventType:    eventType,
		Location:     "Oakland, CA",
		BatteryLevel: battery,
		Odometer:     odometer,
	}
}

func TestProcessEvent_AppendsToStore(t *testing.T) {
	ingestor, store := testIngestor(t)
	ctx := context.Background()

	err := ingestor.ProcessEvent(ctx, telemetryEvent("V001", time.Now(), models.EventTimeInterval, 10000, 80))
	require.NoError(t, err)

	events, err := store.GetVehicleEventsByVehicleID(ctx, "V001")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestProcessEvent_RejectsInvalidEvents(t *testing.T) {
	ingestor, store := testIngestor(t)
	ctx := context.Background()

	cases := []models.VehicleEvent{
		telemetryEvent("", time.Now(), models.EventTimeInterval, 0, 50),
		telemetryEvent("V001", time.Time{}, models.EventTimeInterval, 0, 50),
		telemetryEvent("V001", time.Now(), "REBOOT", 0, 50),
		telemetryEvent("V001", time.Now(), models.EventTimeInterval, 0, 120),
	}
	for _, event := range cases {
		assert.Error(t, ingestor.ProcessEvent(ctx, event))
	}

	events, err := store.GetAllVehicleEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events, "rejected events must not reach the store")
}

func TestProcessEvent_IgnitionCycleClosesTrip(t *testing.T) {
	ingestor, store := testIngestor(t)
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	on := telemetryEvent("V001", start, models.EventIgnitionOn, 10000, 80)
	on.Location = "San Francisco, CA"
	require.NoError(t, ingestor.ProcessEvent(ctx, on))

	vehicle, err := store.GetVehicleByID(ctx, "V001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, vehicle.Status)

	off := telemetryEvent("V001", start.Add(30*time.Minute), models.EventIgnitionOff, 10020, 72)
	require.NoError(t, ingestor.ProcessEvent(ctx, off))

	trips, err := store.GetTripsByVehicleID(ctx, "V001")
	require.NoError(t, err)
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.Equal(t, start, trip.StartTime)
	assert.Equal(t, start.Add(30*time.Minute), trip.EndTime)
	assert.Equal(t, "San Francisco, CA", trip.StartLocation)
	assert.Equal(t, "Oakland, CA", trip.EndLocation)
	assert.Equal(t, 20, trip.Distance)
	assert.Equal(t, 30, trip.Duration)
	assert.Equal(t, 40, trip.AvgSpeed)
	assert.Equal(t, 8, trip.EnergyUsed)

	vehicle, err = store.GetVehicleByID(ctx, "V001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, vehicle.Status)
}

func TestProcessEvent_IgnitionOffWithoutOpenTrip(t *testing.T) {
	ingestor, store := testIngestor(t)
	ctx := context.Background()

	err := ingestor.ProcessEvent(ctx, telemetryEvent("V001", time.Now(), models.EventIgnitionOff, 10000, 70))
	require.NoError(t, err)

	trips, err := store.GetTripsByVehicleID(ctx, "V001")
	require.NoError(t, err)
	assert.Empty(t, trips, "an unpaired ignition-off closes nothing")
}

func TestProcessEvent_UnknownVehicleStillStored(t *testing.T) {
	ingestor, store := testIngestor(t)
	ctx := context.Background()

	err := ingestor.ProcessEvent(ctx, telemetryEvent("V777", time.Now(), models.EventIgnitionOn, 500, 90))
	require.NoError(t, err)

	events, err := store.GetVehicleEventsByVehicleID(ctx, "V777")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
