package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

func TestRun(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, Run(ctx, store))

	vehicles, err := store.GetAllVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, vehicles, 5)

	for _, vehicle := range vehicles {
		events, err := store.GetVehicleEventsByVehicleID(ctx, vehicle.VehicleID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(events), 30)
		assert.LessOrEqual(t, len(events), 50)

		for _, event := range events {
			assert.True(t, models.IsValidEventType(event.EventType))
			assert.GreaterOrEqual(t, event.BatteryLevel, 0)
			assert.LessOrEqual(t, event.BatteryLevel, 100)
			if event.EventType == models.EventIgnitionOff {
				assert.Zero(t, event.Speed, "speed must be 0 when ignition turns off")
			}
		}

		stats, err := store.GetVehicleStatsByVehicleID(ctx, vehicle.VehicleID)
		require.NoError(t, err)
		assert.Len(t, stats, 7)
	}
}

func TestRun_OdometerNeverDecreases(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, Run(ctx, store))

	events, err := store.GetVehicleEventsByVehicleID(ctx, "V001")
	require.NoError(t, err)

	// events are generated chronologically, so insertion order is time order
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Odometer, events[i-1].Odometer)
	}
}

func TestRun_FailsOnDuplicateSeed(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, Run(ctx, store))
	assert.Error(t, Run(ctx, store), "seeding twice collides on vehicle ids")
}
