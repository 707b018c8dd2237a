package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

func newStore(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	store := storage.NewMemoryStorage()
	_, err := store.CreateVehicle(context.Background(), models.Vehicle{
		VehicleID: "V001",
		Name:      "TATA Nexon",
		Model:     "Nexon",
		Year:      2022,
		Status:    models.StatusOnline,
	})
	require.NoError(t, err)
	return store
}

func addEvent(t *testing.T, store *storage.MemoryStorage, vehicleID string, ts time.Time, eventType models.EventType) models.VehicleEvent {
	t.Helper()
	created, err := store.CreateVehicleEvent(context.Background(), models.VehicleEvent{
		VehicleID:    vehicleID,
		Timestamp:    ts,
		EventType:    eventType,
		Location:     "San Jose, CA",
		Speed:        35,
		BatteryLevel: 72,
		Odometer:     15000,
		Efficiency:   85,
		Temperature:  22,
	})
	require.NoError(t, err)
	return *created
}

func TestCurrentStatus_PicksLatestByTimestamp(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// inserted out of timestamp order
	addEvent(t, store, "V001", base.Add(2*time.Hour), models.EventIgnitionOn)
	addEvent(t, store, "V001", base.Add(5*time.Hour), models.EventIgnitionOff)
	addEvent(t, store, "V001", base, models.EventTimeInterval)

	status, err := service.CurrentStatus(context.Background(), "V001")
	require.NoError(t, err)

	assert.Equal(t, base.Add(5*time.Hour), status.Timestamp)
	events, _ := store.GetVehicleEventsByVehicleID(context.Background(), "V001")
	for _, e := range events {
		assert.False(t, e.Timestamp.After(status.LatestEvent.Timestamp))
	}
}

func TestCurrentStatus_TimestampTieBreaksOnID(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	addEvent(t, store, "V001", ts, models.EventIgnitionOn)
	second := addEvent(t, store, "V001", ts, models.EventIgnitionOff)

	status, err := service.CurrentStatus(context.Background(), "V001")
	require.NoError(t, err)
	assert.Equal(t, second.ID, status.LatestEvent.ID)
	assert.Equal(t, "OFF", status.IgnitionStatus)
}

func TestCurrentStatus_IgnitionMapping(t *testing.T) {
	cases := []struct {
		eventType models.EventType
		want      string
	}{
		{models.EventIgnitionOn, "ON"},
		{models.EventIgnitionOff, "OFF"},
		{models.EventTimeInterval, "OFF"},
	}

	for _, tc := range cases {
		store := newStore(t)
		service := NewService(store)
		addEvent(t, store, "V001", time.Now(), tc.eventType)

		status, err := service.CurrentStatus(context.Background(), "V001")
		require.NoError(t, err)
		assert.Equal(t, tc.want, status.IgnitionStatus, "latest event %s", tc.eventType)
	}
}

func TestCurrentStatus_NoEvents(t *testing.T) {
	store := newStore(t)
	service := NewService(store)

	_, err := service.CurrentStatus(context.Background(), "V001")
	assert.ErrorIs(t, err, ErrNoEvents)
}

func TestCurrentStatus_MissingTripIsNotAnError(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	addEvent(t, store, "V001", time.Now(), models.EventIgnitionOn)

	status, err := service.CurrentStatus(context.Background(), "V001")
	require.NoError(t, err)
	assert.Nil(t, status.LatestTrip)
	assert.NotNil(t, status.Vehicle)
}

func TestDashboard_VehicleNotFound(t *testing.T) {
	service := NewService(storage.NewMemoryStorage())

	_, err := service.Dashboard(context.Background(), "V999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDashboard_NoEvents(t *testing.T) {
	store := newStore(t)
	service := NewService(store)

	_, err := service.Dashboard(context.Background(), "V001")
	assert.ErrorIs(t, err, ErrNoEvents)
}

func TestDashboard_EmptyTripsAndStatsAreEmptySequences(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	addEvent(t, store, "V001", time.Now(), models.EventIgnitionOn)

	data, err := service.Dashboard(context.Background(), "V001")
	require.NoError(t, err)
	assert.Empty(t, data.RecentTrips)
	assert.Empty(t, data.WeeklyStats)
	assert.Len(t, data.RecentEvents, 1)
}

func TestDashboard_RecentTripsNewestFirstCappedAtFive(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	addEvent(t, store, "V001", base, models.EventIgnitionOn)
	for day := 0; day < 8; day++ {
		_, err := store.CreateTrip(ctx, models.Trip{
			VehicleID: "V001",
			StartTime: base.AddDate(0, 0, day),
		})
		require.NoError(t, err)
	}

	data, err := service.Dashboard(ctx, "V001")
	require.NoError(t, err)
	require.Len(t, data.RecentTrips, 5)
	for i := 0; i < len(data.RecentTrips)-1; i++ {
		assert.True(t, data.RecentTrips[i].StartTime.After(data.RecentTrips[i+1].StartTime))
	}
	assert.Equal(t, base.AddDate(0, 0, 7), data.RecentTrips[0].StartTime)
}

func TestDashboard_WeeklyStatsCapCountsRowsNotDays(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	ctx := context.Background()
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	addEvent(t, store, "V001", today, models.EventIgnitionOn)
	// two rows per day over five days: the 7-row cap yields fewer than 7
	// distinct days, by design
	for day := 0; day < 5; day++ {
		for i := 0; i < 2; i++ {
			_, err := store.CreateVehicleStats(ctx, models.VehicleStats{
				VehicleID: "V001",
				Date:      today.AddDate(0, 0, -day),
			})
			require.NoError(t, err)
		}
	}

	data, err := service.Dashboard(ctx, "V001")
	require.NoError(t, err)
	require.Len(t, data.WeeklyStats, 7)

	days := map[string]bool{}
	for _, row := range data.WeeklyStats {
		days[row.Date.Format("2006-01-02")] = true
	}
	assert.Equal(t, 4, len(days))
}

func TestDashboard_RecentEventsNewestFirstCappedAtTen(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 13; i++ {
		addEvent(t, store, "V001", base.Add(time.Duration(i)*time.Hour), models.EventTimeInterval)
	}

	data, err := service.Dashboard(context.Background(), "V001")
	require.NoError(t, err)
	require.Len(t, data.RecentEvents, 10)
	assert.Equal(t, base.Add(12*time.Hour), data.RecentEvents[0].Timestamp)
	for i := 0; i < len(data.RecentEvents)-1; i++ {
		assert.True(t, data.RecentEvents[i].Timestamp.After(data.RecentEvents[i+1].Timestamp))
	}
}

func TestDashboard_StatusSnapshotComesFromLatestEvent(t *testing.T) {
	store := newStore(t)
	service := NewService(store)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	addEvent(t, store, "V001", base, models.EventIgnitionOn)
	latest, err := store.CreateVehicleEvent(ctx, models.VehicleEvent{
		VehicleID:    "V001",
		Timestamp:    base.Add(time.Hour),
		EventType:    models.EventIgnitionOff,
		Location:     "Oakland, CA",
		Speed:        0,
		BatteryLevel: 64,
		Odometer:     15220,
		Efficiency:   90,
		Temperature:  19,
		Data:         models.EventData{MotorHealth: "Good", EstimatedRange: 243},
	})
	require.NoError(t, err)

	data, err := service.Dashboard(ctx, "V001")
	require.NoError(t, err)
	assert.Equal(t, "OFF", data.CurrentStatus.IgnitionStatus)
	assert.Equal(t, latest.BatteryLevel, data.CurrentStatus.BatteryLevel)
	assert.Equal(t, latest.Odometer, data.CurrentStatus.Odometer)
	assert.Equal(t, latest.Location, data.CurrentStatus.Location)
	assert.Equal(t, latest.Data, data.CurrentStatus.Data)
	assert.Equal(t, "V001", data.Vehicle.VehicleID)
}
