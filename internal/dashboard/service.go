// Package dashboard derives the current-status and dashboard read-models
// from the raw event stream.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

// ErrNoEvents is returned when a vehicle has no events to derive a status
// from.
var ErrNoEvents = errors.New("no events found for vehicle")

const (
	recentTripCount  = 5
	weeklyStatsCount = 7
	recentEventCount = 10
)

// CurrentStatus is the instantaneous view of one vehicle, derived from its
// single most recent event. LatestTrip is nil when the vehicle has never
// completed a trip.
type CurrentStatus struct {
	Vehicle        *models.Vehicle     `json:"vehicle"`
	LatestEvent    models.VehicleEvent `json:"latestEvent"`
	LatestTrip     *models.Trip        `json:"latestTrip"`
	IgnitionStatus string              `json:"ignitionStatus"`
	Timestamp      time.Time           `json:"timestamp"`
}

// StatusSnapshot is the flattened telemetry block shown on the dashboard
// page, taken from the latest event.
type StatusSnapshot struct {
	BatteryLevel   int              `json:"batteryLevel"`
	Speed          int              `json:"speed"`
	Odometer       int              `json:"odometer"`
	Location       string           `json:"location"`
	IgnitionStatus string           `json:"ignitionStatus"`
	Timestamp      time.Time        `json:"timestamp"`
	Temperature    int              `json:"temperature"`
	Efficiency     int              `json:"efficiency"`
	Data           models.EventData `json:"data"`
}

// Data is the composed dashboard read-model for one vehicle.
type Data struct {
	Vehicle       models.Vehicle        `json:"vehicle"`
	CurrentStatus StatusSnapshot        `json:"currentStatus"`
	RecentTrips   []models.Trip         `json:"recentTrips"`
	WeeklyStats   []models.VehicleStats `json:"weeklyStats"`
	RecentEvents  []models.VehicleEvent `json:"recentEvents"`
}

// Service composes vehicle, event, trip and stats data into presentation
// read-models. It only reads; aggregation has no side effects.
type Service struct {
	store storage.Storage
}

// NewService creates a dashboard service backed by the given store.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// CurrentStatus derives the point-in-time status of a vehicle from its most
// recent event. It fails with ErrNoEvents when the vehicle has no events;
// a missing trip is normal and leaves LatestTrip nil.
func (s *Service) CurrentStatus(ctx context.Context, vehicleID string) (*CurrentStatus, error) {
	events, err := s.store.GetVehicleEventsByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	latest := latestEvent(events)

	vehicle, err := s.store.GetVehicleByID(ctx, vehicleID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	var latestTrip *models.Trip
	trips, err := s.store.GetRecentTripsByVehicleID(ctx, vehicleID, 1)
	if err != nil {
		return nil, err
	}
	if len(trips) > 0 {
		latestTrip = &trips[0]
	}

	return &CurrentStatus{
		Vehicle:        vehicle,
		LatestEvent:    latest,
		LatestTrip:     latestTrip,
		IgnitionStatus: ignitionStatus(latest),
		Timestamp:      latest.Timestamp,
	}, nil
}

// Dashboard assembles the dashboard read-model. A missing vehicle or an
// empty event stream aborts the aggregation; empty trips, stats and recent
// events are returned as empty sequences.
func (s *Service) Dashboard(ctx context.Context, vehicleID string) (*Data, error) {
	vehicle, err := s.store.GetVehicleByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	events, err := s.store.GetVehicleEventsByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	latest := latestEvent(events)

	trips, err := s.store.GetRecentTripsByVehicleID(ctx, vehicleID, recentTripCount)
	if err != nil {
		return nil, err
	}

	stats, err := s.store.GetVehicleStatsByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Date.After(stats[j].Date)
	})
	// Most recent rows by row count, not by distinct day. Duplicate dates
	// all count against the cap.
	if len(stats) > weeklyStatsCount {
		stats = stats[:weeklyStatsCount]
	}

	sortEventsNewestFirst(events)
	recent := events
	if len(recent) > recentEventCount {
		recent = recent[:recentEventCount]
	}

	return &Data{
		Vehicle: *vehicle,
		CurrentStatus: StatusSnapshot{
			BatteryLevel:   latest.BatteryLevel,
			Speed:          latest.Speed,
			Odometer:       latest.Odometer,
			Location:       latest.Location,
			IgnitionStatus: ignitionStatus(latest),
			Timestamp:      latest.Timestamp,
			Temperature:    latest.Temperature,
			Efficiency:     latest.Efficiency,
			Data:           latest.Data,
		},
		RecentTrips:  trips,
		WeeklyStats:  stats,
		RecentEvents: recent,
	}, nil
}

// ignitionStatus is ON only when the latest event is an ignition-on. A
// TIME_INTERVAL event recorded while parked reports OFF.
func ignitionStatus(latest models.VehicleEvent) string {
	if latest.EventType == models.EventIgnitionOn {
		return "ON"
	}
	return "OFF"
}

// latestEvent picks the event with the maximal timestamp. Insertion order is
// not timestamp order, so the scan is explicit; equal timestamps resolve to
// the highest insertion id to keep the reduction deterministic.
func latestEvent(events []models.VehicleEvent) models.VehicleEvent {
	latest := events[0]
	for _, e := range events[1:] {
		if e.Timestamp.After(latest.Timestamp) ||
			(e.Timestamp.Equal(latest.Timestamp) && e.ID > latest.ID) {
			latest = e
		}
	}
	return latest
}

func sortEventsNewestFirst(events []models.VehicleEvent) {
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		return events[i].ID > events[j].ID
	})
}
