package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evlink/vehicle-telemetry/internal/models"
)

// MemoryStorage keeps every collection in process memory: a vehicle map keyed
// by vehicleId and append-only slices for events, stats and trips, each with
// its own surrogate-id counter. Ids are sequential per entity type, not
// globally unique. The HTTP server serves requests concurrently, so all
// access goes through an RWMutex.
type MemoryStorage struct {
	mu sync.RWMutex

	vehicles map[string]models.Vehicle
	events   []models.VehicleEvent
	stats    []models.VehicleStats
	trips    []models.Trip

	nextEventID int
	nextStatsID int
	nextTripID  int
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		vehicles:    make(map[string]models.Vehicle),
		nextEventID: 1,
		nextStatsID: 1,
		nextTripID:  1,
	}
}

// Vehicle operations

func (s *MemoryStorage) GetAllVehicles(ctx context.Context) ([]models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicles := make([]models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		vehicles = append(vehicles, v)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

func (s *MemoryStorage) GetVehicleByID(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicle, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, ErrNotFound
	}
	return &vehicle, nil
}

func (s *MemoryStorage) CreateVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[vehicle.VehicleID]; ok {
		return nil, ErrDuplicateVehicle
	}
	vehicle.ID = len(s.vehicles) + 1
	s.vehicles[vehicle.VehicleID] = vehicle
	return &vehicle, nil
}

func (s *MemoryStorage) UpdateVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, ErrNotFound
	}
	vehicle.Status = status
	s.vehicles[vehicleID] = vehicle
	return &vehicle, nil
}

// Vehicle event operations

func (s *MemoryStorage) GetAllVehicleEvents(ctx context.Context) ([]models.VehicleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.events, func(models.VehicleEvent) bool { return true }), nil
}

func (s *MemoryStorage) GetVehicleEventsByVehicleID(ctx context.Context, vehicleID string) ([]models.VehicleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.events, func(e models.VehicleEvent) bool {
		return e.VehicleID == vehicleID
	}), nil
}

func (s *MemoryStorage) GetVehicleEventsByType(ctx context.Context, eventType models.EventType) ([]models.VehicleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.events, func(e models.VehicleEvent) bool {
		return e.EventType == eventType
	}), nil
}

func (s *MemoryStorage) GetVehicleEventsByTimeframe(ctx context.Context, startTime, endTime time.Time) ([]models.VehicleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.events, func(e models.VehicleEvent) bool {
		return inRange(e.Timestamp, startTime, endTime)
	}), nil
}

func (s *MemoryStorage) GetVehicleEventsByVehicleAndTimeframe(ctx context.Context, vehicleID string, startTime, endTime time.Time) ([]models.VehicleEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEvents(s.events, func(e models.VehicleEvent) bool {
		return e.VehicleID == vehicleID && inRange(e.Timestamp, startTime, endTime)
	}), nil
}

func (s *MemoryStorage) CreateVehicleEvent(ctx context.Context, event models.VehicleEvent) (*models.VehicleEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.nextEventID
	s.nextEventID++
	s.events = append(s.events, copyEvent(event))
	return &event, nil
}

// Vehicle stats operations

func (s *MemoryStorage) GetVehicleStatsByVehicleID(ctx context.Context, vehicleID string) ([]models.VehicleStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]models.VehicleStats, 0)
	for _, row := range s.stats {
		if row.VehicleID == vehicleID {
			stats = append(stats, row)
		}
	}
	return stats, nil
}

func (s *MemoryStorage) CreateVehicleStats(ctx context.Context, stats models.VehicleStats) (*models.VehicleStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats.ID = s.nextStatsID
	s.nextStatsID++
	s.stats = append(s.stats, stats)
	return &stats, nil
}

// Trip operations

func (s *MemoryStorage) GetTripsByVehicleID(ctx context.Context, vehicleID string) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tripsForVehicle(vehicleID), nil
}

func (s *MemoryStorage) GetRecentTripsByVehicleID(ctx context.Context, vehicleID string, limit int) ([]models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trips := s.tripsForVehicle(vehicleID)
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].StartTime.After(trips[j].StartTime)
	})
	if limit >= 0 && len(trips) > limit {
		trips = trips[:limit]
	}
	return trips, nil
}

func (s *MemoryStorage) CreateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trip.ID = s.nextTripID
	s.nextTripID++
	s.trips = append(s.trips, trip)
	return &trip, nil
}

func (s *MemoryStorage) UpdateTrip(ctx context.Context, id int, update models.TripUpdate) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.trips {
		if s.trips[i].ID != id {
			continue
		}
		applyTripUpdate(&s.trips[i], update)
		trip := s.trips[i]
		return &trip, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) tripsForVehicle(vehicleID string) []models.Trip {
	trips := make([]models.Trip, 0)
	for _, t := range s.trips {
		if t.VehicleID == vehicleID {
			trips = append(trips, t)
		}
	}
	return trips
}

func applyTripUpdate(trip *models.Trip, update models.TripUpdate) {
	if update.StartTime != nil {
		trip.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		trip.EndTime = *update.EndTime
	}
	if update.StartLocation != nil {
		trip.StartLocation = *update.StartLocation
	}
	if update.EndLocation != nil {
		trip.EndLocation = *update.EndLocation
	}
	if update.Distance != nil {
		trip.Distance = *update.Distance
	}
	if update.Duration != nil {
		trip.Duration = *update.Duration
	}
	if update.AvgSpeed != nil {
		trip.AvgSpeed = *update.AvgSpeed
	}
	if update.EnergyUsed != nil {
		trip.EnergyUsed = *update.EnergyUsed
	}
}

// inRange reports whether t falls inside [start, end], inclusive on both
// bounds.
func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// copyEvent clones an event including its alerts slice, so a stored event
// cannot be mutated through a snapshot handed to a caller.
func copyEvent(e models.VehicleEvent) models.VehicleEvent {
	if e.Data.Alerts != nil {
		alerts := make([]string, len(e.Data.Alerts))
		copy(alerts, e.Data.Alerts)
		e.Data.Alerts = alerts
	}
	return e
}

func copyEvents(events []models.VehicleEvent, keep func(models.VehicleEvent) bool) []models.VehicleEvent {
	out := make([]models.VehicleEvent, 0)
	for _, e := range events {
		if keep(e) {
			out = append(out, copyEvent(e))
		}
	}
	return out
}
