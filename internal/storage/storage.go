package storage

import (
	"context"
	"errors"
	"time"

	"github.com/evlink/vehicle-telemetry/internal/models"
)

var (
	// ErrNotFound is returned when a vehicle, trip or other record does not
	// exist. Absence is a normal outcome, not a failure of the store.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateVehicle is returned when creating a vehicle whose
	// vehicleId is already registered.
	ErrDuplicateVehicle = errors.New("vehicle id already exists")
)

// Storage is the persistence contract for the telemetry dashboard. The
// in-memory implementation is the default; a Mongo-backed one exists for
// deployments that want durability. All reads return snapshots, so callers
// can never mutate store state through a returned value.
type Storage interface {
	// Vehicle operations
	GetAllVehicles(ctx context.Context) ([]models.Vehicle, error)
	GetVehicleByID(ctx context.Context, vehicleID string) (*models.Vehicle, error)
	CreateVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error)
	UpdateVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) (*models.Vehicle, error)

	// Vehicle event operations
	GetAllVehicleEvents(ctx context.Context) ([]models.VehicleEvent, error)
	GetVehicleEventsByVehicleID(ctx context.Context, vehicleID string) ([]models.VehicleEvent, error)
	GetVehicleEventsByType(ctx context.Context, eventType models.EventType) ([]models.VehicleEvent, error)
	GetVehicleEventsByTimeframe(ctx context.Context, startTime, endTime time.Time) ([]models.VehicleEvent, error)
	GetVehicleEventsByVehicleAndTimeframe(ctx context.Context, vehicleID string, startTime, endTime time.Time) ([]models.VehicleEvent, error)
	CreateVehicleEvent(ctx context.Context, event models.VehicleEvent) (*models.VehicleEvent, error)

	// Vehicle stats operations
	GetVehicleStatsByVehicleID(ctx context.Context, vehicleID string) ([]models.VehicleStats, error)
	CreateVehicleStats(ctx context.Context, stats models.VehicleStats) (*models.VehicleStats, error)

	// Trip operations
	GetTripsByVehicleID(ctx context.Context, vehicleID string) ([]models.Trip, error)
	GetRecentTripsByVehicleID(ctx context.Context, vehicleID string, limit int) ([]models.Trip, error)
	CreateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error)
	UpdateTrip(ctx context.Context, id int, update models.TripUpdate) (*models.Trip, error)
}
