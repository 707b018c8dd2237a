// Package seed fills a store with synthetic fleet data so the dashboard has
// something to render without a live ingestion feed.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

var locations = []string{
	"San Francisco, CA",
	"Oakland, CA",
	"Berkeley, CA",
	"Palo Alto, CA",
	"San Jose, CA",
	"Mountain View, CA",
	"Sunnyvale, CA",
	"Redwood City, CA",
	"Santa Clara, CA",
	"Fremont, CA",
}

var fleet = []models.Vehicle{
	{VehicleID: "V001", Name: "TATA Nexon", Model: "Nexon", Year: 2022, Status: models.StatusOnline},
	{VehicleID: "V002", Name: "BMW i4", Model: "i4", Year: 2023, Status: models.StatusOffline},
	{VehicleID: "V003", Name: "Audi Q1", Model: "Q1", Year: 2022, Status: models.StatusOnline},
	{VehicleID: "V004", Name: "Ford Mustang", Model: "Mustang", Year: 2023, Status: models.StatusOffline},
	{VehicleID: "V005", Name: "Chevrolet Bolt", Model: "Bolt", Year: 2022, Status: models.StatusOnline},
}

// Run seeds the fleet: for each vehicle a chronological event stream driven
// by an ignition state machine, trips closed on every ignition-off, and
// seven daily stat rows.
func Run(ctx context.Context, store storage.Storage) error {
	log.Info("Seeding synthetic fleet data")

	for _, vehicle := range fleet {
		if _, err := store.CreateVehicle(ctx, vehicle); err != nil {
			return fmt.Errorf("failed to seed vehicle %s: %w", vehicle.VehicleID, err)
		}
		if err := seedVehicle(ctx, store, vehicle.VehicleID); err != nil {
			return err
		}
	}

	log.WithField("vehicles", len(fleet)).Info("Seed data ready")
	return nil
}

func seedVehicle(ctx context.Context, store storage.Storage, vehicleID string) error {
	totalEvents := randomInt(30, 50)
	batteryLevel := randomInt(60, 95)
	odometer := randomInt(10000, 50000)
	ignitionOn := false
	currentLocation := randomItem(locations)

	var tripStart *models.VehicleEvent

	// Walk forward from two weeks ago, 1-4 hours per step.
	eventTime := time.Now().AddDate(0, 0, -14)

	for i := 0; i < totalEvents; i++ {
		eventTime = eventTime.Add(time.Duration(randomInt(1, 4)) * time.Hour)

		var eventType models.EventType
		switch {
		case !ignitionOn && rand.Float64() > 0.3:
			eventType = models.EventIgnitionOn
			ignitionOn = true
		case ignitionOn && rand.Float64() > 0.6:
			eventType = models.EventIgnitionOff
			ignitionOn = false
			if tripStart != nil {
				distance := randomInt(5, 30)
				odometer += distance
				duration := randomInt(10, 60)
				batteryLevel = max(30, batteryLevel-randomInt(1, 10))

				trip := models.Trip{
					VehicleID:     vehicleID,
					StartTime:     tripStart.Timestamp,
					EndTime:       eventTime,
					StartLocation: tripStart.Location,
					EndLocation:   currentLocation,
					Distance:      distance,
					Duration:      duration,
					AvgSpeed:      int(float64(distance) / (float64(duration) / 60)),
					EnergyUsed:    randomInt(5, 15),
				}
				if _, err := store.CreateTrip(ctx, trip); err != nil {
					return fmt.Errorf("failed to seed trip for %s: %w", vehicleID, err)
				}
				tripStart = nil
				currentLocation = randomItem(locations)
			}
		default:
			eventType = models.EventTimeInterval
			if ignitionOn {
				odometer += randomInt(1, 5)
				batteryLevel = max(30, batteryLevel-randomInt(0, 2))
			} else if rand.Float64() > 0.7 {
				// parked and charging
				batteryLevel = min(100, batteryLevel+randomInt(1, 5))
			}
		}

		speed := 0
		if ignitionOn {
			speed = randomInt(0, 120)
		}

		event := models.VehicleEvent{
			VehicleID:    vehicleID,
			Timestamp:    eventTime,
			EventType:    eventType,
			Location:     currentLocation,
			Speed:        speed,
			BatteryLevel: batteryLevel,
			Odometer:     odometer,
			Efficiency:   randomInt(75, 95),
			Temperature:  randomInt(18, 28),
			Data: models.EventData{
				MotorHealth:    randomItem([]string{"Excellent", "Good", "Normal"}),
				BrakeHealth:    randomItem([]string{"Excellent", "Good", "Normal"}),
				TiresPressure:  randomItem([]string{"Optimal", "Normal", "Low"}),
				EstimatedRange: batteryLevel * 38 / 10,
				Alerts:         []string{},
			},
		}

		created, err := store.CreateVehicleEvent(ctx, event)
		if err != nil {
			return fmt.Errorf("failed to seed event for %s: %w", vehicleID, err)
		}
		if eventType == models.EventIgnitionOn {
			tripStart = created
		}
	}

	for day := 0; day < 7; day++ {
		stats := models.VehicleStats{
			VehicleID:     vehicleID,
			Date:          time.Now().AddDate(0, 0, -day),
			TotalDistance: randomInt(20, 150),
			AvgSpeed:      randomInt(30, 70),
			AvgEfficiency: randomInt(75, 95),
			TripCount:     randomInt(1, 6),
		}
		if _, err := store.CreateVehicleStats(ctx, stats); err != nil {
			return fmt.Errorf("failed to seed stats for %s: %w", vehicleID, err)
		}
	}

	return nil
}

// randomInt returns a random int in [min, max], both inclusive.
func randomInt(minVal, maxVal int) int {
	return rand.Intn(maxVal-minVal+1) + minVal
}

func randomItem(items []string) string {
	return items[rand.Intn(len(items))]
}
