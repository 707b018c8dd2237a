// Package ingest bridges MQTT telemetry into the event store. Vehicles
// publish events on fleet/<vehicleId>/events; each message is validated,
// appended, and run through ignition tracking so trips close and the
// vehicle's connectivity status follows the ignition state.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

// Config describes the MQTT connection and subscription.
type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// Ingestor subscribes to the telemetry topic and feeds the store.
type Ingestor struct {
	store  storage.Storage
	client mqtt.Client
	cfg    Config

	mu        sync.Mutex
	openTrips map[string]models.VehicleEvent // vehicleId -> ignition-on event
}

// New builds an ingestor for the given broker and topic.
func New(cfg Config, store storage.Storage) *Ingestor {
	i := &Ingestor{
		store:     store,
		cfg:       cfg,
		openTrips: make(map[string]models.VehicleEvent),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.WithField("broker", cfg.Broker).Info("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	i.client = mqtt.NewClient(opts)
	return i
}

// Start connects to the broker and subscribes to the telemetry topic.
func (i *Ingestor) Start() error {
	token := i.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	token = i.client.Subscribe(i.cfg.Topic, i.cfg.QoS, i.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", i.cfg.Topic, err)
	}

	log.WithField("topic", i.cfg.Topic).Info("MQTT ingestion started")
	return nil
}

// Stop disconnects from the broker.
func (i *Ingestor) Stop() {
	i.client.Disconnect(250)
}

func (i *Ingestor) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var event models.VehicleEvent
	if err := json.Unmarshal(msg.Payload(), &event); err != nil {
		log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropping malformed telemetry message")
		return
	}

	if err := i.ProcessEvent(context.Background(), event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"topic":      msg.Topic(),
			"vehicle_id": event.VehicleID,
		}).Warn("Dropping telemetry event")
	}
}

// ProcessEvent validates and appends one event, then updates the ignition
// tracking state. Exported so the pipeline can be exercised without a
// broker.
func (i *Ingestor) ProcessEvent(ctx context.Context, event models.VehicleEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	created, err := i.store.CreateVehicleEvent(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}

	switch created.EventType {
	case models.EventIgnitionOn:
		i.mu.Lock()
		i.openTrips[created.VehicleID] = *created
		i.mu.Unlock()
		i.setVehicleStatus(ctx, created.VehicleID, models.StatusOnline)

	case models.EventIgnitionOff:
		i.mu.Lock()
		start, ok := i.openTrips[created.VehicleID]
		if ok {
			delete(i.openTrips, created.VehicleID)
		}
		i.mu.Unlock()

		if ok {
			if err := i.closeTrip(ctx, start, *created); err != nil {
				return err
			}
		}
		i.setVehicleStatus(ctx, created.VehicleID, models.StatusOffline)
	}

	return nil
}

// closeTrip derives a Trip from an ignition-on/ignition-off pair: distance
// from the odometer delta, duration from the timestamps, energy from the
// battery drop.
func (i *Ingestor) closeTrip(ctx context.Context, start, end models.VehicleEvent) error {
	distance := end.Odometer - start.Odometer
	if distance < 0 {
		distance = 0
	}
	duration := int(end.Timestamp.Sub(start.Timestamp).Minutes())
	avgSpeed := 0
	if duration > 0 {
		avgSpeed = int(float64(distance) / (float64(duration) / 60))
	}
	energyUsed := start.BatteryLevel - end.BatteryLevel
	if energyUsed < 0 {
		energyUsed = 0
	}

	trip := models.Trip{
		VehicleID:     end.VehicleID,
		StartTime:     start.Timestamp,
		EndTime:       end.Timestamp,
		StartLocation: start.Location,
		EndLocation:   end.Location,
		Distance:      distance,
		Duration:      duration,
		AvgSpeed:      avgSpeed,
		EnergyUsed:    energyUsed,
	}

	created, err := i.store.CreateTrip(ctx, trip)
	if err != nil {
		return fmt.Errorf("failed to store trip: %w", err)
	}

	log.WithFields(log.Fields{
		"vehicle_id": created.VehicleID,
		"trip_id":    created.ID,
		"distance":   created.Distance,
		"duration":   created.Duration,
	}).Info("Closed trip")
	return nil
}

// setVehicleStatus flips connectivity with the ignition state. Events for
// vehicles that were never registered are stored anyway, so a missing
// vehicle is not an error here.
func (i *Ingestor) setVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) {
	_, err := i.store.UpdateVehicleStatus(ctx, vehicleID, status)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.WithError(err).WithField("vehicle_id", vehicleID).Warn("Failed to update vehicle status")
	}
}
