package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/evlink/vehicle-telemetry/internal/models"
)

// Locations cycled through by simulated vehicles.
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

var simModels = []struct {
	Name  string
	Model string
	Year  int
}{
	{"Tesla Model 3", "Model 3", 2023},
	{"Nissan Leaf", "Leaf", 2022},
	{"Hyundai Ioniq 5", "Ioniq 5", 2023},
	{"Kia EV6", "EV6", 2023},
	{"Volkswagen ID.4", "ID.4", 2022},
}

// vehicleState drives one simulated vehicle's ignition cycle.
type vehicleState struct {
	VehicleID    string
	IgnitionOn   bool
	BatteryLevel int
	Odometer     int
	Location     string
}

func registerVehicle(apiURL string, index int) (string, error) {
	profile := simModels[index%len(simModels)]
	vehicle := models.Vehicle{
		VehicleID: fmt.Sprintf("SIM%03d", index+1),
		Name:      profile.Name,
		Model:     profile.Model,
		Year:      profile.Year,
		Status:    models.StatusOffline,
	}

	data, err := json.Marshal(vehicle)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vehicle: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(apiURL+"/api/vehicles", "application/json", bytes.NewBuffer(data))
	if err != nil {
		return "", fmt.Errorf("failed to create vehicle: %w", err)
	}
	defer resp.Body.Close()

	// An existing simulated vehicle from a previous run is fine.
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return "", fmt.Errorf("vehicle creation failed with status: %d", resp.StatusCode)
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicle.VehicleID,
		"model":      vehicle.Model,
	}).Info("Registered vehicle")
	return vehicle.VehicleID, nil
}

// step advances the state machine one tick and returns the event to publish.
func (s *vehicleState) step(now time.Time) models.VehicleEvent {
	var eventType models.EventType
	switch {
	case !s.IgnitionOn && rand.Float64() > 0.3:
		eventType = models.EventIgnitionOn
		s.IgnitionOn = true
	case s.IgnitionOn && rand.Float64() > 0.6:
		eventType = models.EventIgnitionOff
		s.IgnitionOn = false
		s.Location = locations[rand.Intn(len(locations))]
	default:
		eventType = models.EventTimeInterval
		if s.IgnitionOn {
			s.Odometer += rand.Intn(5) + 1
			s.BatteryLevel = max(30, s.BatteryLevel-rand.Intn(3))
		} else if rand.Float64() > 0.7 {
			s.BatteryLevel = min(100, s.BatteryLevel+rand.Intn(5)+1)
		}
	}

	speed := 0
	if s.IgnitionOn {
		speed = rand.Intn(121)
	}

	return models.VehicleEvent{
		VehicleID:    s.VehicleID,
		Timestamp:    now,
		EventType:    eventType,
		Location:     s.Location,
		Speed:        speed,
		BatteryLevel: s.BatteryLevel,
		Odometer:     s.Odometer,
		Efficiency:   rand.Intn(21) + 75,
		Temperature:  rand.Intn(11) + 18,
		Data: models.EventData{
			MotorHealth:    "Good",
			BrakeHealth:    "Good",
			TiresPressure:  "Optimal",
			EstimatedRange: s.BatteryLevel * 38 / 10,
			Alerts:         []string{},
		},
	}
}

func main() {
	apiURL := getEnv("API_URL", "http://localhost:8080")
	broker := getEnv("MQTT_BROKER", "tcp://localhost:1883")
	vehicleCount := getEnvInt("SIM_VEHICLES", 3)
	tick := time.Duration(getEnvInt("SIM_TICK_SECONDS", 5)) * time.Second

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("telemetry-simulator")
	opts.SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	states := make([]*vehicleState, 0, vehicleCount)
	for i := 0; i < vehicleCount; i++ {
		vehicleID, err := registerVehicle(apiURL, i)
		if err != nil {
			log.WithError(err).Fatal("Failed to register vehicle")
		}
		states = append(states, &vehicleState{
			VehicleID:    vehicleID,
			BatteryLevel: rand.Intn(36) + 60,
			Odometer:     rand.Intn(40001) + 10000,
			Location:     locations[rand.Intn(len(locations))],
		})
	}

	log.WithFields(log.Fields{
		"vehicles": vehicleCount,
		"broker":   broker,
		"tick":     tick.String(),
	}).Info("Simulator running")

	for now := range time.Tick(tick) {
		for _, state := range states {
			event := state.step(now)
			payload, err := json.Marshal(event)
			if err != nil {
				log.WithError(err).Error("Failed to marshal event")
				continue
			}
			topic := fmt.Sprintf("fleet/%s/events", state.VehicleID)
			if token := client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
				log.WithError(token.Error()).WithField("topic", topic).Warn("Failed to publish event")
			}
		}
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
