package config

import (
	"os"
	"strconv"
)

// Config holds the runtime settings, all sourced from the environment.
type Config struct {
	// HTTP
	Port string

	// Storage ("memory" or "mongo")
	StoreBackend string
	MongoURI     string
	MongoDB      string

	// MQTT ingestion; disabled when the broker is empty
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Seed synthetic data at startup
	SeedOnStart bool
}

// Load reads the configuration from the environment with sensible defaults.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "telemetry"),
		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "telemetry-api"),
		MQTTTopic:    getEnv("MQTT_TOPIC", "fleet/+/events"),
		SeedOnStart:  getEnvBool("SEED_ON_START", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
