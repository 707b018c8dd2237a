package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/evlink/vehicle-telemetry/internal/config"
	"github.com/evlink/vehicle-telemetry/internal/handlers"
	"github.com/evlink/vehicle-telemetry/internal/ingest"
	"github.com/evlink/vehicle-telemetry/internal/seed"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment")
	}
	cfg := config.Load()

	store, err := buildStorage(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize storage")
	}

	if cfg.SeedOnStart {
		if err := seed.Run(context.Background(), store); err != nil {
			log.WithError(err).Fatal("Failed to seed data")
		}
	}

	if cfg.MQTTBroker != "" {
		ingestor := ingest.New(ingest.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
			QoS:      1,
		}, store)
		if err := ingestor.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start MQTT ingestion")
		}
		defer ingestor.Stop()
	}

	app := handlers.App{Store: store}
	router := app.NewRouter()

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.WithError(err).Fatal("HTTP server stopped")
	}
}

func buildStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StoreBackend == "mongo" {
		client, err := storage.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		log.WithField("database", cfg.MongoDB).Info("Using MongoDB storage")
		return storage.NewMongoStorage(client.Database(cfg.MongoDB)), nil
	}
	log.Info("Using in-memory storage")
	return storage.NewMemoryStorage(), nil
}
