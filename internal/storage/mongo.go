package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evlink/vehicle-telemetry/internal/models"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoStorage implements Storage on top of MongoDB. Surrogate ids stay
// sequential per entity type through an atomic counters collection, so the
// two backends assign identical ids for identical insert sequences.
type MongoStorage struct {
	db *mongo.Database
}

// NewMongoStorage wraps a Mongo database as a Storage.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{db: db}
}

func (s *MongoStorage) nextID(ctx context.Context, entity string) (int, error) {
	var counter struct {
		Seq int `bson:"seq"`
	}
	err := s.db.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": entity},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", entity, err)
	}
	return counter.Seq, nil
}

// Vehicle operations

func (s *MongoStorage) GetAllVehicles(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := s.db.Collection("vehicles").Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"id": 1}))
	if err != nil {
		return nil, err
	}
	vehicles := make([]models.Vehicle, 0)
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (s *MongoStorage) GetVehicleByID(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.db.Collection("vehicles").FindOne(ctx, bson.M{"vehicle_id": vehicleID}).Decode(&vehicle)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (s *MongoStorage) CreateVehicle(ctx context.Context, vehicle models.Vehicle) (*models.Vehicle, error) {
	count, err := s.db.Collection("vehicles").CountDocuments(ctx, bson.M{"vehicle_id": vehicle.VehicleID})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateVehicle
	}
	id, err := s.nextID(ctx, "vehicles")
	if err != nil {
		return nil, err
	}
	vehicle.ID = id
	if _, err := s.db.Collection("vehicles").InsertOne(ctx, vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (s *MongoStorage) UpdateVehicleStatus(ctx context.Context, vehicleID string, status models.VehicleStatus) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.db.Collection("vehicles").FindOneAndUpdate(
		ctx,
		bson.M{"vehicle_id": vehicleID},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&vehicle)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Vehicle event operations

func (s *MongoStorage) findEvents(ctx context.Context, filter bson.M) ([]models.VehicleEvent, error) {
	cursor, err := s.db.Collection("vehicle_events").Find(ctx, filter, options.Find().SetSort(bson.M{"id": 1}))
	if err != nil {
		return nil, err
	}
	events := make([]models.VehicleEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *MongoStorage) GetAllVehicleEvents(ctx context.Context) ([]models.VehicleEvent, error) {
	return s.findEvents(ctx, bson.M{})
}

func (s *MongoStorage) GetVehicleEventsByVehicleID(ctx context.Context, vehicleID string) ([]models.VehicleEvent, error) {
	return s.findEvents(ctx, bson.M{"vehicle_id": vehicleID})
}

func (s *MongoStorage) GetVehicleEventsByType(ctx context.Context, eventType models.EventType) ([]models.VehicleEvent, error) {
	return s.findEvents(ctx, bson.M{"event_type": eventType})
}

func (s *MongoStorage) GetVehicleEventsByTimeframe(ctx context.Context, startTime, endTime time.Time) ([]models.VehicleEvent, error) {
	return s.findEvents(ctx, bson.M{"timestamp": bson.M{"$gte": startTime, "$lte": endTime}})
}

func (s *MongoStorage) GetVehicleEventsByVehicleAndTimeframe(ctx context.Context, vehicleID string, startTime, endTime time.Time) ([]models.VehicleEvent, error) {
	return s.findEvents(ctx, bson.M{
		"vehicle_id": vehicleID,
		"timestamp":  bson.M{"$gte": startTime, "$lte": endTime},
	})
}

func (s *MongoStorage) CreateVehicleEvent(ctx context.Context, event models.VehicleEvent) (*models.VehicleEvent, error) {
	id, err := s.nextID(ctx, "vehicle_events")
	if err != nil {
		return nil, err
	}
	event.ID = id
	if _, err := s.db.Collection("vehicle_events").InsertOne(ctx, event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Vehicle stats operations

func (s *MongoStorage) GetVehicleStatsByVehicleID(ctx context.Context, vehicleID string) ([]models.VehicleStats, error) {
	cursor, err := s.db.Collection("vehicle_stats").Find(ctx, bson.M{"vehicle_id": vehicleID}, options.Find().SetSort(bson.M{"id": 1}))
	if err != nil {
		return nil, err
	}
	stats := make([]models.VehicleStats, 0)
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *MongoStorage) CreateVehicleStats(ctx context.Context, stats models.VehicleStats) (*models.VehicleStats, error) {
	id, err := s.nextID(ctx, "vehicle_stats")
	if err != nil {
		return nil, err
	}
	stats.ID = id
	if _, err := s.db.Collection("vehicle_stats").InsertOne(ctx, stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Trip operations

func (s *MongoStorage) GetTripsByVehicleID(ctx context.Context, vehicleID string) ([]models.Trip, error) {
	return s.findTrips(ctx, bson.M{"vehicle_id": vehicleID}, options.Find().SetSort(bson.M{"id": 1}))
}

func (s *MongoStorage) GetRecentTripsByVehicleID(ctx context.Context, vehicleID string, limit int) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.M{"start_time": -1})
	if limit >= 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return s.findTrips(ctx, bson.M{"vehicle_id": vehicleID}, opts)
}

func (s *MongoStorage) findTrips(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Trip, error) {
	cursor, err := s.db.Collection("trips").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	trips := make([]models.Trip, 0)
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (s *MongoStorage) CreateTrip(ctx context.Context, trip models.Trip) (*models.Trip, error) {
	id, err := s.nextID(ctx, "trips")
	if err != nil {
		return nil, err
	}
	trip.ID = id
	if _, err := s.db.Collection("trips").InsertOne(ctx, trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (s *MongoStorage) UpdateTrip(ctx context.Context, id int, update models.TripUpdate) (*models.Trip, error) {
	set := bson.M{}
	if update.StartTime != nil {
		set["start_time"] = *update.StartTime
	}
	if update.EndTime != nil {
		set["end_time"] = *update.EndTime
	}
	if update.StartLocation != nil {
		set["start_location"] = *update.StartLocation
	}
	if update.EndLocation != nil {
		set["end_location"] = *update.EndLocation
	}
	if update.Distance != nil {
		set["distance"] = *update.Distance
	}
	if update.Duration != nil {
		set["duration"] = *update.Duration
	}
	if update.AvgSpeed != nil {
		set["avg_speed"] = *update.AvgSpeed
	}
	if update.EnergyUsed != nil {
		set["energy_used"] = *update.EnergyUsed
	}

	var trip models.Trip
	var err error
	if len(set) == 0 {
		err = s.db.Collection("trips").FindOne(ctx, bson.M{"id": id}).Decode(&trip)
	} else {
		err = s.db.Collection("trips").FindOneAndUpdate(
			ctx,
			bson.M{"id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&trip)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}
