package models

import "time"

// VehicleStats is a per-vehicle, per-day rollup used for chart time series.
// Rows are produced by an external aggregation job and only stored and
// queried here.
type VehicleStats struct {
	ID            int       `bson:"id" json:"id"`
	VehicleID     string    `bson:"vehicle_id" json:"vehicleId"`
	Date          time.Time `bson:"date" json:"date"`
	TotalDistance int       `bson:"total_distance" json:"totalDistance"` // in kilometers
	AvgSpeed      int       `bson:"avg_speed" json:"avgSpeed"`
	AvgEfficiency int       `bson:"avg_efficiency" json:"avgEfficiency"`
	TripCount     int       `bson:"trip_count" json:"tripCount"`
}
