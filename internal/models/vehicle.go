package models

// VehicleStatus is the connectivity status of a vehicle.
type VehicleStatus string

const (
	StatusOnline  VehicleStatus = "ONLINE"
	StatusOffline VehicleStatus = "OFFLINE"
)

// IsValidStatus reports whether s is a known connectivity status.
func IsValidStatus(s VehicleStatus) bool {
	return s == StatusOnline || s == StatusOffline
}

// Vehicle represents a registered fleet vehicle.
type Vehicle struct {
	ID        int           `bson:"id" json:"id"`
	VehicleID string        `bson:"vehicle_id" json:"vehicleId"`
	Name      string        `bson:"name" json:"name"`
	Model     string        `bson:"model" json:"model"`
	Year      int           `bson:"year" json:"year"`
	Status    VehicleStatus `bson:"status" json:"status"` // "ONLINE" or "OFFLINE"
}
