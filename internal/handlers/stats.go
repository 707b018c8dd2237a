package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

// Stats handles the daily rollup resource.
type Stats struct {
	Store storage.Storage
}

// ByVehicle returns every stats row for a vehicle.
func (h *Stats) ByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicleId"]
	stats, err := h.Store.GetVehicleStatsByVehicleID(r.Context(), vehicleID)
	if err != nil {
		storageError(w, err, "Stats not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// Create stores a rollup row produced by the external aggregation job.
func (h *Stats) Create(w http.ResponseWriter, r *http.Request) {
	var stats models.VehicleStats
	if err := json.NewDecoder(r.Body).Decode(&stats); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if stats.VehicleID == "" {
		respondError(w, http.StatusBadRequest, "vehicleId is required")
		return
	}

	created, err := h.Store.CreateVehicleStats(r.Context(), stats)
	if err != nil {
		storageError(w, err, "Stats not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"stats": created})
}
