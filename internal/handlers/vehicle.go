package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

// Vehicles handles the vehicle resource.
type Vehicles struct {
	Store storage.Storage
}

// List returns every registered vehicle.
func (h *Vehicles) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Store.GetAllVehicles(r.Context())
	if err != nil {
		storageError(w, err, "Vehicle not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"vehicles": vehicles})
}

// Get returns one vehicle by its vehicleId.
func (h *Vehicles) Get(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicleId"]
	vehicle, err := h.Store.GetVehicleByID(r.Context(), vehicleID)
	if err != nil {
		storageError(w, err, "Vehicle not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"vehicle": vehicle})
}

// Create registers a new vehicle. The vehicleId must be unused.
func (h *Vehicles) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle models.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if vehicle.VehicleID == "" {
		respondError(w, http.StatusBadRequest, "vehicleId is required")
		return
	}
	if vehicle.Status != "" && !models.IsValidStatus(vehicle.Status) {
		respondError(w, http.StatusBadRequest, "status must be ONLINE or OFFLINE")
		return
	}

	created, err := h.Store.CreateVehicle(r.Context(), vehicle)
	if err != nil {
		storageError(w, err, "Vehicle not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"vehicle": created})
}

// UpdateStatus replaces the connectivity status of a vehicle.
func (h *Vehicles) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicleId"]

	var body struct {
		Status models.VehicleStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !models.IsValidStatus(body.Status) {
		respondError(w, http.StatusBadRequest, "status must be ONLINE or OFFLINE")
		return
	}

	vehicle, err := h.Store.UpdateVehicleStatus(r.Context(), vehicleID, body.Status)
	if err != nil {
		storageError(w, err, "Vehicle not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"vehicle": vehicle})
}
