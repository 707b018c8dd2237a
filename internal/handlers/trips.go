package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

const defaultTripLimit = 10

// Trips handles the trip resource.
type Trips struct {
	Store storage.Storage
}

// Recent returns the newest trips for a vehicle, capped at the limit query
// parameter (default 10).
func (h *Trips) Recent(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicleId"]

	limit := defaultTripLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	trips, err := h.Store.GetRecentTripsByVehicleID(r.Context(), vehicleID, limit)
	if err != nil {
		storageError(w, err, "Trips not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"trips": trips})
}

// Create records a completed trip.
func (h *Trips) Create(w http.ResponseWriter, r *http.Request) {
	var trip models.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if trip.VehicleID == "" {
		respondError(w, http.StatusBadRequest, "vehicleId is required")
		return
	}

	created, err := h.Store.CreateTrip(r.Context(), trip)
	if err != nil {
		storageError(w, err, "Trips not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"trip": created})
}

// Update applies a partial correction to an existing trip.
func (h *Trips) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "trip id must be an integer")
		return
	}

	var update models.TripUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	trip, err := h.Store.UpdateTrip(r.Context(), id, update)
	if err != nil {
		storageError(w, err, "Trip not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"trip": trip})
}
