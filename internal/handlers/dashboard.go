package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evlink/vehicle-telemetry/internal/dashboard"
)

// Dashboard handles the derived status and dashboard read-models.
type Dashboard struct {
	Service *dashboard.Service
}

// Status returns the current status of a vehicle, derived from its latest
// event.
func (h *Dashboard) Status(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicleId"]
	status, err := h.Service.CurrentStatus(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoEvents) {
			respondError(w, http.StatusNotFound, "No events found for this vehicle")
			return
		}
		storageError(w, err, "Vehicle not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": status})
}

// Data returns the composed dashboard read-model for a vehicle.
func (h *Dashboard) Data(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicleId"]
	data, err := h.Service.Dashboard(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoEvents) {
			respondError(w, http.StatusNotFound, "No events found for this vehicle")
			return
		}
		storageError(w, err, "Vehicle not found")
		return
	}
	respondJSON(w, http.StatusOK, data)
}
