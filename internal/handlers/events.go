package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/query"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

// Events handles the telemetry event resource.
type Events struct {
	Store  storage.Storage
	Engine *query.Engine
}

// List returns every stored event.
func (h *Events) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.GetAllVehicleEvents(r.Context())
	if err != nil {
		storageError(w, err, "Events not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// ByVehicle returns all events for one vehicle.
func (h *Events) ByVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicleId"]
	events, err := h.Store.GetVehicleEventsByVehicleID(r.Context(), vehicleID)
	if err != nil {
		storageError(w, err, "Events not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// ByType returns all events of one type. Unknown types match nothing.
func (h *Events) ByType(w http.ResponseWriter, r *http.Request) {
	eventType := models.EventType(mux.Vars(r)["eventType"])
	events, err := h.Store.GetVehicleEventsByType(r.Context(), eventType)
	if err != nil {
		storageError(w, err, "Events not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// ByTimeframe returns events inside an inclusive time range. Both bounds are
// required and must parse.
func (h *Events) ByTimeframe(w http.ResponseWriter, r *http.Request) {
	startRaw := r.URL.Query().Get("startTime")
	endRaw := r.URL.Query().Get("endTime")
	if startRaw == "" || endRaw == "" {
		respondError(w, http.StatusBadRequest, "startTime and endTime are required")
		return
	}
	startTime, err := parseTimestamp(startRaw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "startTime must be a valid date string")
		return
	}
	endTime, err := parseTimestamp(endRaw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "endTime must be a valid date string")
		return
	}

	events, err := h.Store.GetVehicleEventsByTimeframe(r.Context(), startTime, endTime)
	if err != nil {
		storageError(w, err, "Events not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// Filter combines the optional vehicle, type, time-range and search
// predicates through the query engine.
func (h *Events) Filter(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	filter := query.Filter{
		VehicleID:  params.Get("vehicleId"),
		EventType:  models.EventType(params.Get("eventType")),
		SearchText: params.Get("search"),
	}

	if raw := params.Get("startTime"); raw != "" {
		startTime, err := parseTimestamp(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "startTime must be a valid date string")
			return
		}
		filter.StartTime = &startTime
	}
	if raw := params.Get("endTime"); raw != "" {
		endTime, err := parseTimestamp(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "endTime must be a valid date string")
			return
		}
		filter.EndTime = &endTime
	}

	events, err := h.Engine.FilterEvents(r.Context(), filter)
	if err != nil {
		storageError(w, err, "Events not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// Create appends a telemetry event.
func (h *Events) Create(w http.ResponseWriter, r *http.Request) {
	var event models.VehicleEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := event.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Store.CreateVehicleEvent(r.Context(), event)
	if err != nil {
		storageError(w, err, "Events not found")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"event": created})
}
