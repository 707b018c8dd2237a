package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/evlink/vehicle-telemetry/internal/dashboard"
	"github.com/evlink/vehicle-telemetry/internal/middleware"
	"github.com/evlink/vehicle-telemetry/internal/query"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

// App holds the store and the derived services so the router can be rebuilt
// in tests.
type App struct {
	Store storage.Storage
}

// NewRouter creates the mux router with all the API routes.
func (a *App) NewRouter() *mux.Router {
	engine := query.NewEngine(a.Store)
	service := dashboard.NewService(a.Store)

	v := Vehicles{Store: a.Store}
	e := Events{Store: a.Store, Engine: engine}
	t := Trips{Store: a.Store}
	st := Stats{Store: a.Store}
	d := Dashboard{Service: service}

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	r.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/vehicles", v.List).Methods(http.MethodGet)
	api.HandleFunc("/vehicles", v.Create).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{vehicleId}", v.Get).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{vehicleId}/status", v.UpdateStatus).Methods(http.MethodPatch)

	api.HandleFunc("/events", e.List).Methods(http.MethodGet)
	api.HandleFunc("/events", e.Create).Methods(http.MethodPost)
	api.HandleFunc("/events/vehicle/{vehicleId}", e.ByVehicle).Methods(http.MethodGet)
	api.HandleFunc("/events/type/{eventType}", e.ByType).Methods(http.MethodGet)
	api.HandleFunc("/events/timeframe", e.ByTimeframe).Methods(http.MethodGet)
	api.HandleFunc("/events/filter", e.Filter).Methods(http.MethodGet)

	api.HandleFunc("/stats/{vehicleId}", st.ByVehicle).Methods(http.MethodGet)
	api.HandleFunc("/stats", st.Create).Methods(http.MethodPost)

	api.HandleFunc("/trips/{vehicleId}", t.Recent).Methods(http.MethodGet)
	api.HandleFunc("/trips", t.Create).Methods(http.MethodPost)
	api.HandleFunc("/trips/{id}", t.Update).Methods(http.MethodPut)

	api.HandleFunc("/status/{vehicleId}", d.Status).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/{vehicleId}", d.Data).Methods(http.MethodGet)

	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// storageError maps store sentinels to HTTP responses, with a 500 fallback
// for anything unexpected.
func storageError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, storage.ErrDuplicateVehicle):
		respondError(w, http.StatusConflict, "Vehicle already exists")
	default:
		log.WithError(err).Error("Storage operation failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseTimestamp accepts RFC 3339 timestamps and plain dates.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
