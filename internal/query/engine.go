// Package query answers read-only filter queries over the event store.
package query

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/evlink/vehicle-telemetry/internal/models"
	"github.com/evlink/vehicle-telemetry/internal/storage"
)

// Filter is the predicate set for event queries. Zero-valued fields are
// inactive. The time range only applies when both bounds are present; a
// partial range filters nothing, matching the dashboard's policy that a date
// filter activates once both ends are chosen.
type Filter struct {
	VehicleID  string
	EventType  models.EventType
	StartTime  *time.Time
	EndTime    *time.Time
	SearchText string
}

// Engine filters events without mutating the store. All supplied predicates
// are ANDed; free-text search runs last, over the candidate set the
// structured filters left.
type Engine struct {
	store storage.Storage
}

// NewEngine creates a query engine backed by the given store.
func NewEngine(store storage.Storage) *Engine {
	return &Engine{store: store}
}

// FilterEvents returns every event matching the filter. Output order is the
// store's insertion order; callers that need timestamp order sort themselves.
func (e *Engine) FilterEvents(ctx context.Context, filter Filter) ([]models.VehicleEvent, error) {
	events, err := e.store.GetAllVehicleEvents(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.VehicleEvent, 0, len(events))
	for _, event := range events {
		if filter.VehicleID != "" && event.VehicleID != filter.VehicleID {
			continue
		}
		if filterByType(filter.EventType) && event.EventType != filter.EventType {
			continue
		}
		if filter.StartTime != nil && filter.EndTime != nil {
			if event.Timestamp.Before(*filter.StartTime) || event.Timestamp.After(*filter.EndTime) {
				continue
			}
		}
		filtered = append(filtered, event)
	}

	if filter.SearchText == "" {
		return filtered, nil
	}

	matched := make([]models.VehicleEvent, 0, len(filtered))
	for _, event := range filtered {
		if MatchesSearch(event, filter.SearchText) {
			matched = append(matched, event)
		}
	}
	return matched, nil
}

func filterByType(t models.EventType) bool {
	return t != "" && t != models.EventTypeAll
}

// MatchesSearch reports whether the event matches a case-insensitive
// substring search. Location and the health fields are checked first; the
// fallback matches against a full JSON serialization of the event, so the
// search is a best-effort superset match rather than a structured query.
func MatchesSearch(event models.VehicleEvent, search string) bool {
	needle := strings.ToLower(search)
	if needle == "" {
		return true
	}

	for _, field := range []string{
		event.Location,
		event.Data.MotorHealth,
		event.Data.BrakeHealth,
		event.Data.TiresPressure,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	serialized, err := json.Marshal(event)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(serialized)), needle)
}
