package memo

import (
	"encoding/json"
	"net/http"
)

// DebugSnapshot is the JSON structure served by the debug handler.
type DebugSnapshot struct {
	Stats  DebugStats `json:"stats"`
	Owners []string   `json:"owners,omitempty"`
	Slots  int        `json:"slots"`
}

// DebugStats summarizes engine statistics for the debug endpoint.
type DebugStats struct {
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	HitRate       float64 `json:"hit_rate"`
	Invalidations int64   `json:"invalidations"`
	Teardowns     int64   `json:"teardowns"`
	Evictions     int64   `json:"evictions"`
	Owners        int64   `json:"owners"`
}

// Snapshot returns the engine's current debug snapshot.
func (e *Engine) Snapshot() DebugSnapshot {
	stats := e.Stats()
	return DebugSnapshot{
		Stats: DebugStats{
			Hits:          stats.Hits(),
			Misses:        stats.Misses(),
			HitRate:       stats.HitRate(),
			Invalidations: stats.Invalidations(),
			Teardowns:     stats.Teardowns(),
			Evictions:     stats.Evictions(),
			Owners:        stats.Owners(),
		},
		Owners: e.Owners(),
		Slots:  e.Len(),
	}
}

// DebugHandler returns an http.Handler serving the engine's snapshot as
// JSON, for mounting on an internal diagnostics mux.
func (e *Engine) DebugHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(e.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
