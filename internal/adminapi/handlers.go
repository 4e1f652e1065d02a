// Package adminapi is the collector's own small HTTP surface: a liveness
// probe, a stats endpoint, and a remote stop trigger. It is grounded on the
// dashboard server's rest package (chi router, RS256 JWT middleware, JSON
// handlers) narrowed from a full query API down to the three operations a
// headless collector daemon actually needs.
package adminapi

import (
	"encoding/json"
	"net/http"
)

// StatsProvider reports point-in-time collector health. The scheduler
// implements this by snapshotting its ring counters and reader count.
type StatsProvider interface {
	Stats() Stats
}

// Stats is the JSON body returned by GET /stats.
type Stats struct {
	ReadersActive       int    `json:"readers_active"`
	EventsDecoded       uint64 `json:"events_decoded"`
	LengthMismatches    uint64 `json:"length_mismatches"`
	NumDropsBuffer      uint64 `json:"num_drops_buffer"`
	NumDropsPageFault   uint64 `json:"num_drops_page_fault"`
	NumPreemptions      uint64 `json:"num_preemptions"`
	NumContextSwitches  uint64 `json:"num_context_switches"`
}

// Server holds the handlers' dependencies: a stats source and a stop
// callback invoked by POST /admin/stop.
type Server struct {
	stats StatsProvider
	stop  func()
}

// NewServer builds a Server. stop is called exactly once per accepted
// request to POST /admin/stop; it is the caller's responsibility to make it
// safe to call from an HTTP handler goroutine (the scheduler's Stop already
// is, via sync.Once).
func NewServer(stats StatsProvider, stop func()) *Server {
	return &Server{stats: stats, stop: stop}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats.Stats())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "stopping"})
	go s.stop()
}
