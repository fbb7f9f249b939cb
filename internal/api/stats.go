package api

import (
	"net/http"
	"runtime"
	"time"

	"chronoscope/pkg/tracker"
)

// StatsHandler reports per-provider counters and basic process diagnostics.
type StatsHandler struct {
	tracker *tracker.Tracker
	started time.Time
}

func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t, started: time.Now()}
}

type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	Suppressed  int64 `json:"suppressed"`
	HitRate     int64 `json:"hit_rate"`
}

type ProcessStats struct {
	UptimeSec  int64  `json:"uptime_sec"`
	Goroutines int    `json:"goroutines"`
	HeapMB     uint64 `json:"heap_mb"`
}

type StatsResponse struct {
	Process   ProcessStats                `json:"process"`
	Providers map[string]ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := StatsResponse{
		Process: ProcessStats{
			UptimeSec:  int64(time.Since(h.started).Seconds()),
			Goroutines: runtime.NumGoroutine(),
			HeapMB:     mem.HeapAlloc / 1024 / 1024,
		},
		Providers: make(map[string]ProviderStatsDTO),
	}

	for provider, stats := range h.tracker.Snapshot() {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:   stats.CacheHits,
			CacheMisses: stats.CacheMisses,
			APISuccess:  stats.APISuccess,
			APIFailures: stats.APIFailures,
			Suppressed:  stats.Suppressed,
			HitRate:     hitRate,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
