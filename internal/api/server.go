package api

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"chronoscope/internal/ui"
	"chronoscope/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, gen *GenerateHandler, geo *GeocodeHandler, ev *EventsHandler, creds *CredentialsHandler, stats *StatsHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// Health and version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// Generation
	mux.HandleFunc("POST /api/generate", gen.HandleGenerate)
	mux.HandleFunc("GET /api/generate/ws", gen.HandleWS)
	mux.HandleFunc("POST /api/generate/story", gen.HandleStory)
	mux.HandleFunc("GET /api/images", gen.HandleImages)
	mux.HandleFunc("DELETE /api/images", gen.HandleClearImages)

	// Geocoding
	mux.HandleFunc("GET /api/geocode/search", geo.HandleSearch)
	mux.HandleFunc("GET /api/geocode/reverse", geo.HandleReverse)

	// Notable events
	mux.HandleFunc("GET /api/events", ev.HandleList)
	mux.HandleFunc("GET /api/events/random", ev.HandleRandom)
	mux.HandleFunc("GET /api/events/nearest", ev.HandleNearest)

	// Credentials
	mux.HandleFunc("GET /api/credentials", creds.HandleStatus)
	mux.HandleFunc("POST /api/credentials", creds.HandleUpdate)
	mux.HandleFunc("DELETE /api/credentials", creds.HandleClear)

	// Diagnostics
	mux.Handle("GET /api/stats", stats)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// Shutdown
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	// Static frontend (SPA)
	distFS, err := fs.Sub(ui.DistFS, "dist")
	if err != nil {
		panic(fmt.Sprintf("Failed to subtree dist from embedded assets: %v", err))
	}
	mux.Handle("/", http.FileServer(&spaFileSystem{root: http.FS(distFS)}))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // image generation can take minutes
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
