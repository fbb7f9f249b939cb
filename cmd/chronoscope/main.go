package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chronoscope/internal/api"
	"chronoscope/pkg/cache"
	"chronoscope/pkg/config"
	"chronoscope/pkg/generation"
	"chronoscope/pkg/geocode"
	"chronoscope/pkg/imagegen"
	"chronoscope/pkg/logging"
	"chronoscope/pkg/prompt"
	"chronoscope/pkg/request"
	"chronoscope/pkg/textgen"
	"chronoscope/pkg/tracker"
	"chronoscope/pkg/version"
)

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

const configPath = "configs/chronoscope.yaml"

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: " + configPath)
		return
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env keeps API keys out of the config file. Missing file is fine.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Chronoscope started", "version", version.Version)

	tr := tracker.New()
	reqClient := request.New(cfg.Request, cache.NewMemory(time.Duration(cfg.Geocoding.CacheTTL)), tr)

	geoSvc := geocode.New(cfg.Geocoding, reqClient)
	promptBuilder := prompt.NewBuilder(geoSvc)

	imageClient := imagegen.New(cfg.ImageGen)
	if !imageClient.Ready() {
		slog.Warn("No image generation key configured; set it via POST /api/credentials or GEMINI_API_KEY")
	}

	storyClient, err := textgen.NewClient(cfg.TextGen, tr)
	if err != nil {
		return fmt.Errorf("failed to initialize story client: %w", err)
	}
	defer storyClient.Close()

	orch := generation.New(promptBuilder, imageClient, storyClient, tr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewGenerateHandler(orch),
		api.NewGeocodeHandler(geoSvc),
		api.NewEventsHandler(),
		api.NewCredentialsHandler(imageClient, storyClient, cfg.TextGen),
		api.NewStatsHandler(tr),
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
