package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Request   RequestConfig   `yaml:"request"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	ImageGen  ImageGenConfig  `yaml:"image_gen"`
	TextGen   TextGenConfig   `yaml:"text_gen"`
}

// RequestConfig holds HTTP request settings for the shared request client.
type RequestConfig struct {
	Retries       int           `yaml:"retries"`
	Timeout       Duration      `yaml:"timeout"`
	Backoff       BackoffConfig `yaml:"backoff"`
	RatePerSecond float64       `yaml:"rate_per_second"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// GeocodingConfig holds settings for the Nominatim collaborator.
type GeocodingConfig struct {
	BaseURL        string   `yaml:"base_url"`
	CacheTTL       Duration `yaml:"cache_ttl"`
	CellResolution int      `yaml:"cell_resolution"` // H3 resolution for reverse-lookup cache keys
	MaxResults     int      `yaml:"max_results"`
}

// ImageGenConfig holds settings for the image-generation backend.
type ImageGenConfig struct {
	Key      string   `yaml:"key"`
	Model    string   `yaml:"model"`
	Endpoint string   `yaml:"endpoint"` // override for tests; derived from model when empty
	Timeout  Duration `yaml:"timeout"`
}

// TextGenConfig holds settings for the story-generation backend.
type TextGenConfig struct {
	Key       string `yaml:"key"`
	Model     string `yaml:"model"`
	WordLimit int    `yaml:"word_limit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
			RatePerSecond: 1.0, // Nominatim usage policy: max 1 req/s
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		Server: ServerConfig{
			Address: "localhost:1977",
		},
		Geocoding: GeocodingConfig{
			BaseURL:        "https://nominatim.openstreetmap.org",
			CacheTTL:       Duration(1 * time.Hour),
			CellResolution: 8,
			MaxResults:     10,
		},
		ImageGen: ImageGenConfig{
			Key:     "",
			Model:   "gemini-2.0-flash-exp",
			Timeout: Duration(120 * time.Second),
		},
		TextGen: TextGenConfig{
			Key:       "",
			Model:     "gemini-2.5-flash",
			WordLimit: 80,
		},
	}
}

// Load loads the configuration from the given path. If the file does not
// exist, it is created with default values. Existing files are merged over
// defaults but never written back, to preserve user formatting and comments.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		cfg.applyEnvFallbacks()
		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	cfg.applyEnvFallbacks()
	return cfg, nil
}

// applyEnvFallbacks fills empty credentials from the environment. Specific
// variables win over the shared GEMINI_API_KEY.
func (c *Config) applyEnvFallbacks() {
	if c.ImageGen.Key == "" {
		if key := os.Getenv("GEMINI_IMAGE_API_KEY"); key != "" {
			c.ImageGen.Key = key
		} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.ImageGen.Key = key
		}
	}
	if c.TextGen.Key == "" {
		if key := os.Getenv("GEMINI_TEXT_API_KEY"); key != "" {
			c.TextGen.Key = key
		} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.TextGen.Key = key
		}
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Chronoscope Configuration
# ------------------------
# Supported Duration units: ns, us, ms, s, m, h, d (day), w (week)
# API keys left empty here fall back to GEMINI_API_KEY (or the
# GEMINI_IMAGE_API_KEY / GEMINI_TEXT_API_KEY overrides) at startup.

`)
	data = append(header, data...)

	// Inject a hint above the H3 resolution knob
	reCell := regexp.MustCompile(`(?m)^(\s+)cell_resolution:`)
	data = reCell.ReplaceAll(data, []byte("${1}# Reverse-geocode cache granularity; res 8 cells are ~0.7 km across\n${1}cell_resolution:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
