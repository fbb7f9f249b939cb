// Package geocode wraps the OpenStreetMap Nominatim API. Search propagates
// transport failures; Reverse never fails and falls back to a coordinate
// label, so prompt building cannot be broken by a geocoding outage.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	h3 "github.com/uber/h3-go/v4"
	"golang.org/x/sync/singleflight"

	"chronoscope/pkg/config"
	"chronoscope/pkg/model"
	"chronoscope/pkg/request"
)

// Service resolves free-text queries and coordinates against Nominatim.
// All traffic goes through the shared request client, which serializes and
// paces calls per Nominatim's usage policy and caches responses.
type Service struct {
	rc         *request.Client
	baseURL    string
	maxResults int
	cellRes    int

	group singleflight.Group
}

// nominatimPlace matches the fields we consume from a Nominatim response.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// New creates a geocoding service.
func New(cfg config.GeocodingConfig, rc *request.Client) *Service {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	cellRes := cfg.CellResolution
	if cellRes <= 0 {
		cellRes = 8
	}
	return &Service{
		rc:         rc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: maxResults,
		cellRes:    cellRes,
	}
}

// Search resolves a free-text query to candidate coordinates. An empty or
// whitespace query returns no results without a network call; no matches
// yield an empty slice; transport failures propagate to the caller.
func (s *Service) Search(ctx context.Context, query string) ([]model.Coordinates, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Coordinates{}, nil
	}

	cacheKey := "geo:search:" + strings.ToLower(query)
	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		u := fmt.Sprintf("%s/search?%s", s.baseURL, url.Values{
			"q":              {query},
			"format":         {"json"},
			"addressdetails": {"1"},
			"limit":          {strconv.Itoa(s.maxResults)},
		}.Encode())

		body, err := s.rc.Get(ctx, u, cacheKey)
		if err != nil {
			return nil, fmt.Errorf("location search failed: %w", err)
		}

		var places []nominatimPlace
		if err := json.Unmarshal(body, &places); err != nil {
			return nil, fmt.Errorf("failed to parse search response: %w", err)
		}

		results := make([]model.Coordinates, 0, len(places))
		for _, p := range places {
			lat, errLat := strconv.ParseFloat(p.Lat, 64)
			lon, errLon := strconv.ParseFloat(p.Lon, 64)
			if errLat != nil || errLon != nil {
				continue
			}
			results = append(results, model.Coordinates{
				Latitude:  lat,
				Longitude: lon,
				Name:      formatLocationName(p),
			})
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Coordinates), nil
}

// Reverse resolves coordinates to a display name. It never fails: invalid
// coordinates, transport errors and unparseable responses all degrade to a
// formatted coordinate string.
func (s *Service) Reverse(ctx context.Context, coords model.Coordinates) string {
	if !coords.Valid() {
		slog.Warn("Reverse geocode called with out-of-range coordinates",
			"lat", coords.Latitude, "lon", coords.Longitude)
		return FallbackLabel(coords)
	}

	cacheKey := s.reverseCacheKey(coords)
	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		u := fmt.Sprintf("%s/reverse?%s", s.baseURL, url.Values{
			"lat":            {strconv.FormatFloat(coords.Latitude, 'f', -1, 64)},
			"lon":            {strconv.FormatFloat(coords.Longitude, 'f', -1, 64)},
			"format":         {"json"},
			"addressdetails": {"1"},
		}.Encode())

		body, err := s.rc.Get(ctx, u, cacheKey)
		if err != nil {
			return "", err
		}

		var place nominatimPlace
		if err := json.Unmarshal(body, &place); err != nil {
			return "", err
		}
		if place.DisplayName == "" {
			return "", fmt.Errorf("no location name for coordinates")
		}
		return formatLocationName(place), nil
	})
	if err != nil {
		slog.Warn("Reverse geocode failed, using coordinate label",
			"lat", coords.Latitude, "lon", coords.Longitude, "error", err)
		return FallbackLabel(coords)
	}
	return v.(string)
}

// reverseCacheKey buckets nearby coordinates into one H3 cell so repeated
// globe clicks around the same spot share a cache entry.
func (s *Service) reverseCacheKey(coords model.Coordinates) string {
	cell, err := h3.LatLngToCell(h3.NewLatLng(coords.Latitude, coords.Longitude), s.cellRes)
	if err != nil {
		return fmt.Sprintf("geo:rev:%.4f,%.4f", coords.Latitude, coords.Longitude)
	}
	return "geo:rev:" + cell.String()
}

// FallbackLabel renders coordinates as a display string, e.g. "41.8902°, 12.4922°".
func FallbackLabel(coords model.Coordinates) string {
	return fmt.Sprintf("%.4f°, %.4f°", coords.Latitude, coords.Longitude)
}

// formatLocationName builds "city, state, country" from the address details,
// falling back to the full display name.
func formatLocationName(p nominatimPlace) string {
	var parts []string

	switch {
	case p.Address.City != "":
		parts = append(parts, p.Address.City)
	case p.Address.Town != "":
		parts = append(parts, p.Address.Town)
	case p.Address.Village != "":
		parts = append(parts, p.Address.Village)
	}
	if p.Address.State != "" {
		parts = append(parts, p.Address.State)
	}
	if p.Address.Country != "" {
		parts = append(parts, p.Address.Country)
	}

	if len(parts) == 0 {
		return p.DisplayName
	}
	return strings.Join(parts, ", ")
}
