package model

import (
	"time"
)

// Coordinates is a geographic position selected on the globe or returned by
// the geocoder. Name is optional; when empty the display label is resolved
// via reverse geocoding.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// Valid reports whether the coordinates are within WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// ImageMetadata carries optional descriptive data about a generated image.
type ImageMetadata struct {
	Model       string `json:"model,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// GeneratedImage is the result of one successful image-generation call.
// URL is display-ready (a base64 data URI). Held in memory only.
type GeneratedImage struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Prompt    string        `json:"prompt"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  ImageMetadata `json:"metadata"`
}

// StoryResult is the outcome of a story-generation call. Empty fields mean
// "no story" (cleared or suppressed), not failure.
type StoryResult struct {
	Title string `json:"title"`
	Story string `json:"story"`
}

// Empty reports whether the result carries no story.
func (s StoryResult) Empty() bool {
	return s.Title == "" && s.Story == ""
}

// NotableEvent is a curated (location, time) pair used to pre-fill a scene.
// Read-only reference data.
type NotableEvent struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Location    Coordinates   `json:"location"`
	Time        TimeSelection `json:"time"`
	Tags        []string      `json:"tags"`
}
