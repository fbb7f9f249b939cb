package api

import (
	"net/http"
	"strconv"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/events"
	"chronoscope/pkg/model"
)

// EventsHandler serves the curated notable events catalog.
type EventsHandler struct{}

func NewEventsHandler() *EventsHandler {
	return &EventsHandler{}
}

// HandleList handles GET /api/events, optionally filtered by ?tag=.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")

	var list []model.NotableEvent
	if tag != "" {
		list = events.WithTag(tag)
	} else {
		list = events.All()
	}
	if list == nil {
		list = []model.NotableEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": list})
}

// HandleRandom handles GET /api/events/random.
func (h *EventsHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, events.Random(nil))
}

// HandleNearest handles GET /api/events/nearest?lat=...&lon=...&limit=...
func (h *EventsHandler) HandleNearest(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
			"lat and lon must be decimal numbers"))
		return
	}

	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
				"limit must be a positive integer"))
			return
		}
		limit = n
	}

	coords := model.Coordinates{Latitude: lat, Longitude: lon}
	writeJSON(w, http.StatusOK, map[string]any{"events": events.Nearest(coords, limit)})
}
