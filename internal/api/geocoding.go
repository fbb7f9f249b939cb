package api

import (
	"net/http"
	"strconv"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/geocode"
	"chronoscope/pkg/model"
)

// GeocodeHandler exposes the Nominatim wrapper.
type GeocodeHandler struct {
	svc *geocode.Service
}

func NewGeocodeHandler(svc *geocode.Service) *GeocodeHandler {
	return &GeocodeHandler{svc: svc}
}

// HandleSearch handles GET /api/geocode/search?q=...
func (h *GeocodeHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	results, err := h.svc.Search(r.Context(), query)
	if err != nil {
		writeError(w, apierr.New(apierr.Unavailable, http.StatusServiceUnavailable,
			"location search is temporarily unavailable").WithDetails(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// HandleReverse handles GET /api/geocode/reverse?lat=...&lon=...
// Reverse lookup never fails; a degraded coordinate label is still a 200.
func (h *GeocodeHandler) HandleReverse(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
			"lat and lon must be decimal numbers"))
		return
	}

	coords := model.Coordinates{Latitude: lat, Longitude: lon}
	name := h.svc.Reverse(r.Context(), coords)

	coords.Name = name
	writeJSON(w, http.StatusOK, coords)
}
