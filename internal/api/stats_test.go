package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoscope/pkg/tracker"
)

func TestStatsHandler(t *testing.T) {
	tr := tracker.New()
	tr.TrackCacheHit("nominatim")
	tr.TrackCacheHit("nominatim")
	tr.TrackCacheMiss("nominatim")
	tr.TrackAPISuccess("gemini")
	tr.TrackSuppressed("gemini")

	h := NewStatsHandler(tr)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	nominatim := resp.Providers["nominatim"]
	assert.Equal(t, int64(2), nominatim.CacheHits)
	assert.Equal(t, int64(1), nominatim.CacheMisses)
	assert.Equal(t, int64(66), nominatim.HitRate)

	gemini := resp.Providers["gemini"]
	assert.Equal(t, int64(1), gemini.APISuccess)
	assert.Equal(t, int64(1), gemini.Suppressed)

	assert.GreaterOrEqual(t, resp.Process.Goroutines, 1)
}
