package tracker

import (
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()
	provider := "nominatim"

	if len(tr.Snapshot()) != 0 {
		t.Error("expected empty snapshot")
	}

	tr.TrackCacheHit(provider)
	tr.TrackCacheMiss(provider)
	tr.TrackAPISuccess(provider)
	tr.TrackAPIFailure(provider)
	tr.TrackSuppressed(provider)

	stats, ok := tr.Snapshot()[provider]
	if !ok {
		t.Fatalf("expected stats for %s", provider)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 1 || stats.APISuccess != 1 ||
		stats.APIFailures != 1 || stats.Suppressed != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackAPISuccess("gemini-image")
		}()
	}
	wg.Wait()

	if got := tr.Snapshot()["gemini-image"].APISuccess; got != 50 {
		t.Errorf("APISuccess = %d, want 50", got)
	}
}
