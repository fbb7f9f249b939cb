package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chronoscope/pkg/cache"
	"chronoscope/pkg/config"
	"chronoscope/pkg/tracker"
)

func testClient() *Client {
	cfg := config.RequestConfig{
		Retries: 3,
		Timeout: config.Duration(5 * time.Second),
		Backoff: config.BackoffConfig{
			BaseDelay: config.Duration(10 * time.Millisecond),
			MaxDelay:  config.Duration(100 * time.Millisecond),
		},
	}
	return New(cfg, cache.NewMemory(time.Minute), tracker.New())
}

func TestGet_Sequential(t *testing.T) {
	// One provider gets one worker: concurrent callers must be serialized.
	var conc int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt32(&conc, 1)
		defer atomic.AddInt32(&conc, -1)

		if current > 1 {
			t.Errorf("Concurrency detected! Expected sequential.")
		}
		time.Sleep(30 * time.Millisecond)
		w.WriteHeader(200)
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := testClient()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Get(context.Background(), svr.URL, ""); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestGet_Retry(t *testing.T) {
	attempts := 0
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(429) // Too Many Requests
			return
		}
		w.WriteHeader(200)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Logf("Write failed: %v", err)
		}
	}))
	defer svr.Close()

	client := testClient()

	body, err := client.Get(context.Background(), svr.URL, "")
	if err != nil {
		t.Fatalf("Expected success after retry, got error: %v", err)
	}
	if string(body) != "success" {
		t.Errorf("Expected 'success', got '%s'", string(body))
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestGet_CacheSecondCall(t *testing.T) {
	var calls int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(200)
		_, _ = w.Write([]byte("cached-body"))
	}))
	defer svr.Close()

	client := testClient()

	for i := 0; i < 2; i++ {
		body, err := client.Get(context.Background(), svr.URL, "cache-key")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(body) != "cached-body" {
			t.Errorf("body = %q", body)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}
}

func TestGet_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(404)
	}))
	defer svr.Close()

	client := testClient()

	if _, err := client.Get(context.Background(), svr.URL, ""); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("404 must not be retried, got %d calls", got)
	}
}
