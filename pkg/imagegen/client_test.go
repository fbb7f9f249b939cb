package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/config"
)

func testClient(endpoint, key string) *Client {
	return New(config.ImageGenConfig{
		Key:      key,
		Model:    "gemini-2.0-flash-exp",
		Endpoint: endpoint,
		Timeout:  config.Duration(2 * time.Second),
	})
}

const pixel = "iVBORw0KGgoAAAANSUhEUg=="

func successBody() string {
	return `{"candidates": [{"content": {"parts": [
		{"inlineData": {"mimeType": "image/png", "data": "` + pixel + `"}}
	]}}]}`
}

func TestGenerate(t *testing.T) {
	var calls int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "a scene", req.Contents[0].Parts[0].Text)
		assert.Equal(t, []string{"IMAGE"}, req.GenerationConfig.ResponseModalities)

		_, _ = w.Write([]byte(successBody()))
	}))
	defer svr.Close()

	c := testClient(svr.URL, "test-key")
	img, err := c.Generate(context.Background(), "a scene")
	require.NoError(t, err)

	assert.NotEmpty(t, img.ID)
	assert.Equal(t, "data:image/png;base64,"+pixel, img.URL)
	assert.Equal(t, "a scene", img.Prompt)
	assert.Equal(t, "gemini-2.0-flash-exp", img.Metadata.Model)
	assert.Equal(t, "image/png", img.Metadata.MimeType)
	assert.False(t, img.Timestamp.IsZero())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateDefaultMimeType(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [
			{"inlineData": {"data": "` + pixel + `"}}
		]}}]}`))
	}))
	defer svr.Close()

	c := testClient(svr.URL, "test-key")
	img, err := c.Generate(context.Background(), "a scene")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.URL, "data:image/png;base64,"))
}

func TestGenerateMissingKey(t *testing.T) {
	var calls int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer svr.Close()

	c := testClient(svr.URL, "")
	_, err := c.Generate(context.Background(), "a scene")
	assert.Equal(t, apierr.Unauthenticated, apierr.KindOf(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no network call without a key")
}

func TestGenerateEmptyPrompt(t *testing.T) {
	var calls int32
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer svr.Close()

	c := testClient(svr.URL, "test-key")
	for _, p := range []string{"", "   ", "\n\t"} {
		_, err := c.Generate(context.Background(), p)
		assert.Equal(t, apierr.InvalidArgument, apierr.KindOf(err))
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no network call for empty prompts")
}

func TestGenerateStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		kind   apierr.Kind
	}{
		{http.StatusUnauthorized, apierr.Unauthenticated},
		{http.StatusForbidden, apierr.Unauthenticated},
		{http.StatusTooManyRequests, apierr.ResourceExhausted},
		{http.StatusServiceUnavailable, apierr.Unavailable},
		{http.StatusBadRequest, apierr.InvalidArgument},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "backend says no"}}`))
			}))
			defer svr.Close()

			c := testClient(svr.URL, "test-key")
			_, err := c.Generate(context.Background(), "a scene")
			require.Error(t, err)
			assert.Equal(t, tt.kind, apierr.KindOf(err))

			apiErr := apierr.As(err)
			assert.Equal(t, tt.status, apiErr.Code)
		})
	}
}

func TestGenerateEmbeddedErrorEnvelope(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 OK with an error envelope in the body.
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer svr.Close()

	c := testClient(svr.URL, "test-key")
	_, err := c.Generate(context.Background(), "a scene")
	assert.Equal(t, apierr.ResourceExhausted, apierr.KindOf(err))
}

func TestGenerateNoCandidates(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer svr.Close()

	c := testClient(svr.URL, "test-key")
	_, err := c.Generate(context.Background(), "a scene")
	assert.Equal(t, apierr.Internal, apierr.KindOf(err))
}

func TestGenerateTextRefusal(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [
			{"text": "I cannot depict this scene."}
		]}}]}`))
	}))
	defer svr.Close()

	c := testClient(svr.URL, "test-key")
	_, err := c.Generate(context.Background(), "a scene")
	require.Error(t, err)
	assert.Equal(t, apierr.InvalidArgument, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "I cannot depict this scene.")
}

func TestGenerateTimeout(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(successBody()))
	}))
	defer svr.Close()

	c := New(config.ImageGenConfig{
		Key:      "test-key",
		Endpoint: svr.URL,
		Timeout:  config.Duration(50 * time.Millisecond),
	})
	_, err := c.Generate(context.Background(), "a scene")
	assert.Equal(t, apierr.Timeout, apierr.KindOf(err))
}

func TestGenerateNetworkError(t *testing.T) {
	svr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svr.Close() // refuse connections

	c := testClient(svr.URL, "test-key")
	_, err := c.Generate(context.Background(), "a scene")
	assert.Equal(t, apierr.NetworkError, apierr.KindOf(err))
}

func TestConfigure(t *testing.T) {
	c := testClient("http://unused", "")
	assert.False(t, c.Ready())
	c.Configure("new-key")
	assert.True(t, c.Ready())
}
