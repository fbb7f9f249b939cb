// Package imagegen generates historical scene images via the Gemini
// generateContent REST API. All failures are classified into the apierr
// taxonomy and logged before they propagate; this call is load-bearing for
// the whole generation flow.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/config"
	"chronoscope/pkg/model"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com"

// Client talks to the image generation backend. The key can be swapped at
// runtime through Configure, so all access is mutex-guarded.
type Client struct {
	mu       sync.RWMutex
	key      string
	modelID  string
	endpoint string
	hc       *http.Client
}

// New creates a client from configuration. The endpoint override exists for
// tests; production traffic goes to the public Gemini API.
func New(cfg config.ImageGenConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	modelID := cfg.Model
	if modelID == "" {
		modelID = "gemini-2.0-flash-exp"
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		key:      cfg.Key,
		modelID:  modelID,
		endpoint: strings.TrimRight(endpoint, "/"),
		hc:       &http.Client{Timeout: timeout},
	}
}

// Configure replaces the API key at runtime.
func (c *Client) Configure(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = key
}

// Ready reports whether an API key is present.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key != ""
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.modelID
}

// generateRequest is the Gemini generateContent payload.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

// generateResponse covers both the success shape and the error envelope the
// backend may embed in a 200 response.
type generateResponse struct {
	Error      *backendError `json:"error"`
	Candidates []candidate   `json:"candidates"`
}

type backendError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type candidate struct {
	Content struct {
		Parts []responsePart `json:"parts"`
	} `json:"content"`
}

type responsePart struct {
	Text       string      `json:"text"`
	InlineData *inlineData `json:"inlineData"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Generate produces one image for the prompt. Preconditions are checked
// before any network traffic: a missing key fails UNAUTHENTICATED, an empty
// prompt INVALID_ARGUMENT. Every returned error is an *apierr.Error and has
// already been logged.
func (c *Client) Generate(ctx context.Context, prompt string) (*model.GeneratedImage, error) {
	c.mu.RLock()
	key := c.key
	c.mu.RUnlock()

	if key == "" {
		return nil, apierr.New(apierr.Unauthenticated, http.StatusUnauthorized,
			"Gemini API key is not configured. Set the key via the credentials endpoint or GEMINI_API_KEY.").
			Log("Image generation not configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
			"Prompt cannot be empty").
			Log("Image generation rejected")
	}

	payload, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []requestPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		return nil, apierr.New(apierr.Internal, http.StatusInternalServerError, err.Error()).
			Log("Image generation request encoding failed")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.modelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, apierr.New(apierr.Internal, http.StatusInternalServerError, err.Error()).
			Log("Image generation request setup failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, classifyTransport(err).Log("Image generation transport failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err).Log("Image generation read failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope generateResponse
		_ = json.Unmarshal(body, &envelope)
		var backendMessage, backendStatus string
		if envelope.Error != nil {
			backendMessage = envelope.Error.Message
			backendStatus = envelope.Error.Status
		}
		return nil, apierr.FromHTTPStatus(resp.StatusCode, backendMessage, backendStatus).
			Log("Image generation backend error")
	}

	return c.parseResponse(body, prompt)
}

// parseResponse extracts the image from a 2xx body. The backend can still
// signal failure here, either through an embedded error envelope or by
// answering with text instead of image data.
func (c *Client) parseResponse(body []byte, prompt string) (*model.GeneratedImage, error) {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apierr.New(apierr.Internal, http.StatusInternalServerError,
			"Failed to parse the backend response.").WithDetails(err.Error()).
			Log("Image generation parse failed")
	}

	if parsed.Error != nil {
		kind := apierr.Kind(parsed.Error.Status)
		if kind == "" {
			kind = apierr.Internal
		}
		return nil, apierr.New(kind, parsed.Error.Code, parsed.Error.Message).
			Log("Image generation response error")
	}

	if len(parsed.Candidates) == 0 {
		return nil, apierr.New(apierr.Internal, http.StatusInternalServerError,
			"No image generated. The API returned an empty response.").
			Log("Image generation empty response")
	}

	parts := parsed.Candidates[0].Content.Parts
	var image *inlineData
	for _, p := range parts {
		if p.InlineData != nil {
			image = p.InlineData
			break
		}
	}
	if image == nil {
		// The model answered with text, typically a content refusal.
		message := "The model did not generate an image."
		for _, p := range parts {
			if p.Text != "" {
				message = p.Text
				break
			}
		}
		return nil, apierr.New(apierr.InvalidArgument, http.StatusBadRequest, message).
			Log("Image generation returned no image")
	}

	mimeType := image.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &model.GeneratedImage{
		ID:        uuid.NewString(),
		URL:       fmt.Sprintf("data:%s;base64,%s", mimeType, image.Data),
		Prompt:    prompt,
		Timestamp: time.Now(),
		Metadata: model.ImageMetadata{
			Model:    c.modelID,
			MimeType: mimeType,
		},
	}, nil
}

// classifyTransport distinguishes timeouts from other transport failures.
func classifyTransport(err error) *apierr.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apierr.New(apierr.Timeout, http.StatusRequestTimeout,
			"Request timeout. The image generation took too long. Please try again.").
			WithDetails(err.Error())
	}
	return apierr.New(apierr.NetworkError, 0,
		"Network error. Please check your internet connection and try again.").
		WithDetails(err.Error())
}
