package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/config"
	"chronoscope/pkg/imagegen"
	"chronoscope/pkg/textgen"
)

// CredentialsHandler manages the Gemini API keys at runtime. Keys are write
// only: status reports presence, never the key material.
type CredentialsHandler struct {
	images  *imagegen.Client
	stories *textgen.Client
	textCfg config.TextGenConfig
}

func NewCredentialsHandler(images *imagegen.Client, stories *textgen.Client, textCfg config.TextGenConfig) *CredentialsHandler {
	return &CredentialsHandler{images: images, stories: stories, textCfg: textCfg}
}

// CredentialsStatus reports which backends have a key configured.
type CredentialsStatus struct {
	ImageConfigured bool `json:"image_configured"`
	StoryConfigured bool `json:"story_configured"`
}

// CredentialsUpdate sets keys. Key applies to both backends unless a
// backend-specific key overrides it.
type CredentialsUpdate struct {
	Key      string `json:"key,omitempty"`
	ImageKey string `json:"image_key,omitempty"`
	StoryKey string `json:"story_key,omitempty"`
}

// HandleStatus handles GET /api/credentials.
func (h *CredentialsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CredentialsStatus{
		ImageConfigured: h.images.Ready(),
		StoryConfigured: h.stories.Ready(),
	})
}

// HandleUpdate handles POST /api/credentials.
func (h *CredentialsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req CredentialsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
			"invalid request body: "+err.Error()))
		return
	}

	imageKey := strings.TrimSpace(req.ImageKey)
	if imageKey == "" {
		imageKey = strings.TrimSpace(req.Key)
	}
	storyKey := strings.TrimSpace(req.StoryKey)
	if storyKey == "" {
		storyKey = strings.TrimSpace(req.Key)
	}

	if imageKey == "" && storyKey == "" {
		writeError(w, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
			"no key provided"))
		return
	}

	if imageKey != "" {
		h.images.Configure(imageKey)
		slog.Info("Image generation key updated")
	}
	if storyKey != "" {
		cfg := h.textCfg
		cfg.Key = storyKey
		if err := h.stories.Configure(cfg); err != nil {
			writeError(w, apierr.New(apierr.Internal, http.StatusInternalServerError,
				"failed to configure story backend").WithDetails(err.Error()))
			return
		}
		slog.Info("Story generation key updated")
	}

	h.HandleStatus(w, r)
}

// HandleClear handles DELETE /api/credentials, dropping both keys.
func (h *CredentialsHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.images.Configure("")
	cfg := h.textCfg
	cfg.Key = ""
	if err := h.stories.Configure(cfg); err != nil {
		writeError(w, apierr.New(apierr.Internal, http.StatusInternalServerError,
			"failed to clear story backend").WithDetails(err.Error()))
		return
	}
	slog.Info("Generation keys cleared")

	h.HandleStatus(w, r)
}
