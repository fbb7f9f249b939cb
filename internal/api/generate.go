package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/generation"
	"chronoscope/pkg/model"
)

// GenerateHandler drives the scene generation flow. The image travels back
// on the POST response; the story arrives later over the websocket feed.
type GenerateHandler struct {
	orch     *generation.Orchestrator
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewGenerateHandler(orch *generation.Orchestrator) *GenerateHandler {
	return &GenerateHandler{
		orch: orch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Local single-user server; the UI is served from the same origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]bool),
	}
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Location model.Coordinates   `json:"location"`
	Time     model.TimeSelection `json:"time"`
}

// storyMessage is pushed over the websocket once the story resolves.
type storyMessage struct {
	Type  string            `json:"type"`
	Story model.StoryResult `json:"story"`
}

// HandleGenerate handles POST /api/generate.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
			"invalid request body: "+err.Error()))
		return
	}

	img, err := h.orch.Generate(r.Context(), req.Location, req.Time, h.broadcastStory)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, img)
}

// StoryRequest is the body of POST /api/generate/story.
type StoryRequest struct {
	Location model.Coordinates   `json:"location"`
	Time     model.TimeSelection `json:"time"`
}

// HandleStory handles POST /api/generate/story. Unlike the scene flow the
// story is the payload here, so failures surface to the caller.
func (h *GenerateHandler) HandleStory(w http.ResponseWriter, r *http.Request) {
	var req StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.New(apierr.InvalidArgument, http.StatusBadRequest,
			"invalid request body: "+err.Error()))
		return
	}

	story, err := h.orch.GenerateStory(r.Context(), req.Location, req.Time)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, story)
}

// HandleImages handles GET /api/images, the session gallery.
func (h *GenerateHandler) HandleImages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"images": h.orch.History()})
}

// HandleClearImages handles DELETE /api/images.
func (h *GenerateHandler) HandleClearImages(w http.ResponseWriter, r *http.Request) {
	h.orch.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// HandleWS handles GET /api/generate/ws. The connection only carries
// server-to-client pushes; incoming frames are drained and discarded.
func (h *GenerateHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()
	slog.Debug("Websocket client connected", "clients", count)

	go h.readLoop(conn)
}

func (h *GenerateHandler) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *GenerateHandler) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// broadcastStory fans the story out to every connected client. Slow or dead
// connections are dropped rather than blocking the rest.
func (h *GenerateHandler) broadcastStory(story model.StoryResult) {
	msg := storyMessage{Type: "story", Story: story}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.WriteJSON(msg); err != nil {
			slog.Warn("Dropping websocket client", "error", err)
			h.drop(c)
		}
	}
}
