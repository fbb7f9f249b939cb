// Package generation coordinates one scene generation: prompt assembly,
// the image call and the companion story. The image is load-bearing and its
// failures propagate; the story is decoration and its failures are
// suppressed into an empty result.
package generation

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/model"
	"chronoscope/pkg/prompt"
	"chronoscope/pkg/tracker"
)

// storyTimeout bounds the detached story call after the image response has
// already been delivered.
const storyTimeout = 60 * time.Second

// maxHistory caps the in-memory session gallery.
const maxHistory = 50

// PromptBuilder assembles the image prompt for a scene.
type PromptBuilder interface {
	Build(ctx context.Context, coords model.Coordinates, t model.TimeSelection) prompt.Result
}

// ImageGenerator produces the scene image. Errors carry the apierr taxonomy.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (*model.GeneratedImage, error)
}

// StoryGenerator produces the companion story.
type StoryGenerator interface {
	GenerateStory(ctx context.Context, location model.Coordinates, t model.TimeSelection) (model.StoryResult, error)
}

// StoryCallback receives the story once it resolves. An empty result means
// the story failed or produced nothing; the scene stands without it.
type StoryCallback func(story model.StoryResult)

// Orchestrator runs the generation flow and keeps the session gallery.
type Orchestrator struct {
	prompts PromptBuilder
	images  ImageGenerator
	stories StoryGenerator
	tracker *tracker.Tracker

	mu      sync.RWMutex
	history []model.GeneratedImage
}

func New(p PromptBuilder, img ImageGenerator, st StoryGenerator, t *tracker.Tracker) *Orchestrator {
	return &Orchestrator{prompts: p, images: img, stories: st, tracker: t}
}

// Generate runs one scene generation. The prompt is built once and shared by
// both backends. The story starts concurrently with the image call but the
// image result is never delayed by it: Generate returns as soon as the image
// resolves, and onStory fires later from a detached goroutine. A story
// failure is logged and suppressed; the callback then delivers an empty
// result so listeners can settle. When the image call fails, the attempt is
// dead and the story outcome is discarded without invoking the callback.
func (o *Orchestrator) Generate(ctx context.Context, coords model.Coordinates, t model.TimeSelection, onStory StoryCallback) (*model.GeneratedImage, error) {
	if !coords.Valid() {
		return nil, apierr.Newf(apierr.InvalidArgument, http.StatusBadRequest,
			"coordinates out of range: %.4f, %.4f", coords.Latitude, coords.Longitude).
			Log("Generation rejected")
	}
	if err := t.Validate(); err != nil {
		return nil, apierr.New(apierr.InvalidArgument, http.StatusBadRequest, err.Error()).
			Log("Generation rejected")
	}

	built := o.prompts.Build(ctx, coords, t)
	slog.Info("Generating scene", "location", built.LocationName, "time", built.Time.DisplayName)

	// The story must not be cancelled when the image returns and the HTTP
	// request context dies with it.
	var imageOK chan bool
	if o.stories != nil && onStory != nil {
		imageOK = make(chan bool, 1)
		storyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storyTimeout)
		storyCoords := coords
		storyCoords.Name = built.LocationName
		go func() {
			defer cancel()
			o.runStory(storyCtx, storyCoords, built.Time, imageOK, onStory)
		}()
	}

	img, err := o.images.Generate(ctx, built.Prompt)
	if err != nil {
		if imageOK != nil {
			imageOK <- false
		}
		return nil, err
	}
	if imageOK != nil {
		imageOK <- true
	}

	o.record(*img)
	return img, nil
}

// runStory resolves the companion story, then waits for the image verdict.
// The callback fires only when the image succeeded; a failed attempt
// discards the story, whatever it produced.
func (o *Orchestrator) runStory(ctx context.Context, coords model.Coordinates, t model.TimeSelection, imageOK <-chan bool, onStory StoryCallback) {
	story, err := o.stories.GenerateStory(ctx, coords, t)
	if err != nil {
		slog.Warn("Story generation failed, continuing without a story",
			"location", coords.Name, "time", t.DisplayName, "error", err)
		if o.tracker != nil {
			o.tracker.TrackSuppressed("gemini")
		}
		story = model.StoryResult{}
	}
	if !<-imageOK {
		slog.Debug("Story discarded, image attempt failed", "location", coords.Name)
		return
	}
	onStory(story)
}

// GenerateStory runs a standalone story generation. Unlike the scene flow,
// failures propagate here since the story is the whole point of the call.
func (o *Orchestrator) GenerateStory(ctx context.Context, coords model.Coordinates, t model.TimeSelection) (model.StoryResult, error) {
	if !coords.Valid() {
		return model.StoryResult{}, apierr.Newf(apierr.InvalidArgument, http.StatusBadRequest,
			"coordinates out of range: %.4f, %.4f", coords.Latitude, coords.Longitude).
			Log("Story generation rejected")
	}
	if err := t.Validate(); err != nil {
		return model.StoryResult{}, apierr.New(apierr.InvalidArgument, http.StatusBadRequest, err.Error()).
			Log("Story generation rejected")
	}
	if o.stories == nil {
		return model.StoryResult{}, apierr.New(apierr.Unavailable, http.StatusServiceUnavailable,
			"story generation is not available").Log("Story generation rejected")
	}

	if t.DisplayName == "" {
		t.DisplayName = t.FormatDisplayName()
	}
	return o.stories.GenerateStory(ctx, coords, t)
}

// record appends to the session gallery, evicting the oldest entry past the
// cap. Newest first.
func (o *Orchestrator) record(img model.GeneratedImage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append([]model.GeneratedImage{img}, o.history...)
	if len(o.history) > maxHistory {
		o.history = o.history[:maxHistory]
	}
}

// History returns a copy of the session gallery, newest first.
func (o *Orchestrator) History() []model.GeneratedImage {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]model.GeneratedImage, len(o.history))
	copy(out, o.history)
	return out
}

// ClearHistory drops the session gallery.
func (o *Orchestrator) ClearHistory() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = nil
}
