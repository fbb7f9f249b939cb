// Package prompt assembles image generation prompts from a place and a
// moment in time.
package prompt

import (
	"context"
	"fmt"
	"log/slog"

	"chronoscope/pkg/history"
	"chronoscope/pkg/model"
)

// NameResolver turns coordinates into a human-readable location name.
// Implementations must not fail; they degrade to a coordinate label instead.
type NameResolver interface {
	Reverse(ctx context.Context, coords model.Coordinates) string
}

// Builder composes the scene prompt sent to the image backend.
type Builder struct {
	resolver NameResolver
}

// Result carries the assembled prompt and the resolved inputs, so callers
// can reuse the location name without a second geocoding round trip.
type Result struct {
	Prompt       string
	LocationName string
	Time         model.TimeSelection
}

func NewBuilder(resolver NameResolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build assembles the prompt. A caller-provided location name wins over
// reverse geocoding. The time selection is normalized first so the display
// name is always present in the output.
func (b *Builder) Build(ctx context.Context, coords model.Coordinates, t model.TimeSelection) Result {
	name := coords.Name
	if name == "" {
		name = b.resolver.Reverse(ctx, coords)
	}

	if t.DisplayName == "" {
		t.DisplayName = t.FormatDisplayName()
	}
	contextText := history.ResolveContext(t, name)

	p := fmt.Sprintf("A photorealistic historical scene of %s in %s. %s. "+
		"Atmospheric lighting with dramatic shadows, moody twilight sky, cinematic composition. "+
		"Historically accurate architecture, clothing, and technology of the era. "+
		"High detail, professional photography style.",
		name, t.DisplayName, contextText)

	slog.Debug("Assembled prompt", "location", name, "time", t.DisplayName, "length", len(p))

	return Result{Prompt: p, LocationName: name, Time: t}
}
