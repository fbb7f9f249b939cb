// Package textgen generates atmospheric companion stories through the
// Gemini SDK. Stories are best effort: the orchestrator suppresses failures
// here, so this client reports errors without retrying.
package textgen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/config"
	"chronoscope/pkg/model"
	"chronoscope/pkg/tracker"
)

// Client wraps the genai SDK for story generation. The key can change at
// runtime via Configure, so access is mutex-guarded.
type Client struct {
	genaiClient *genai.Client
	apiKey      string
	modelName   string
	wordLimit   int
	tracker     *tracker.Tracker

	mu sync.RWMutex
}

// NewClient creates a story client. A missing key is not an error; the
// client stays unconfigured until a key arrives via Configure.
func NewClient(cfg config.TextGenConfig, t *tracker.Tracker) (*Client, error) {
	c := &Client{tracker: t}
	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure updates the client with new settings.
func (c *Client) Configure(cfg config.TextGenConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = cfg.Key
	c.modelName = cfg.Model
	c.wordLimit = cfg.WordLimit

	if c.modelName == "" {
		c.modelName = "gemini-2.5-flash"
	}
	if c.wordLimit <= 0 {
		c.wordLimit = 80
	}

	if c.apiKey == "" {
		c.genaiClient = nil
		return nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: c.apiKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client

	if err := c.validateModel(context.Background()); err != nil {
		slog.Warn("Story model validation failed (proceeding anyway)", "error", err)
	}

	return nil
}

// Close cleans up resources.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genaiClient = nil
}

// Ready reports whether the client can generate stories.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.genaiClient != nil
}

// GenerateStory asks the model for a spooky title and short story matching
// the scene. Failures propagate to the caller, which decides whether to
// surface or suppress them.
func (c *Client) GenerateStory(ctx context.Context, location model.Coordinates, t model.TimeSelection) (model.StoryResult, error) {
	c.mu.RLock()
	client := c.genaiClient
	modelName := c.modelName
	wordLimit := c.wordLimit
	c.mu.RUnlock()

	if client == nil {
		return model.StoryResult{}, apierr.New(apierr.Unauthenticated, http.StatusUnauthorized,
			"Story API key not configured. Please set your API key.").Log("Story generation")
	}

	locationName := location.Name
	if locationName == "" {
		locationName = fmt.Sprintf("Latitude %.2f, Longitude %.2f", location.Latitude, location.Longitude)
	}
	if t.DisplayName == "" {
		t.DisplayName = t.FormatDisplayName()
	}

	prompt := storyPrompt(locationName, t.DisplayName, wordLimit)

	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), nil)
	if err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return model.StoryResult{}, fmt.Errorf("story generation failed: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return model.StoryResult{}, err
	}

	if c.tracker != nil {
		c.tracker.TrackAPISuccess("gemini")
	}
	return parseStory(text, locationName), nil
}

func storyPrompt(locationName, displayName string, wordLimit int) string {
	return fmt.Sprintf(`Write a short, spooky title and an atmospheric background story (max %d words) for a historical scene in %s during %s.
The story should be eerie, mysterious, and fit a Halloween theme.
Focus on the shadows, the unknown, and the supernatural vibes of that specific time and place.

Format the output exactly like this:
TITLE: [Insert Spooky Title Here]
STORY: [Insert Story Here]`, wordLimit, locationName, displayName)
}

var (
	titleRe = regexp.MustCompile(`TITLE:\s*(.+)`)
	storyRe = regexp.MustCompile(`(?s)STORY:\s*(.+)`)
)

// parseStory extracts the TITLE:/STORY: sections. Malformed output degrades
// gracefully: a fallback title is synthesized and the raw text becomes the
// story rather than losing the response.
func parseStory(text, locationName string) model.StoryResult {
	title := "The Haunting of " + locationName
	if m := titleRe.FindStringSubmatch(text); m != nil {
		title = strings.TrimSpace(m[1])
	}

	var story string
	if m := storyRe.FindStringSubmatch(text); m != nil {
		story = strings.TrimSpace(m[1])
	} else {
		story = strings.TrimSpace(titleRe.ReplaceAllString(text, ""))
	}
	if story == "" {
		story = strings.TrimSpace(text)
	}

	return model.StoryResult{Title: title, Story: story}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response text")
	}
	return sb.String(), nil
}

// validateModel checks if the configured model is available for the API key.
func (c *Client) validateModel(ctx context.Context) error {
	name := c.modelName
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}

	_, err := c.genaiClient.Models.Get(ctx, name, nil)
	if err == nil {
		slog.Debug("Story model validation success", "model", c.modelName)
		return nil
	}

	slog.Warn("Story model validation failed, fetching available models...", "model", c.modelName, "error", err)

	iter, listErr := c.genaiClient.Models.List(ctx, nil)
	if listErr != nil {
		slog.Warn("Failed to list models for recovery", "error", listErr)
		return nil
	}

	var available []string
	for {
		resp, nextErr := iter.Next(ctx)
		if nextErr == iterator.Done {
			break
		}
		if nextErr != nil {
			break
		}
		if strings.Contains(strings.ToLower(resp.Name), "gemini") {
			available = append(available, resp.Name)
		}
	}

	slog.Error("Configured story model not found", "configured", c.modelName, "available", strings.Join(available, ", "))
	return nil
}
