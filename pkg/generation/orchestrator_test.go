package generation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronoscope/pkg/apierr"
	"chronoscope/pkg/model"
	"chronoscope/pkg/prompt"
	"chronoscope/pkg/tracker"
)

type fakePrompts struct{}

func (fakePrompts) Build(_ context.Context, coords model.Coordinates, t model.TimeSelection) prompt.Result {
	name := coords.Name
	if name == "" {
		name = "resolved place"
	}
	if t.DisplayName == "" {
		t.DisplayName = t.FormatDisplayName()
	}
	return prompt.Result{Prompt: "scene of " + name, LocationName: name, Time: t}
}

type fakeImages struct {
	delay time.Duration
	err   error
	calls int32
}

func (f *fakeImages) Generate(ctx context.Context, p string) (*model.GeneratedImage, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.GeneratedImage{ID: "img-1", URL: "data:image/png;base64,x", Prompt: p}, nil
}

type fakeStories struct {
	delay  time.Duration
	err    error
	result model.StoryResult
	calls  int32
}

func (f *fakeStories) GenerateStory(ctx context.Context, _ model.Coordinates, _ model.TimeSelection) (model.StoryResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.StoryResult{}, ctx.Err()
		}
	}
	if f.err != nil {
		return model.StoryResult{}, f.err
	}
	return f.result, nil
}

var (
	salem     = model.Coordinates{Latitude: 42.5195, Longitude: -70.8967, Name: "Salem, Massachusetts"}
	salemTime = model.TimeSelection{Year: 1692, Month: 6, Era: model.EraCE}
)

func TestGenerateReturnsImageWithoutWaitingForStory(t *testing.T) {
	images := &fakeImages{delay: 20 * time.Millisecond}
	stories := &fakeStories{delay: 300 * time.Millisecond, result: model.StoryResult{Title: "T", Story: "S"}}
	o := New(fakePrompts{}, images, stories, tracker.New())

	storyCh := make(chan model.StoryResult, 1)
	start := time.Now()
	img, err := o.Generate(context.Background(), salem, salemTime, func(s model.StoryResult) {
		storyCh <- s
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "img-1", img.ID)
	assert.Less(t, elapsed, 200*time.Millisecond, "image must not wait for the story")

	select {
	case s := <-storyCh:
		assert.Equal(t, "T", s.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("story callback never fired")
	}
}

func TestGenerateStoryFailureIsSuppressed(t *testing.T) {
	images := &fakeImages{}
	stories := &fakeStories{err: errors.New("model offline")}
	tr := tracker.New()
	o := New(fakePrompts{}, images, stories, tr)

	storyCh := make(chan model.StoryResult, 1)
	img, err := o.Generate(context.Background(), salem, salemTime, func(s model.StoryResult) {
		storyCh <- s
	})

	require.NoError(t, err, "story failure must not fail the scene")
	assert.NotNil(t, img)

	select {
	case s := <-storyCh:
		assert.True(t, s.Empty(), "suppressed story must deliver an empty result")
	case <-time.After(2 * time.Second):
		t.Fatal("story callback never fired")
	}

	stats := tr.Snapshot()["gemini"]
	assert.Equal(t, int64(1), stats.Suppressed)
}

func TestGenerateImageFailurePropagates(t *testing.T) {
	images := &fakeImages{err: apierr.New(apierr.ResourceExhausted, 429, "rate limited")}
	o := New(fakePrompts{}, images, &fakeStories{}, tracker.New())

	_, err := o.Generate(context.Background(), salem, salemTime, func(model.StoryResult) {})
	assert.Equal(t, apierr.ResourceExhausted, apierr.KindOf(err))
	assert.Empty(t, o.History(), "failed generations must not enter the gallery")
}

func TestGenerateImageFailureDiscardsStory(t *testing.T) {
	images := &fakeImages{err: apierr.New(apierr.ResourceExhausted, 429, "rate limited")}
	stories := &fakeStories{delay: 50 * time.Millisecond, result: model.StoryResult{Title: "T", Story: "S"}}
	o := New(fakePrompts{}, images, stories, tracker.New())

	storyCh := make(chan model.StoryResult, 1)
	_, err := o.Generate(context.Background(), salem, salemTime, func(s model.StoryResult) {
		storyCh <- s
	})
	require.Error(t, err)

	select {
	case s := <-storyCh:
		t.Fatalf("story delivered for a failed scene: %+v", s)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestGenerateValidatesInput(t *testing.T) {
	o := New(fakePrompts{}, &fakeImages{}, &fakeStories{}, tracker.New())

	_, err := o.Generate(context.Background(),
		model.Coordinates{Latitude: 99, Longitude: 0}, salemTime, nil)
	assert.Equal(t, apierr.InvalidArgument, apierr.KindOf(err))

	_, err = o.Generate(context.Background(), salem,
		model.TimeSelection{Year: 0, Era: model.EraCE}, nil)
	assert.Equal(t, apierr.InvalidArgument, apierr.KindOf(err))

	_, err = o.Generate(context.Background(), salem,
		model.TimeSelection{Year: 1692, Era: "AD"}, nil)
	assert.Equal(t, apierr.InvalidArgument, apierr.KindOf(err))
}

func TestGenerateNilCallbackSkipsStory(t *testing.T) {
	stories := &fakeStories{}
	o := New(fakePrompts{}, &fakeImages{}, stories, tracker.New())

	_, err := o.Generate(context.Background(), salem, salemTime, nil)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&stories.calls))
}

func TestHistory(t *testing.T) {
	o := New(fakePrompts{}, &fakeImages{}, nil, tracker.New())

	for i := 0; i < 3; i++ {
		_, err := o.Generate(context.Background(), salem, salemTime, nil)
		require.NoError(t, err)
	}

	h := o.History()
	assert.Len(t, h, 3)

	o.ClearHistory()
	assert.Empty(t, o.History())
}

func TestHistoryCap(t *testing.T) {
	o := New(fakePrompts{}, &fakeImages{}, nil, tracker.New())
	for i := 0; i < maxHistory+10; i++ {
		o.record(model.GeneratedImage{ID: "x"})
	}
	assert.Len(t, o.History(), maxHistory)
}

func TestGenerateStoryStandalonePropagatesFailure(t *testing.T) {
	stories := &fakeStories{err: errors.New("model offline")}
	o := New(fakePrompts{}, &fakeImages{}, stories, tracker.New())

	_, err := o.GenerateStory(context.Background(), salem, salemTime)
	assert.Error(t, err)
}

func TestGenerateStoryStandalone(t *testing.T) {
	stories := &fakeStories{result: model.StoryResult{Title: "T", Story: "S"}}
	o := New(fakePrompts{}, &fakeImages{}, stories, tracker.New())

	s, err := o.GenerateStory(context.Background(), salem, salemTime)
	require.NoError(t, err)
	assert.Equal(t, "T", s.Title)
}
