package summary

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"frameworks/api_bosun/internal/threads"
	"frameworks/pkg/logging"
)

type fakeProjects struct {
	projects []Project
	err      error
}

func (f *fakeProjects) ActiveProjects(ctx context.Context) ([]Project, error) {
	return f.projects, f.err
}

func (f *fakeProjects) Project(ctx context.Context, id string) (Project, bool, error) {
	for _, p := range f.projects {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Project{}, false, nil
}

type fakeUpdates struct {
	segments map[string][]Segment
	err      map[string]error
}

func (f *fakeUpdates) SegmentsForWeek(ctx context.Context, projectID, weekStart string) ([]Segment, error) {
	if err := f.err[projectID]; err != nil {
		return nil, err
	}
	return f.segments[projectID], nil
}

type fakeSynthesizer struct {
	err     map[string]error
	prompts []string
	mu      sync.Mutex
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	for name, err := range f.err {
		if strings.Contains(prompt, name) {
			return "", err
		}
	}
	return "digest: " + prompt[:20], nil
}

type fakePoster struct {
	postErr map[string]error
	posts   []string
	threads []string
	mu      sync.Mutex
}

func (f *fakePoster) PostMessage(ctx context.Context, channelID, text, threadTS string) (string, error) {
	if err := f.postErr[channelID]; err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, channelID+": "+text)
	f.threads = append(f.threads, threadTS)
	return "ts-" + channelID, nil
}

type fakeRegistry struct {
	registered []threads.TrackedThread
	mu         sync.Mutex
}

func (f *fakeRegistry) Register(ctx context.Context, thread threads.TrackedThread) (threads.TrackedThread, error) {
	if err := thread.Validate(); err != nil {
		return threads.TrackedThread{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, thread)
	return thread, nil
}

func (f *fakeRegistry) FindSibling(channelID, cycleID string, threadType threads.Type) (threads.TrackedThread, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.registered {
		if t.CycleID == cycleID && t.Type == threadType && (channelID == "" || t.ChannelID == channelID) {
			return t, true
		}
	}
	return threads.TrackedThread{}, false
}

func segmentsFor(project, week string, people ...string) []Segment {
	var out []Segment
	for _, name := range people {
		out = append(out, Segment{ProjectID: project, PersonName: name, Content: "shipped things", WeekStart: week})
	}
	return out
}

func newTestPublisher(projects *fakeProjects, updates *fakeUpdates, synth *fakeSynthesizer, poster *fakePoster, registry *fakeRegistry) *Publisher {
	return NewPublisher(PublisherConfig{
		Projects:    projects,
		Updates:     updates,
		Synthesizer: synth,
		Poster:      poster,
		Registry:    registry,
		Logger:      logging.NewLoggerWithService("test"),
	})
}

func TestGenerateSummariesCoversEveryProject(t *testing.T) {
	projects := &fakeProjects{projects: []Project{
		{ID: "proj-a", Name: "Alpha", ChannelID: "C-A"},
		{ID: "proj-b", Name: "Beta", ChannelID: "C-B"},
		{ID: "proj-c", Name: "Gamma"}, // no channel
		{ID: "proj-d", Name: "Delta", ChannelID: "C-D"}, // no updates
	}}
	updates := &fakeUpdates{segments: map[string][]Segment{
		"proj-a": segmentsFor("proj-a", "2026-01-12", "Ada", "Brin"),
		"proj-b": segmentsFor("proj-b", "2026-01-12", "Cleo"),
	}}
	synth := &fakeSynthesizer{}
	poster := &fakePoster{postErr: map[string]error{}}
	registry := &fakeRegistry{}
	pub := newTestPublisher(projects, updates, synth, poster, registry)

	result := pub.GenerateSummaries(context.Background(), "2026-01-12", "sync-2026-01-12-abc")

	if result.Posted != 2 || result.Skipped != 2 || result.Failed != 0 {
		t.Fatalf("expected 2 posted / 2 skipped, got %+v", result)
	}
	if len(result.Projects) != 4 {
		t.Fatalf("expected outcome for every project, got %d", len(result.Projects))
	}
	if len(registry.registered) != 2 {
		t.Fatalf("expected 2 pre-meeting threads, got %d", len(registry.registered))
	}
	for _, thread := range registry.registered {
		if thread.Type != threads.TypePreMeeting {
			t.Fatalf("expected pre-meeting thread, got %s", thread.Type)
		}
	}
}

func TestGenerateSummariesIsolatesSynthesisFailure(t *testing.T) {
	projects := &fakeProjects{projects: []Project{
		{ID: "proj-a", Name: "Alpha", ChannelID: "C-A"},
		{ID: "proj-b", Name: "Beta", ChannelID: "C-B"},
	}}
	updates := &fakeUpdates{segments: map[string][]Segment{
		"proj-a": segmentsFor("proj-a", "2026-01-12", "Ada"),
		"proj-b": segmentsFor("proj-b", "2026-01-12", "Cleo"),
	}}
	synth := &fakeSynthesizer{err: map[string]error{"Beta": errors.New("model overloaded")}}
	poster := &fakePoster{postErr: map[string]error{}}
	pub := newTestPublisher(projects, updates, synth, poster, &fakeRegistry{})

	result := pub.GenerateSummaries(context.Background(), "2026-01-12", "sync-2026-01-12-abc")

	if result.Posted != 1 || result.Failed != 1 {
		t.Fatalf("expected 1 posted / 1 failed, got %+v", result)
	}
	for _, outcome := range result.Projects {
		if outcome.ProjectID == "proj-b" {
			if outcome.Outcome != OutcomeFailed || !strings.Contains(outcome.Error, "model overloaded") {
				t.Fatalf("unexpected proj-b outcome: %+v", outcome)
			}
		}
	}
}

func TestGenerateSummariesDeliveryFailure(t *testing.T) {
	projects := &fakeProjects{projects: []Project{{ID: "proj-a", Name: "Alpha", ChannelID: "C-A"}}}
	updates := &fakeUpdates{segments: map[string][]Segment{
		"proj-a": segmentsFor("proj-a", "2026-01-12", "Ada"),
	}}
	poster := &fakePoster{postErr: map[string]error{"C-A": errors.New("channel_not_found")}}
	registry := &fakeRegistry{}
	pub := newTestPublisher(projects, updates, &fakeSynthesizer{}, poster, registry)

	result := pub.GenerateSummaries(context.Background(), "2026-01-12", "sync-2026-01-12-abc")

	if result.Failed != 1 {
		t.Fatalf("expected 1 failed, got %+v", result)
	}
	if len(registry.registered) != 0 {
		t.Fatal("no thread should be registered when delivery fails")
	}
}

func TestPostMeetingNoteRepliesInPreMeetingThread(t *testing.T) {
	projects := &fakeProjects{projects: []Project{{ID: "proj-a", Name: "Alpha", ChannelID: "C-A"}}}
	updates := &fakeUpdates{segments: map[string][]Segment{
		"proj-a": segmentsFor("proj-a", "2026-01-12", "Ada"),
	}}
	poster := &fakePoster{postErr: map[string]error{}}
	registry := &fakeRegistry{}
	pub := newTestPublisher(projects, updates, &fakeSynthesizer{}, poster, registry)

	// The digest run opens the pre-meeting thread the note replies to.
	pub.GenerateSummaries(context.Background(), "2026-01-12", "sync-2026-01-12-abc")

	if err := pub.PostMeetingNote(context.Background(), "proj-a", "2026-01-12", "sync-2026-01-12-abc", "decisions: ship it"); err != nil {
		t.Fatalf("post meeting note: %v", err)
	}

	if len(poster.threads) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(poster.threads))
	}
	if poster.threads[1] != "ts-C-A" {
		t.Fatalf("expected note threaded under digest, got %q", poster.threads[1])
	}

	last := registry.registered[len(registry.registered)-1]
	if last.Type != threads.TypePostMeeting || last.ProjectID != "proj-a" {
		t.Fatalf("unexpected post-meeting thread: %+v", last)
	}
}

func TestPostMeetingNoteUnknownProject(t *testing.T) {
	pub := newTestPublisher(&fakeProjects{}, &fakeUpdates{}, &fakeSynthesizer{}, &fakePoster{}, &fakeRegistry{})

	if err := pub.PostMeetingNote(context.Background(), "proj-x", "2026-01-12", "sync-2026-01-12-abc", "note"); err == nil {
		t.Fatal("expected error for unknown project")
	}
}
