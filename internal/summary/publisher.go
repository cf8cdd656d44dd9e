package summary

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"frameworks/api_bosun/internal/threads"
	"frameworks/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentDigests bounds the per-project fan-out so a large project
// roster does not stampede the LLM provider.
const maxConcurrentDigests = 3

// Poster is the outbound messaging surface the publisher needs.
// Satisfied by clients/slack.Client.
type Poster interface {
	PostMessage(ctx context.Context, channelID, text, threadTS string) (string, error)
}

// ThreadRegistry is the slice of the thread registry the publisher uses.
type ThreadRegistry interface {
	Register(ctx context.Context, thread threads.TrackedThread) (threads.TrackedThread, error)
	FindSibling(channelID, cycleID string, threadType threads.Type) (threads.TrackedThread, bool)
}

type PublisherConfig struct {
	Projects    ProjectStore
	Updates     UpdateStore
	Synthesizer Synthesizer
	Poster      Poster
	Registry    ThreadRegistry
	Logger      logging.Logger
}

// Publisher turns the week's collected updates into per-project digests
// and posts them to each project's channel ahead of its meeting.
type Publisher struct {
	projects    ProjectStore
	updates     UpdateStore
	synthesizer Synthesizer
	poster      Poster
	registry    ThreadRegistry
	logger      logging.Logger
}

func NewPublisher(cfg PublisherConfig) *Publisher {
	return &Publisher{
		projects:    cfg.Projects,
		updates:     cfg.Updates,
		synthesizer: cfg.Synthesizer,
		poster:      cfg.Poster,
		registry:    cfg.Registry,
		logger:      cfg.Logger,
	}
}

// GenerateSummaries synthesizes and posts a digest for every active
// project. Projects with no updates or no destination channel are
// skipped; synthesis or delivery failures fail only that project. The
// result covers every active project exactly once.
func (p *Publisher) GenerateSummaries(ctx context.Context, weekStart, cycleID string) Result {
	start := time.Now()
	result := Result{Projects: []ProjectOutcome{}}

	projects, err := p.projects.ActiveProjects(ctx)
	if err != nil {
		p.logger.WithError(err).Error("Digest run aborted: could not list active projects")
		return result
	}

	p.logger.WithFields(logging.Fields{
		"cycle_id":   cycleID,
		"week_start": weekStart,
		"projects":   len(projects),
	}).Info("Starting digest run")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDigests)

	for _, project := range projects {
		g.Go(func() error {
			outcome := p.publishDigest(gctx, project, weekStart, cycleID)

			mu.Lock()
			defer mu.Unlock()
			result.Projects = append(result.Projects, outcome)
			switch outcome.Outcome {
			case OutcomePosted:
				result.Posted++
			case OutcomeSkipped:
				result.Skipped++
			case OutcomeFailed:
				result.Failed++
			}
			digestsTotal.WithLabelValues(outcome.Outcome).Inc()
			return nil
		})
	}
	_ = g.Wait()

	digestRunDuration.Observe(time.Since(start).Seconds())
	p.logger.WithFields(logging.Fields{
		"cycle_id": cycleID,
		"posted":   result.Posted,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
	}).Info("Digest run finished")
	return result
}

func (p *Publisher) publishDigest(ctx context.Context, project Project, weekStart, cycleID string) ProjectOutcome {
	outcome := ProjectOutcome{ProjectID: project.ID, Name: project.Name}

	if project.ChannelID == "" {
		outcome.Outcome = OutcomeSkipped
		return outcome
	}

	segments, err := p.updates.SegmentsForWeek(ctx, project.ID, weekStart)
	if err != nil {
		outcome.Outcome = OutcomeFailed
		outcome.Error = fmt.Sprintf("load updates: %v", err)
		return outcome
	}
	if len(segments) == 0 {
		outcome.Outcome = OutcomeSkipped
		return outcome
	}

	digest, err := p.synthesizer.Synthesize(ctx, digestPrompt(project, weekStart, segments))
	if err != nil {
		outcome.Outcome = OutcomeFailed
		outcome.Error = fmt.Sprintf("synthesize digest: %v", err)
		return outcome
	}

	threadTS, err := p.poster.PostMessage(ctx, project.ChannelID, digest, "")
	if err != nil {
		outcome.Outcome = OutcomeFailed
		outcome.Error = fmt.Sprintf("post digest: %v", err)
		return outcome
	}

	thread, err := threads.NewPreMeetingThread(project.ChannelID, threadTS, cycleID, weekStart, project.ID)
	if err == nil {
		_, err = p.registry.Register(ctx, thread)
	}
	if err != nil {
		// The digest is already posted; losing the tracked thread only
		// costs discussion correlation.
		p.logger.WithError(err).WithField("project_id", project.ID).Warn("Could not register pre-meeting thread")
	}

	outcome.Outcome = OutcomePosted
	return outcome
}

// PostMeetingNote publishes a meeting recap for a project. When the
// cycle's pre-meeting digest thread is still known it replies there,
// otherwise it posts top-level in the project channel. The new message is
// registered as a post-meeting thread under the same cycle.
func (p *Publisher) PostMeetingNote(ctx context.Context, projectID, weekStart, cycleID, note string) error {
	project, found, err := p.projects.Project(ctx, projectID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("unknown project %s", projectID)
	}
	if project.ChannelID == "" {
		return fmt.Errorf("project %s has no channel", projectID)
	}

	var replyTo string
	if sibling, ok := p.registry.FindSibling(project.ChannelID, cycleID, threads.TypePreMeeting); ok {
		replyTo = sibling.ThreadTS
	}

	threadTS, err := p.poster.PostMessage(ctx, project.ChannelID, note, replyTo)
	if err != nil {
		return fmt.Errorf("post meeting note: %w", err)
	}

	thread, err := threads.NewPostMeetingThread(project.ChannelID, threadTS, cycleID, weekStart, project.ID)
	if err == nil {
		_, err = p.registry.Register(ctx, thread)
	}
	if err != nil {
		p.logger.WithError(err).WithField("project_id", project.ID).Warn("Could not register post-meeting thread")
	}
	return nil
}

func digestPrompt(project Project, weekStart string, segments []Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\nWeek of: %s\n\nCrew updates:\n", project.Name, weekStart)
	for _, seg := range segments {
		name := seg.PersonName
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "- %s: %s\n", name, seg.Content)
	}
	return b.String()
}
