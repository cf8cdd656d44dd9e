package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frameworks/api_bosun/internal/collect"
	"frameworks/api_bosun/internal/summary"
	"frameworks/pkg/logging"
)

// Collector runs a check-in collection for one cycle.
type Collector interface {
	StartCollection(ctx context.Context, weekStart, cycleID string) collect.Result
}

// Publisher runs a digest publication for one cycle.
type Publisher interface {
	GenerateSummaries(ctx context.Context, weekStart, cycleID string) summary.Result
}

// CycleEvents receives cycle outcomes for downstream analytics. Optional;
// a nil sink disables emission.
type CycleEvents interface {
	CollectionFinished(ctx context.Context, cycleID, weekStart string, result collect.Result)
	DigestsPosted(ctx context.Context, cycleID, weekStart string, result summary.Result)
}

type SchedulerConfig struct {
	Collection WeeklyTime
	Summaries  WeeklyTime
	Collector  Collector
	Publisher  Publisher
	Events     CycleEvents
	Logger     logging.Logger
}

// Scheduler owns the two weekly jobs: Friday check-in collection and
// Monday digest publication. Start and Stop are idempotent; a job run that
// fails or panics never takes down the process or the next occurrence.
type Scheduler struct {
	collection WeeklyTime
	summaries  WeeklyTime
	collector  Collector
	publisher  Publisher
	events     CycleEvents
	logger     logging.Logger
	now        func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		collection: cfg.Collection,
		summaries:  cfg.Summaries,
		collector:  cfg.Collector,
		publisher:  cfg.Publisher,
		events:     cfg.Events,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Start launches both weekly jobs. Calling Start on a running scheduler is
// a no-op; the existing jobs keep their timers.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go s.runJob(ctx, "collection", s.collection, s.TriggerCollection)
	go s.runJob(ctx, "summaries", s.summaries, s.TriggerSummaries)

	s.logger.WithFields(logging.Fields{
		"collection": s.collection.String(),
		"summaries":  s.summaries.String(),
	}).Info("Scheduler started")
}

// Stop cancels both jobs and waits for any in-flight run. Stopping a
// scheduler that never started is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}

	cancel()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, name string, at WeeklyTime, run func(context.Context)) {
	defer s.wg.Done()
	for {
		next := at.Next(s.now())
		timer := time.NewTimer(next.Sub(s.now()))
		s.logger.WithFields(logging.Fields{
			"job":  name,
			"next": next,
		}).Info("Scheduled next run")

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			run(ctx)
		}
	}
}

// TriggerCollection runs a check-in collection for the current week's
// cycle. Identical to the scheduled Friday run; safe to invoke manually.
func (s *Scheduler) TriggerCollection(ctx context.Context) {
	defer s.recoverJob("collection")

	now := s.now().In(s.collection.Location)
	weekStart := WeekStart(now)
	cycleID := NewCycleID(weekStart, now)

	result := s.collector.StartCollection(ctx, weekStart, cycleID)
	if s.events != nil {
		s.events.CollectionFinished(ctx, cycleID, weekStart, result)
	}
}

// TriggerSummaries publishes digests for the previous week's cycle, the
// one whose check-ins were collected last Friday.
func (s *Scheduler) TriggerSummaries(ctx context.Context) {
	defer s.recoverJob("summaries")

	now := s.now().In(s.summaries.Location)
	weekStart := WeekStart(now.AddDate(0, 0, -7))
	cycleID := NewCycleID(weekStart, now)

	result := s.publisher.GenerateSummaries(ctx, weekStart, cycleID)
	if s.events != nil {
		s.events.DigestsPosted(ctx, cycleID, weekStart, result)
	}
}

func (s *Scheduler) recoverJob(name string) {
	if r := recover(); r != nil {
		s.logger.WithFields(logging.Fields{
			"job":   name,
			"panic": fmt.Sprint(r),
		}).Error("Scheduled job panic")
	}
}

// NextCollectionTime reports when the collection job will next fire, in
// its configured zone.
func (s *Scheduler) NextCollectionTime() time.Time {
	return s.collection.Next(s.now())
}

// NextSummaryTime reports when the digest job will next fire.
func (s *Scheduler) NextSummaryTime() time.Time {
	return s.summaries.Next(s.now())
}
