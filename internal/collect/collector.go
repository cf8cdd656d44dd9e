package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"frameworks/api_bosun/internal/threads"
	"frameworks/pkg/logging"
)

// defaultSendDelay paces outbound DMs so a large crew does not trip the
// messaging API's rate limits.
const defaultSendDelay = time.Second

// Messenger is the outbound messaging surface the collector needs.
// Satisfied by clients/slack.Client.
type Messenger interface {
	OpenDirectConversation(ctx context.Context, userID string) (string, error)
	PostMessage(ctx context.Context, channelID, text, threadTS string) (string, error)
}

// ThreadRegistry is the slice of the thread registry the collector uses.
type ThreadRegistry interface {
	Register(ctx context.Context, thread threads.TrackedThread) (threads.TrackedThread, error)
	Lookup(ctx context.Context, channelID, threadTS string) (threads.TrackedThread, bool, error)
}

type CollectorConfig struct {
	People    PeopleStore
	Checkins  CheckinStore
	Messenger Messenger
	Registry  ThreadRegistry
	Logger    logging.Logger
	SendDelay time.Duration
}

// Collector runs the weekly check-in fan-out: one DM per active person,
// each tracked as a collection thread so replies correlate back to the
// cycle that asked for them.
type Collector struct {
	people    PeopleStore
	checkins  CheckinStore
	messenger Messenger
	registry  ThreadRegistry
	logger    logging.Logger
	sendDelay time.Duration
}

func NewCollector(cfg CollectorConfig) *Collector {
	delay := cfg.SendDelay
	if delay <= 0 {
		delay = defaultSendDelay
	}
	return &Collector{
		people:    cfg.People,
		checkins:  cfg.Checkins,
		messenger: cfg.Messenger,
		registry:  cfg.Registry,
		logger:    cfg.Logger,
		sendDelay: delay,
	}
}

// StartCollection DMs every active person for the given cycle. People
// without a chat account are skipped and appear in neither count. Each
// person gets a pending check-in row before any outbound call, so a crash
// mid-run leaves an auditable trail. Failures are isolated per person;
// the batch always runs to completion.
func (c *Collector) StartCollection(ctx context.Context, weekStart, cycleID string) Result {
	start := time.Now()
	result := Result{}

	people, err := c.people.ActivePeople(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list active people: %v", err))
		c.logger.WithError(err).Error("Collection aborted: could not list active people")
		return result
	}

	c.logger.WithFields(logging.Fields{
		"cycle_id":   cycleID,
		"week_start": weekStart,
		"people":     len(people),
	}).Info("Starting check-in collection")

	for i, person := range people {
		if person.ChatUserID == "" {
			c.logger.WithField("person_id", person.ID).Debug("Skipping person without chat account")
			continue
		}
		if i > 0 {
			select {
			case <-time.After(c.sendDelay):
			case <-ctx.Done():
				result.Errors = append(result.Errors, fmt.Sprintf("collection cancelled: %v", ctx.Err()))
				return result
			}
		}

		if err := c.collectFrom(ctx, weekStart, cycleID, person); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", person.ID, person.Name, err))
			checkinsTotal.WithLabelValues(StatusFailed).Inc()
			c.logger.WithError(err).WithFields(logging.Fields{
				"person_id": person.ID,
				"cycle_id":  cycleID,
			}).Warn("Check-in delivery failed")
			continue
		}
		result.Sent++
		checkinsTotal.WithLabelValues(StatusSent).Inc()
	}

	collectionDuration.Observe(time.Since(start).Seconds())
	c.logger.WithFields(logging.Fields{
		"cycle_id": cycleID,
		"sent":     result.Sent,
		"failed":   result.Failed,
	}).Info("Check-in collection finished")
	return result
}

func (c *Collector) collectFrom(ctx context.Context, weekStart, cycleID string, person Person) error {
	checkin, err := c.checkins.Create(ctx, Checkin{
		CycleID:   cycleID,
		WeekStart: weekStart,
		PersonID:  person.ID,
	})
	if err != nil {
		return fmt.Errorf("record checkin: %w", err)
	}

	channelID, err := c.messenger.OpenDirectConversation(ctx, person.ChatUserID)
	if err != nil {
		c.markFailed(ctx, checkin.ID, err)
		return fmt.Errorf("open conversation: %w", err)
	}

	threadTS, err := c.messenger.PostMessage(ctx, channelID, checkinPrompt(person, weekStart), "")
	if err != nil {
		c.markFailed(ctx, checkin.ID, err)
		return fmt.Errorf("post checkin prompt: %w", err)
	}

	snapshot, err := json.Marshal(ThreadContext{
		PersonName: person.Name,
		Projects:   person.Projects,
	})
	if err != nil {
		snapshot = nil
	}

	thread, err := threads.NewCollectionThread(channelID, threadTS, cycleID, weekStart, person.ID, snapshot)
	if err == nil {
		_, err = c.registry.Register(ctx, thread)
	}
	if err != nil {
		// The DM went out; losing the tracked thread only costs reply
		// correlation, so the check-in still counts as sent.
		c.logger.WithError(err).WithField("person_id", person.ID).Warn("Could not register collection thread")
	}

	if err := c.checkins.UpdateDelivery(ctx, checkin.ID, channelID, threadTS); err != nil {
		c.logger.WithError(err).WithField("checkin_id", checkin.ID).Warn("Could not record delivery info")
	}
	if err := c.checkins.UpdateStatus(ctx, checkin.ID, StatusSent, ""); err != nil {
		c.logger.WithError(err).WithField("checkin_id", checkin.ID).Warn("Could not mark checkin sent")
	}
	return nil
}

func (c *Collector) markFailed(ctx context.Context, checkinID string, cause error) {
	if err := c.checkins.UpdateStatus(ctx, checkinID, StatusFailed, cause.Error()); err != nil {
		c.logger.WithError(err).WithField("checkin_id", checkinID).Warn("Could not mark checkin failed")
	}
}

func checkinPrompt(person Person, weekStart string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hey %s! Time for your weekly check-in (week of %s).\n\n", person.Name, weekStart)
	if len(person.Projects) > 0 {
		fmt.Fprintf(&b, "Your projects: %s.\n\n", strings.Join(person.Projects, ", "))
	}
	b.WriteString("Reply in this thread with what you shipped, what's next, and anything blocking you.")
	return b.String()
}
