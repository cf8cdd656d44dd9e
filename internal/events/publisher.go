package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"frameworks/api_bosun/internal/collect"
	"frameworks/api_bosun/internal/summary"
	"frameworks/pkg/kafka"
	"frameworks/pkg/logging"
)

type PublisherConfig struct {
	Brokers []string
	Topic   string
	Source  string
	Logger  logging.Logger
}

// Publisher emits cycle outcome events to Kafka for downstream analytics.
// The rest of the service treats a nil Publisher as a disabled sink.
type Publisher struct {
	producer *kafka.Producer
	topic    string
	source   string
	logger   logging.Logger
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers required for cycle event publisher")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "bosun.cycle_events"
	}
	source := cfg.Source
	if source == "" {
		source = "bosun"
	}
	producer, err := kafka.NewProducer(cfg.Brokers, source, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		source:   source,
		logger:   cfg.Logger,
	}, nil
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

func (p *Publisher) Ping(ctx context.Context) error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Ping(ctx)
}

type cycleEvent struct {
	Type       string    `json:"type"`
	CycleID    string    `json:"cycleId"`
	WeekStart  string    `json:"weekStart"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// CollectionFinished emits the outcome of one check-in collection run.
func (p *Publisher) CollectionFinished(ctx context.Context, cycleID, weekStart string, result collect.Result) {
	p.emit("collection_finished", cycleID, weekStart, result)
}

// DigestsPosted emits the outcome of one digest run.
func (p *Publisher) DigestsPosted(ctx context.Context, cycleID, weekStart string, result summary.Result) {
	p.emit("digests_posted", cycleID, weekStart, result)
}

func (p *Publisher) emit(eventType, cycleID, weekStart string, payload any) {
	if p == nil || p.producer == nil {
		return
	}

	event := cycleEvent{
		Type:       eventType,
		CycleID:    cycleID,
		WeekStart:  weekStart,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("Could not encode cycle event")
		return
	}

	err = p.producer.ProduceMessage(p.topic, []byte(cycleID), value, map[string]string{
		"source": p.source,
		"type":   eventType,
	})
	if err != nil {
		// Analytics are best-effort; a broker outage never fails a cycle.
		p.logger.WithError(err).WithField("type", eventType).Warn("Could not publish cycle event")
		return
	}
	p.logger.WithFields(logging.Fields{
		"type":     eventType,
		"cycle_id": cycleID,
		"topic":    p.topic,
	}).Info("Published cycle event")
}
