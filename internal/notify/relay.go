package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// OutboxStore is the persistence the relay drains.
type OutboxStore interface {
	FetchUnprocessed(ctx context.Context, limit int) ([]Event, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// MessageWriter publishes messages. *kafka.Writer satisfies it.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// RelayConfig tunes the outbox relay.
type RelayConfig struct {
	Interval  time.Duration
	BatchSize int
}

// NewKafkaWriter creates a writer for the notification topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// Relay publishes outbox events to Kafka. An event that fails to publish stays unprocessed and
// is retried on the next tick.
type Relay struct {
	store  OutboxStore
	writer MessageWriter
	config RelayConfig
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRelay creates a relay. Zero config values fall back to a 5s interval and batches of 100.
func NewRelay(store OutboxStore, writer MessageWriter, config RelayConfig, logger zerolog.Logger) *Relay {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	return &Relay{
		store:  store,
		writer: writer,
		config: config,
		logger: logger.With().Str("component", "outbox-relay").Logger(),
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.config.Interval).Msg("outbox relay started")

	for {
		select {
		case <-ticker.C:
			if _, err := r.ProcessOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error().Err(err).Msg("outbox relay tick failed")
			}
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay stopped")
			return
		}
	}
}

// Start runs the relay in the background until Stop is called or ctx ends.
func (r *Relay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		r.Run(ctx)
	}(r.done)
}

// Stop halts a relay started with Start and waits for the current tick to finish.
func (r *Relay) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// ProcessOnce publishes one batch and returns how many events were delivered.
func (r *Relay) ProcessOnce(ctx context.Context) (int, error) {
	events, err := r.store.FetchUnprocessed(ctx, r.config.BatchSize)
	if err != nil {
		return 0, err
	}

	// An aggregate whose event fails stays blocked for the rest of the batch so its later
	// notifications are not delivered out of order.
	blocked := make(map[uuid.UUID]bool)
	published := 0
	for _, event := range events {
		if blocked[event.AggregateID] {
			continue
		}

		msg := kafka.Message{
			Key:   []byte(event.AggregateID.String()),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
			},
		}

		if err := r.writer.WriteMessages(ctx, msg); err != nil {
			r.logger.Warn().
				Err(err).
				Int64("event_id", event.ID).
				Str("event_type", event.EventType).
				Str("aggregate_id", event.AggregateID.String()).
				Msg("failed to publish notification, will retry")
			blocked[event.AggregateID] = true
			continue
		}

		if err := r.store.MarkProcessed(ctx, event.ID); err != nil {
			r.logger.Error().
				Err(err).
				Int64("event_id", event.ID).
				Msg("failed to mark notification as processed")
			blocked[event.AggregateID] = true
			continue
		}
		published++
	}

	if published > 0 {
		r.logger.Debug().Int("published", published).Int("fetched", len(events)).Msg("outbox batch relayed")
	}

	return published, nil
}
