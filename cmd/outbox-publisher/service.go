package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salonpos/salonpos-backend/pkg/config"
	"github.com/salonpos/salonpos-backend/pkg/db/models"
	"github.com/salonpos/salonpos-backend/pkg/logger"
	"github.com/salonpos/salonpos-backend/pkg/outbox"
	"github.com/salonpos/salonpos-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond

	reasonNonRetryable = "non_retryable"
	reasonMaxAttempts  = "max_attempts"
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// orderingResumer is implemented by publishers that pause an ordering key after a failure.
type orderingResumer interface {
	ResumePublish(orderingKey string)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
}

// Service drains outbox_events onto Pub/Sub. Sale events of one shop share an ordering
// key so consumers see a shop's stock movements in commit order.
type Service struct {
	logg         *logger.Logger
	db           dbClient
	repo         outboxRepository
	pubsub       pubSubClient
	registry     registryResolver
	newPublisher publisherFactory
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration

	mu         sync.Mutex
	publishers map[string]publisher
}

// dispatchOutcome is what happened to one row within a batch.
type dispatchOutcome int

const (
	outcomePublished dispatchOutcome = iota
	outcomeRetry
	outcomeParked
)

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.PubSub == nil:
		return nil, errors.New("pubsub client is required")
	case params.Repository == nil:
		return nil, errors.New("outbox repository is required")
	case params.Registry == nil:
		return nil, errors.New("event registry is required")
	}

	factory := params.PublisherFactory
	if factory == nil {
		factory = func(topic string) publisher {
			return newGCPPublisher(params.PubSub.Publisher(topic))
		}
	}

	oc := params.Config.Outbox
	return &Service{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		pubsub:       params.PubSub,
		registry:     params.Registry,
		newPublisher: factory,
		batchSize:    positiveOr(oc.BatchSize, defaultBatchSize),
		maxAttempts:  positiveOr(oc.MaxAttempts, defaultMaxAttempts),
		pollInterval: time.Duration(positiveOr(oc.PollIntervalMS, defaultPollMs)) * time.Millisecond,
		publishers:   make(map[string]publisher),
	}, nil
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

// Run polls until ctx is canceled. Empty polls sleep for the poll interval; batch errors
// back off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	deps := []struct {
		name string
		ping func(context.Context) error
	}{
		{"database", s.db.Ping},
		{"pubsub", s.pubsub.Ping},
	}
	for _, dep := range deps {
		if err := dep.ping(ctx); err != nil {
			s.logg.Error(ctx, dep.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", dep.name, err)
		}
	}

	backoff := s.pollInterval
	for {
		if err := ctx.Err(); err != nil {
			s.logg.Info(ctx, "outbox publisher stopping")
			return err
		}

		processed, err := s.processBatch(ctx)
		wait := s.pollInterval
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			backoff = nextBackoff(backoff, s.pollInterval, maxBackoff)
			wait = backoff
		case processed:
			backoff = s.pollInterval
			continue
		default:
			backoff = s.pollInterval
		}

		if err := sleepCtx(ctx, withJitter(wait)); err != nil {
			return err
		}
	}
}

// processBatch claims up to batchSize rows and dispatches each. One row failing to publish
// never blocks the rest of the batch; only bookkeeping errors abort the transaction.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		processed = len(events) > 0

		counts := map[dispatchOutcome]int{}
		for _, event := range events {
			outcome, err := s.dispatch(ctx, tx, event)
			if err != nil {
				return err
			}
			counts[outcome]++
		}
		if processed {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"claimed":   len(events),
				"published": counts[outcomePublished],
				"retrying":  counts[outcomeRetry],
				"parked":    counts[outcomeParked],
			}), "outbox batch dispatched")
		}
		return nil
	})
	return processed, err
}

func (s *Service) dispatch(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) (dispatchOutcome, error) {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return outcomeParked, s.park(ctx, tx, event, reasonNonRetryable, err, s.logFields(event, nil))
	}

	fields := s.logFields(event, resolved)
	pubErr := s.publish(ctx, event, resolved)
	if pubErr == nil {
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return outcomePublished, fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "sale event published")
		return outcomePublished, nil
	}

	var nonRetry registry.NonRetryableError
	if errors.As(pubErr, &nonRetry) {
		return outcomeParked, s.park(ctx, tx, event, reasonNonRetryable, pubErr, fields)
	}

	attempt := event.AttemptCount + 1
	fields["attempt_count"] = attempt
	if attempt >= s.maxAttempts {
		return outcomeParked, s.park(ctx, tx, event, reasonMaxAttempts, fmt.Errorf("max publish attempts reached: %w", pubErr), fields)
	}

	s.logg.Warn(s.logg.WithFields(ctx, withError(fields, pubErr)), "sale event publish failed, will retry")
	if err := s.repo.MarkFailedTx(tx, event.ID, pubErr); err != nil {
		return outcomeRetry, fmt.Errorf("mark failure %s: %w", event.ID, err)
	}
	return outcomeRetry, nil
}

// park stops retrying a row. It stays in the table with its last error until the
// retention job removes it.
func (s *Service) park(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason string, cause error, fields map[string]any) error {
	fields["terminal_reason"] = reason
	s.logg.Warn(s.logg.WithFields(ctx, withError(fields, cause)), "sale event parked")

	if err := s.repo.MarkTerminalTx(tx, event.ID, fmt.Errorf("%s: %w", reason, cause), s.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFor(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	msg := &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: messageAttributes(event, resolved.Envelope),
	}
	if shopID := envelopeShop(resolved.Envelope); shopID != "" {
		msg.OrderingKey = shopID
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned no result for topic %s", topic))
	}
	if _, err := result.Get(publishCtx); err != nil {
		if resumer, ok := pub.(orderingResumer); ok && msg.OrderingKey != "" {
			resumer.ResumePublish(msg.OrderingKey)
		}
		return err
	}
	return nil
}

func (s *Service) publisherFor(topic string) publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pub, ok := s.publishers[topic]; ok {
		return pub
	}
	pub := s.newPublisher(topic)
	if pub != nil {
		s.publishers[topic] = pub
	}
	return pub
}

func messageAttributes(event models.OutboxEvent, env outbox.PayloadEnvelope) map[string]string {
	attrs := map[string]string{
		"event_id":       env.EventID,
		"event_type":     string(event.EventType),
		"aggregate_type": string(event.AggregateType),
		"aggregate_id":   event.AggregateID.String(),
		"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
	}
	if shopID := envelopeShop(env); shopID != "" {
		attrs["shop_id"] = shopID
	}
	return attrs
}

func envelopeShop(env outbox.PayloadEnvelope) string {
	if env.Actor == nil || env.Actor.ShopID == uuid.Nil {
		return ""
	}
	return env.Actor.ShopID.String()
}

func (s *Service) logFields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    event.EventType,
		"sale_id":       event.AggregateID.String(),
		"attempt_count": event.AttemptCount,
	}
	if resolved != nil {
		fields["topic"] = resolved.Descriptor.Topic
		fields["event_id"] = resolved.Envelope.EventID
		if shopID := envelopeShop(resolved.Envelope); shopID != "" {
			fields["shop_id"] = shopID
		}
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func withError(fields map[string]any, err error) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, limit time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, limit)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

// gcpPublisher adapts *pubsub.Publisher to the narrow publisher interface.
type gcpPublisher struct {
	*gcppubsub.Publisher
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	p.EnableMessageOrdering = true
	return &gcpPublisher{Publisher: p}
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
