package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
)

// BatchPublisher is a topic writer that can also retry batches.
type BatchPublisher interface {
	domain.PublisherPort
	PublishWithRetry(ctx context.Context, msgs []domain.Message, batchSize, maxRetries int) error
}

// EventPublisher encodes service events as JSON and writes them to the events topic.
type EventPublisher struct {
	port BatchPublisher
}

func NewEventPublisher(port BatchPublisher) *EventPublisher {
	return &EventPublisher{port: port}
}

func (p *EventPublisher) PublishOperations(ctx context.Context, events ...domain.OperationEvent) error {
	msgs := make([]domain.Message, 0, len(events))
	for _, event := range events {
		v, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal operation event %s: %w", event.OperationID, err)
		}
		msgs = append(msgs, domain.Message{Key: []byte(event.UserID), Value: v})
	}
	if len(msgs) == 1 {
		return p.port.Publish(ctx, msgs...)
	}
	return p.port.PublishWithRetry(ctx, msgs, 100, 3)
}

func (p *EventPublisher) PublishCommission(ctx context.Context, event domain.CommissionEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.port.Publish(ctx, domain.Message{Key: []byte(event.AffiliateID), Value: v})
}

func (p *EventPublisher) PublishSignal(ctx context.Context, event domain.SignalEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.port.Publish(ctx, domain.Message{Key: []byte(event.SignalID), Value: v})
}
