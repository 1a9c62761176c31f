package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes to a single topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log,
	}
}

func (k *KafkaPublisher) Publish(ctx context.Context, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
		})
	}
	return k.writer.WriteMessages(ctx, km...)
}

// PublishWithRetry splits msgs into batches and retries each batch with a linear backoff.
func (k *KafkaPublisher) PublishWithRetry(ctx context.Context, msgs []domain.Message, batchSize, maxRetries int) error {
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var failed int
	for i := 0; i < len(msgs); i += batchSize {
		end := i + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}

		var err error
		for attempt := 1; attempt <= maxRetries; attempt++ {
			if err = k.Publish(ctx, msgs[i:end]...); err == nil {
				break
			}
			k.log.Warn("batch publish attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("batch_start", i),
				zap.Error(err),
			)
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Duration(attempt) * time.Second):
				}
			}
		}
		if err != nil {
			failed += end - i
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to publish %d of %d messages", failed, len(msgs))
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
