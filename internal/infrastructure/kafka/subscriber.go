package kafka

import (
	"context"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type KafkaSubscriber struct {
	brokers []string
}

func NewKafkaSubscriber(brokers []string) *KafkaSubscriber {
	return &KafkaSubscriber{brokers: brokers}
}

// Subscribe streams messages of topic until ctx is done or the reader fails.
// Offsets are committed only through Message.Commit, so a message that was
// never acknowledged is delivered again after a restart.
func (k *KafkaSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	out := make(chan domain.Message)
	go func() {
		defer close(out)
		defer reader.Close()
		for {
			m, err := reader.FetchMessage(ctx)
			if err != nil {
				return
			}
			msg := domain.Message{
				Key:   m.Key,
				Value: m.Value,
				Commit: func(ctx context.Context) error {
					return reader.CommitMessages(ctx, m)
				},
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
