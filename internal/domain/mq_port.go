package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
	// Commit acknowledges a consumed message. Nil for messages that need no
	// acknowledgement.
	Commit func(ctx context.Context) error
}

type PublisherPort interface {
	Publish(ctx context.Context, msgs ...Message) error
}

type SubscriberPort interface {
	Subscribe(ctx context.Context, topic, groupID string) (<-chan Message, error)
}
