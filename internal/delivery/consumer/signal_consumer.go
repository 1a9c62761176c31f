package consumer

import (
	"context"
	"encoding/json"
	"time"

	signalRequest "github.com/LavaJover/shvark-signal-service/internal/delivery/http/dto/signal/request"
	"github.com/LavaJover/shvark-signal-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/signal"
	"go.uber.org/zap"
)

const commitTimeout = 10 * time.Second

// SignalConsumer feeds signals read from the signals topic into the same
// processing path as the webhook.
type SignalConsumer struct {
	Subscriber domain.SubscriberPort
	Usecase    signal.SignalUsecase
	Topic      string
	GroupID    string
	Log        *zap.Logger
}

func NewSignalConsumer(sub domain.SubscriberPort, uc signal.SignalUsecase, topic, groupID string, log *zap.Logger) *SignalConsumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SignalConsumer{Subscriber: sub, Usecase: uc, Topic: topic, GroupID: groupID, Log: log}
}

// Run blocks until ctx is done or the subscription ends.
func (c *SignalConsumer) Run(ctx context.Context) error {
	messages, err := c.Subscriber.Subscribe(ctx, c.Topic, c.GroupID)
	if err != nil {
		return err
	}
	c.Log.Info("signal consumer started", zap.String("topic", c.Topic), zap.String("group_id", c.GroupID))
	for msg := range messages {
		c.Handle(ctx, msg)
		c.commit(ctx, msg)
	}
	c.Log.Info("signal consumer stopped", zap.String("topic", c.Topic))
	return ctx.Err()
}

// commit acknowledges msg once it has been handled. Shutdown does not
// cancel the commit of a message that was already processed.
func (c *SignalConsumer) commit(ctx context.Context, msg domain.Message) {
	if msg.Commit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := msg.Commit(ctx); err != nil {
		c.Log.Error("failed to commit signal message", zap.ByteString("key", msg.Key), zap.Error(err))
	}
}

func (c *SignalConsumer) Handle(ctx context.Context, msg domain.Message) {
	var req signalRequest.SignalRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.Log.Warn("dropping malformed signal message", zap.ByteString("key", msg.Key), zap.Error(err))
		return
	}
	if req.Source == "" {
		req.Source = "kafka"
	}
	output, err := c.Usecase.ProcessSignal(ctx, handlers.ToProcessSignalInput(&req, string(msg.Value)))
	if err != nil {
		c.Log.Error("failed to process signal message", zap.Error(err))
		return
	}
	c.Log.Debug("signal message processed",
		zap.String("signal_id", output.SignalID),
		zap.String("status", string(output.Status)),
	)
}
