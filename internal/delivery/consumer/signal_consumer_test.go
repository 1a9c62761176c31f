package consumer

import (
	"context"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	signaldto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSubscriber struct{ ch chan domain.Message }

func (s chanSubscriber) Subscribe(ctx context.Context, topic, groupID string) (<-chan domain.Message, error) {
	return s.ch, nil
}

type collectingUsecase struct {
	mu     sync.Mutex
	inputs []*signaldto.ProcessSignalInput
	events []string
}

func (u *collectingUsecase) record(event string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.events = append(u.events, event)
}

func (u *collectingUsecase) committer(key string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		u.record("commit " + key)
		return nil
	}
}

func (u *collectingUsecase) ProcessSignal(ctx context.Context, input *signaldto.ProcessSignalInput) (*signaldto.ProcessSignalOutput, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inputs = append(u.inputs, input)
	u.events = append(u.events, "process "+input.Symbol)
	return &signaldto.ProcessSignalOutput{Status: signaldto.StatusProcessed}, nil
}

func TestConsumerProcessesMessages(t *testing.T) {
	ch := make(chan domain.Message, 3)
	ch <- domain.Message{Value: []byte(`{"signalKeyword":"CLOSE SHORT","symbol":"ETHUSDT","timestamp":"2024-03-01T12:00:00Z"}`)}
	ch <- domain.Message{Value: []byte(`garbage`)}
	ch <- domain.Message{Value: []byte(`{"signalKeyword":"LONG","symbol":"BTCUSDT","timestamp":"2024-03-01T12:00:00Z","source":"bot"}`)}
	close(ch)

	uc := &collectingUsecase{}
	err := NewSignalConsumer(chanSubscriber{ch: ch}, uc, "trading-signals", "signal-service", nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, uc.inputs, 2)
	assert.Equal(t, "CLOSE SHORT", uc.inputs[0].SignalKeyword)
	assert.Equal(t, "kafka", uc.inputs[0].Source)
	assert.Equal(t, "bot", uc.inputs[1].Source)
	assert.False(t, uc.inputs[0].Timestamp.IsZero())
}

func TestConsumerCommitsAfterProcessing(t *testing.T) {
	uc := &collectingUsecase{}
	ch := make(chan domain.Message, 2)
	ch <- domain.Message{Key: []byte("a"), Value: []byte(`{"signalKeyword":"LONG","symbol":"BTCUSDT"}`), Commit: uc.committer("a")}
	ch <- domain.Message{Key: []byte("b"), Value: []byte(`not json`), Commit: uc.committer("b")}
	close(ch)

	// A cancelled consumer context must not prevent acknowledging handled messages.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewSignalConsumer(chanSubscriber{ch: ch}, uc, "trading-signals", "signal-service", nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, []string{"process BTCUSDT", "commit a", "commit b"}, uc.events)
}
