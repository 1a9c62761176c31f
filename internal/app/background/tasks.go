package background

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/usecase"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/operation"
	"go.uber.org/zap"
)

const (
	TaskSentimentRefresh = "sentiment_refresh"
	TaskSignalExpiry     = "signal_expiry"
	TaskCleanup          = "cleanup"
	TaskCriticalCleanup  = "critical_cleanup"
	TaskPositionMonitor  = "position_monitor"
)

type BackgroundTasks struct {
	Gate    usecase.SentimentGate
	Sweeper usecase.RetentionSweeper
	Monitor *operation.PositionMonitor
	Cfg     *config.SignalConfig
	Log     *zap.Logger
}

func NewBackgroundTasks(
	gate usecase.SentimentGate,
	sweeper usecase.RetentionSweeper,
	monitor *operation.PositionMonitor,
	cfg *config.SignalConfig,
	log *zap.Logger,
) *BackgroundTasks {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackgroundTasks{
		Gate:    gate,
		Sweeper: sweeper,
		Monitor: monitor,
		Cfg:     cfg,
		Log:     log,
	}
}

// Tasks lists the periodic workers of the service.
func (bt *BackgroundTasks) Tasks() []Task {
	tasks := []Task{
		{Name: TaskSentimentRefresh, Spec: Every(bt.Cfg.Sentiment.RefreshInterval), Run: bt.refreshSentiment},
		{Name: TaskSignalExpiry, Spec: Every(bt.Cfg.Signals.ExpirySweepInterval), Run: bt.sweep(bt.Sweeper.SweepExpired)},
		{Name: TaskCleanup, Spec: Every(bt.Cfg.Retention.CleanupInterval), Run: bt.sweep(bt.Sweeper.Cleanup)},
		{Name: TaskCriticalCleanup, Spec: bt.Cfg.Retention.CriticalCron, Run: bt.sweep(bt.Sweeper.CriticalCleanup)},
	}
	if bt.Monitor != nil {
		tasks = append(tasks, Task{Name: TaskPositionMonitor, Spec: Every(bt.Cfg.Trading.MonitorInterval), Run: bt.monitorPositions})
	}
	return tasks
}

// StartAll schedules every task and starts the scheduler. The first sentiment
// reading is taken synchronously.
func (bt *BackgroundTasks) StartAll(ctx context.Context) (*Scheduler, error) {
	bt.Gate.Refresh(ctx)

	scheduler := NewScheduler(ctx, bt.Log)
	var errs []error
	for _, task := range bt.Tasks() {
		if err := scheduler.Add(task); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}

func (bt *BackgroundTasks) refreshSentiment(ctx context.Context) error {
	reading := bt.Gate.Refresh(ctx)
	bt.Log.Debug("sentiment refreshed", zap.Int("value", reading.Value), zap.String("source", reading.Source))
	return nil
}

func (bt *BackgroundTasks) sweep(run func(context.Context) (*usecase.SweepReport, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := run(ctx)
		return err
	}
}

func (bt *BackgroundTasks) monitorPositions(ctx context.Context) error {
	closed, err := bt.Monitor.Check(ctx)
	if closed > 0 {
		bt.Log.Info("positions closed by monitor", zap.Int("closed", closed))
	}
	return err
}
