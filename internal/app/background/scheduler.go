package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is one periodic worker. Spec uses the cron format with seconds or an
// "@every <duration>" descriptor.
type Task struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type scheduledTask struct {
	entry  cron.EntryID
	cancel context.CancelFunc
}

// Scheduler runs every task on its own cron entry with its own context, so a
// single task can be stopped without touching the others.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	baseCtx context.Context

	mu    sync.Mutex
	tasks map[string]scheduledTask
}

func NewScheduler(baseCtx context.Context, log *zap.Logger) *Scheduler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if log == nil {
		log = zap.NewNop()
	}
	cronLog := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		log:     log,
		baseCtx: baseCtx,
		tasks:   make(map[string]scheduledTask),
	}
}

func (s *Scheduler) Add(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.Name]; exists {
		return fmt.Errorf("task %s already scheduled", task.Name)
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	entry, err := s.cron.AddFunc(task.Spec, func() {
		if ctx.Err() != nil {
			return
		}
		started := time.Now()
		if err := task.Run(ctx); err != nil {
			s.log.Warn("background task failed", zap.String("task", task.Name), zap.Error(err))
			return
		}
		s.log.Debug("background task finished", zap.String("task", task.Name), zap.Duration("took", time.Since(started)))
	})
	if err != nil {
		cancel()
		return fmt.Errorf("schedule task %s: %w", task.Name, err)
	}
	s.tasks[task.Name] = scheduledTask{entry: entry, cancel: cancel}
	s.log.Info("background task scheduled", zap.String("task", task.Name), zap.String("spec", task.Spec))
	return nil
}

// StopTask unschedules one task and cancels the context of its running invocation.
func (s *Scheduler) StopTask(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[name]
	if !ok {
		return false
	}
	s.cron.Remove(task.entry)
	task.cancel()
	delete(s.tasks, name)
	s.log.Info("background task stopped", zap.String("task", name))
	return true
}

func (s *Scheduler) Start() {
	s.log.Info("cron started")
	s.cron.Start()
}

// Stop cancels every task and waits for running invocations to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for _, task := range s.tasks {
		task.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// Every turns an interval into a cron descriptor.
func Every(d time.Duration) string {
	return "@every " + d.String()
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
