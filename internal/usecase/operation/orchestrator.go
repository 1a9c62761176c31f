package operation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-signal-service/internal/usecase"
	operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxAttempts bounds how often one atomic unit runs before it is reported as an error.
const maxAttempts = 2

type OperationOrchestrator interface {
	OpenForSignal(ctx context.Context, input *operationdto.OpenInput) (*operationdto.BatchSummary, error)
	CloseForSignal(ctx context.Context, signal *domain.Signal, exitPrice decimal.Decimal) (*operationdto.BatchSummary, error)
}

type DefaultOperationOrchestrator struct {
	Store       domain.TradingStore
	Operations  domain.OperationRepository
	Users       domain.UserDirectory
	Eligibility usecase.EligibilityChecker
	Lifecycle   OperationLifecycle
	Audit       domain.AuditRepository
	Publisher   domain.EventPublisher
	Metrics     *metrics.SignalMetrics
	Log         *zap.Logger
	Cfg         config.Trading
	Now         func() time.Time
}

func NewDefaultOperationOrchestrator(
	store domain.TradingStore,
	operations domain.OperationRepository,
	users domain.UserDirectory,
	eligibility usecase.EligibilityChecker,
	lifecycle OperationLifecycle,
	audit domain.AuditRepository,
	publisher domain.EventPublisher,
	m *metrics.SignalMetrics,
	log *zap.Logger,
	cfg config.Trading,
) *DefaultOperationOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultOperationOrchestrator{
		Store:       store,
		Operations:  operations,
		Users:       users,
		Eligibility: eligibility,
		Lifecycle:   lifecycle,
		Audit:       audit,
		Publisher:   publisher,
		Metrics:     m,
		Log:         log,
		Cfg:         cfg,
		Now:         time.Now,
	}
}

// OpenForSignal opens one operation per eligible trader. Every trader is handled
// in its own transaction so a failure never affects the others.
func (o *DefaultOperationOrchestrator) OpenForSignal(ctx context.Context, input *operationdto.OpenInput) (*operationdto.BatchSummary, error) {
	signal := input.Signal
	if signal.Category != domain.CategoryOpen {
		return nil, fmt.Errorf("signal %s is not an open signal", signal.ID)
	}
	if !input.Price.IsPositive() {
		return nil, domain.ErrPriceUnavailable
	}

	traders, err := o.Users.ListActiveTraders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active traders: %w", err)
	}

	started := time.Now()
	details := make([]operationdto.UserDetail, len(traders))
	opened := make([]*domain.Operation, len(traders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())
	for i, trader := range traders {
		g.Go(func() error {
			details[i], opened[i] = o.openForTrader(gctx, signal, trader, input.Price)
			return nil
		})
	}
	_ = g.Wait()

	summary := &operationdto.BatchSummary{SignalID: signal.ID, UsersProcessed: len(traders)}
	events := make([]domain.OperationEvent, 0, len(traders))
	for i, detail := range details {
		summary.Add(detail)
		if opened[i] != nil {
			events = append(events, operationEvent(domain.EventOperationOpened, opened[i]))
		}
	}

	if o.Metrics != nil {
		o.Metrics.RecordFanOutDuration(time.Since(started).Seconds())
	}
	o.Log.Info("open signal fan-out finished",
		zap.String("signal_id", signal.ID),
		zap.String("symbol", signal.Symbol),
		zap.String("side", string(signal.Direction)),
		zap.Int("users_processed", summary.UsersProcessed),
		zap.Int("opened", summary.OperationsOpened),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)

	if o.Publisher != nil && len(events) > 0 {
		go func(events []domain.OperationEvent) {
			if err := o.Publisher.PublishOperations(context.Background(), events...); err != nil {
				o.Log.Error("failed to publish operation events", zap.String("stage", "opening"), zap.Error(err))
			}
		}(events)
	}
	return summary, nil
}

func (o *DefaultOperationOrchestrator) openForTrader(ctx context.Context, signal *domain.Signal, trader domain.Trader, price decimal.Decimal) (operationdto.UserDetail, *domain.Operation) {
	detail := operationdto.UserDetail{UserID: trader.UserID}

	var err error
	var operation *domain.Operation
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			// The balance may have moved since the batch listing.
			fresh, rerr := o.Users.GetTrader(ctx, trader.UserID)
			if rerr != nil {
				err = fmt.Errorf("refresh trader: %w", rerr)
				break
			}
			trader = *fresh
		}
		operation, err = o.openOnce(ctx, signal, trader, price)
		if err == nil || isEligibility(err) || ctx.Err() != nil {
			break
		}
		o.Log.Warn("open attempt failed",
			zap.String("signal_id", signal.ID),
			zap.String("user_id", trader.UserID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	var eligibilityErr *domain.EligibilityError
	switch {
	case err == nil:
		detail.Outcome = operationdto.OutcomeOpened
		detail.OperationID = operation.ID
		o.Log.Info("operation opened",
			zap.String("operation_id", operation.ID),
			zap.String("user_id", operation.UserID),
			zap.String("symbol", operation.Symbol),
			zap.String("side", string(operation.Side)),
			zap.String("entry_price", operation.EntryPrice.String()),
			zap.String("signal_id", signal.ID),
		)
		if o.Metrics != nil {
			o.Metrics.RecordOperationOpened(operation.Symbol, string(operation.Side))
		}
		return detail, operation
	case errors.As(err, &eligibilityErr):
		detail.Outcome = operationdto.OutcomeSkipped
		detail.ReasonCode = eligibilityErr.Code
		detail.Message = eligibilityErr.Error()
		o.Log.Info("user skipped",
			zap.String("signal_id", signal.ID),
			zap.String("user_id", trader.UserID),
			zap.String("symbol", signal.Symbol),
			zap.String("reason", eligibilityErr.Code),
			zap.String("detail", detail.Message),
		)
		if o.Metrics != nil {
			o.Metrics.RecordEligibilitySkip(eligibilityErr.Code)
		}
		o.audit(ctx, trader.UserID, eligibilityErr.Code, fmt.Sprintf("signal=%s symbol=%s %s", signal.ID, signal.Symbol, detail.Message))
	default:
		detail.Outcome = operationdto.OutcomeError
		detail.ReasonCode = domain.ReasonError
		detail.Message = err.Error()
		o.Log.Error("failed to open operation",
			zap.String("signal_id", signal.ID),
			zap.String("user_id", trader.UserID),
			zap.Error(err),
		)
		if o.Metrics != nil {
			o.Metrics.RecordOperationError("open")
		}
	}
	return detail, nil
}

// openOnce runs the eligibility checks and the insert under the user's lock.
func (o *DefaultOperationOrchestrator) openOnce(ctx context.Context, signal *domain.Signal, trader domain.Trader, price decimal.Decimal) (*domain.Operation, error) {
	tx, err := o.Store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				o.Log.Error("failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	if err := tx.LockUser(ctx, trader.UserID); err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if err := o.Eligibility.Evaluate(ctx, tx, trader, signal.Symbol); err != nil {
		return nil, err
	}

	operation := o.newOperation(signal, trader.UserID, price)
	if err := tx.CreateOperation(ctx, operation); err != nil {
		return nil, fmt.Errorf("create operation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return operation, nil
}

func (o *DefaultOperationOrchestrator) newOperation(signal *domain.Signal, userID string, entry decimal.Decimal) *domain.Operation {
	takeProfit, stopLoss := Targets(signal.Direction, entry, decimal.NewFromFloat(o.Cfg.TakeProfitPct), decimal.NewFromFloat(o.Cfg.StopLossPct))
	signalID := signal.ID
	return &domain.Operation{
		ID:         uuid.New().String(),
		UserID:     userID,
		Symbol:     signal.Symbol,
		Side:       signal.Direction,
		EntryPrice: entry,
		Quantity:   decimal.NewFromFloat(o.Cfg.PositionSize).DivRound(entry, 8),
		Leverage:   o.Cfg.Leverage,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
		Status:     domain.OperationOpen,
		OpenedAt:   o.Now(),
		SignalID:   &signalID,
	}
}

// Targets returns the take-profit and stop-loss prices for a position entered at entry.
func Targets(side domain.Direction, entry, takeProfitPct, stopLossPct decimal.Decimal) (takeProfit, stopLoss decimal.Decimal) {
	tp := takeProfitPct.Div(hundred)
	sl := stopLossPct.Div(hundred)
	one := decimal.NewFromInt(1)
	if side == domain.DirectionShort {
		return entry.Mul(one.Sub(tp)).Round(8), entry.Mul(one.Add(sl)).Round(8)
	}
	return entry.Mul(one.Add(tp)).Round(8), entry.Mul(one.Sub(sl)).Round(8)
}

// CloseForSignal closes every open operation on the signal's symbol and side.
func (o *DefaultOperationOrchestrator) CloseForSignal(ctx context.Context, signal *domain.Signal, exitPrice decimal.Decimal) (*operationdto.BatchSummary, error) {
	if signal.Category != domain.CategoryClose {
		return nil, fmt.Errorf("signal %s is not a close signal", signal.ID)
	}
	if !exitPrice.IsPositive() {
		return nil, domain.ErrPriceUnavailable
	}

	operations, err := o.Operations.FindOpenOperations(ctx, domain.OperationFilter{Symbol: signal.Symbol, Side: signal.Direction})
	if err != nil {
		return nil, fmt.Errorf("find open operations: %w", err)
	}

	started := time.Now()
	details := make([]operationdto.UserDetail, len(operations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())
	for i, operation := range operations {
		g.Go(func() error {
			details[i] = o.closeOne(gctx, signal, operation, exitPrice)
			return nil
		})
	}
	_ = g.Wait()

	users := make(map[string]struct{}, len(operations))
	summary := &operationdto.BatchSummary{SignalID: signal.ID}
	for _, detail := range details {
		users[detail.UserID] = struct{}{}
		summary.Add(detail)
	}
	summary.UsersProcessed = len(users)

	if o.Metrics != nil {
		o.Metrics.RecordFanOutDuration(time.Since(started).Seconds())
	}
	o.Log.Info("close signal fan-out finished",
		zap.String("signal_id", signal.ID),
		zap.String("symbol", signal.Symbol),
		zap.String("side", string(signal.Direction)),
		zap.Int("closed", summary.OperationsClosed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)
	return summary, nil
}

func (o *DefaultOperationOrchestrator) closeOne(ctx context.Context, signal *domain.Signal, operation *domain.Operation, exitPrice decimal.Decimal) operationdto.UserDetail {
	detail := operationdto.UserDetail{UserID: operation.UserID, OperationID: operation.ID}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		_, err = o.Lifecycle.Close(ctx, &operationdto.CloseInput{
			OperationID: operation.ID,
			ExitPrice:   exitPrice,
			Reason:      domain.CloseReasonSignal,
		})
		if err == nil || errors.Is(err, domain.ErrAlreadyClosed) || errors.Is(err, domain.ErrNotFound) || ctx.Err() != nil {
			break
		}
		o.Log.Warn("close attempt failed",
			zap.String("signal_id", signal.ID),
			zap.String("operation_id", operation.ID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	switch {
	case err == nil:
		detail.Outcome = operationdto.OutcomeClosed
	case errors.Is(err, domain.ErrAlreadyClosed):
		detail.Outcome = operationdto.OutcomeSkipped
		detail.ReasonCode = domain.ReasonAlreadyClosed
		detail.Message = err.Error()
		o.Log.Info("operation already closed", zap.String("operation_id", operation.ID), zap.String("signal_id", signal.ID))
	default:
		detail.Outcome = operationdto.OutcomeError
		detail.ReasonCode = domain.ReasonError
		detail.Message = err.Error()
		o.Log.Error("failed to close operation",
			zap.String("signal_id", signal.ID),
			zap.String("operation_id", operation.ID),
			zap.Error(err),
		)
		if o.Metrics != nil {
			o.Metrics.RecordOperationError("close")
		}
	}
	return detail
}

func (o *DefaultOperationOrchestrator) workers() int {
	if o.Cfg.Workers <= 0 {
		return 1
	}
	return o.Cfg.Workers
}

func (o *DefaultOperationOrchestrator) audit(ctx context.Context, userID, outcome, message string) {
	if o.Audit == nil {
		return
	}
	if err := o.Audit.CreateAuditLog(ctx, &domain.AuditLog{
		ID:        uuid.New().String(),
		Category:  domain.AuditEligibility,
		Subject:   userID,
		Outcome:   outcome,
		Message:   message,
		CreatedAt: o.Now(),
	}); err != nil {
		o.Log.Warn("failed to write eligibility audit log", zap.Error(err))
	}
}

func isEligibility(err error) bool {
	var eligibilityErr *domain.EligibilityError
	return errors.As(err, &eligibilityErr)
}
