package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-signal-service/internal/usecase"
	operationdto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/operation"
	signaldto "github.com/LavaJover/shvark-signal-service/internal/usecase/dto/signal"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/operation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SignalUsecase interface {
	ProcessSignal(ctx context.Context, input *signaldto.ProcessSignalInput) (*signaldto.ProcessSignalOutput, error)
}

type DefaultSignalUsecase struct {
	Signals      domain.SignalRepository
	Validator    SignalValidator
	Gate         usecase.SentimentGate
	Orchestrator operation.OperationOrchestrator
	Prices       domain.PriceProvider
	Audit        domain.AuditRepository
	Publisher    domain.EventPublisher
	Metrics      *metrics.SignalMetrics
	Log          *zap.Logger
	Now          func() time.Time
	// Timeout bounds one signal's processing once it is detached from the
	// caller. Zero means no bound.
	Timeout time.Duration
}

func NewDefaultSignalUsecase(
	signals domain.SignalRepository,
	validator SignalValidator,
	gate usecase.SentimentGate,
	orchestrator operation.OperationOrchestrator,
	prices domain.PriceProvider,
	audit domain.AuditRepository,
	publisher domain.EventPublisher,
	m *metrics.SignalMetrics,
	log *zap.Logger,
) *DefaultSignalUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultSignalUsecase{
		Signals:      signals,
		Validator:    validator,
		Gate:         gate,
		Orchestrator: orchestrator,
		Prices:       prices,
		Audit:        audit,
		Publisher:    publisher,
		Metrics:      m,
		Log:          log,
		Now:          time.Now,
	}
}

// ProcessSignal persists the signal, then validates, gates and fans it out.
// The returned error is reserved for infrastructure failures; rejections are
// reported through the output status.
func (uc *DefaultSignalUsecase) ProcessSignal(ctx context.Context, input *signaldto.ProcessSignalInput) (*signaldto.ProcessSignalOutput, error) {
	// A persisted signal must reach a terminal status even if the request
	// or consumer is cancelled mid fan-out.
	ctx = context.WithoutCancel(ctx)
	if uc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.Timeout)
		defer cancel()
	}
	now := uc.Now()
	signal, validationErr := uc.Validator.Validate(input, now)

	if err := uc.Signals.CreateSignal(ctx, signal); err != nil {
		uc.Log.Error("failed to persist signal", zap.String("keyword", signal.Keyword), zap.Error(err))
		return &signaldto.ProcessSignalOutput{Status: signaldto.StatusError, Detail: "failed to persist signal"}, fmt.Errorf("create signal: %w", err)
	}
	if uc.Metrics != nil {
		uc.Metrics.RecordSignalReceived(string(signal.Category), signal.Source)
	}
	uc.Log.Info("signal received",
		zap.String("signal_id", signal.ID),
		zap.String("keyword", signal.Keyword),
		zap.String("symbol", signal.Symbol),
		zap.String("source", signal.Source),
	)

	var output *signaldto.ProcessSignalOutput
	switch {
	case errors.Is(validationErr, domain.ErrExpired):
		output = uc.finish(ctx, signal, domain.SignalExpired, signaldto.StatusExpired, validationErr.Error(), nil)
	case validationErr != nil:
		uc.audit(ctx, signal.ID, "invalid", validationErr.Error())
		output = uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusRejected, "rejected: "+validationErr.Error(), nil)
	case signal.Category == domain.CategoryConfirm:
		uc.audit(ctx, signal.ID, "confirmed", fmt.Sprintf("keyword=%s symbol=%s", signal.Keyword, signal.Symbol))
		output = uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusProcessed, "confirmation recorded", nil)
	case signal.Category == domain.CategoryOpen:
		output = uc.processOpen(ctx, signal)
	default:
		output = uc.processClose(ctx, signal)
	}
	return output, nil
}

func (uc *DefaultSignalUsecase) processOpen(ctx context.Context, signal *domain.Signal) *signaldto.ProcessSignalOutput {
	decision := uc.Gate.CheckDirection(ctx, signal.Direction)
	if !decision.Allowed {
		detail := fmt.Sprintf("rejected: %s: %s with sentiment %d (%s)",
			domain.ErrDirectionBlocked, signal.Direction, decision.Reading.Value, decision.Reading.Classification)
		return uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusRejected, detail, nil)
	}

	price, err := uc.resolvePrice(ctx, signal)
	if err != nil {
		return uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusError, "error: "+err.Error(), nil)
	}

	summary, err := uc.Orchestrator.OpenForSignal(ctx, &operationdto.OpenInput{Signal: signal, Price: price})
	if err != nil {
		uc.Log.Error("open fan-out failed", zap.String("signal_id", signal.ID), zap.Error(err))
		return uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusError, "error: "+err.Error(), nil)
	}
	detail := fmt.Sprintf("users=%d opened=%d skipped=%d errors=%d",
		summary.UsersProcessed, summary.OperationsOpened, summary.Skipped, summary.Errors)
	return uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusProcessed, detail, summary)
}

func (uc *DefaultSignalUsecase) processClose(ctx context.Context, signal *domain.Signal) *signaldto.ProcessSignalOutput {
	price, err := uc.resolvePrice(ctx, signal)
	if err != nil {
		return uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusError, "error: "+err.Error(), nil)
	}

	summary, err := uc.Orchestrator.CloseForSignal(ctx, signal, price)
	if err != nil {
		uc.Log.Error("close fan-out failed", zap.String("signal_id", signal.ID), zap.Error(err))
		return uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusError, "error: "+err.Error(), nil)
	}
	detail := fmt.Sprintf("users=%d closed=%d skipped=%d errors=%d",
		summary.UsersProcessed, summary.OperationsClosed, summary.Skipped, summary.Errors)
	return uc.finish(ctx, signal, domain.SignalProcessed, signaldto.StatusProcessed, detail, summary)
}

func (uc *DefaultSignalUsecase) resolvePrice(ctx context.Context, signal *domain.Signal) (decimal.Decimal, error) {
	if signal.Price != nil {
		return *signal.Price, nil
	}
	if uc.Prices == nil {
		return decimal.Zero, domain.ErrPriceUnavailable
	}
	price, err := uc.Prices.GetPrice(ctx, signal.Symbol)
	if err != nil {
		uc.Log.Warn("failed to resolve signal price", zap.String("signal_id", signal.ID), zap.String("symbol", signal.Symbol), zap.Error(err))
		return decimal.Zero, err
	}
	return price, nil
}

// finish stores the terminal status of the signal and builds the response.
func (uc *DefaultSignalUsecase) finish(
	ctx context.Context,
	signal *domain.Signal,
	status domain.SignalStatus,
	outcome signaldto.Status,
	detail string,
	summary *operationdto.BatchSummary,
) *signaldto.ProcessSignalOutput {
	updated, err := uc.Signals.FinalizeSignal(ctx, signal.ID, status, detail)
	switch {
	case err != nil:
		uc.Log.Error("failed to finalize signal", zap.String("signal_id", signal.ID), zap.Error(err))
	case !updated:
		uc.Log.Warn("signal was finalized concurrently", zap.String("signal_id", signal.ID), zap.String("status", string(status)))
	default:
		signal.Status = status
		signal.ProcessingResult = detail
	}

	if uc.Metrics != nil {
		uc.Metrics.RecordSignalOutcome(string(outcome))
	}
	uc.Log.Info("signal processed",
		zap.String("signal_id", signal.ID),
		zap.String("status", string(outcome)),
		zap.String("detail", detail),
	)

	if uc.Publisher != nil {
		go func(event domain.SignalEvent) {
			if err := uc.Publisher.PublishSignal(context.Background(), event); err != nil {
				uc.Log.Error("failed to publish signal event", zap.String("signal_id", event.SignalID), zap.Error(err))
			}
		}(domain.SignalEvent{
			Type:             domain.EventSignalProcessed,
			SignalID:         signal.ID,
			Keyword:          signal.Keyword,
			Symbol:           signal.Symbol,
			Status:           string(outcome),
			ProcessingResult: detail,
			OccurredAt:       uc.Now(),
		})
	}

	return &signaldto.ProcessSignalOutput{
		Success:  outcome == signaldto.StatusProcessed,
		Status:   outcome,
		Detail:   detail,
		SignalID: signal.ID,
		Summary:  summary,
	}
}

func (uc *DefaultSignalUsecase) audit(ctx context.Context, signalID, outcome, message string) {
	if uc.Audit == nil {
		return
	}
	if err := uc.Audit.CreateAuditLog(ctx, &domain.AuditLog{
		ID:        uuid.New().String(),
		Category:  domain.AuditSignal,
		Subject:   signalID,
		Outcome:   outcome,
		Message:   message,
		CreatedAt: uc.Now(),
	}); err != nil {
		uc.Log.Warn("failed to write signal audit log", zap.Error(err))
	}
}
