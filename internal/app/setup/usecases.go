package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-signal-service/internal/usecase"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/affiliate"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/operation"
	"github.com/LavaJover/shvark-signal-service/internal/usecase/signal"
)

type UseCases struct {
	Gate         *usecase.DefaultSentimentGate
	Eligibility  *usecase.DefaultEligibilityChecker
	Sweeper      *usecase.DefaultRetentionSweeper
	Affiliate    *affiliate.DefaultAffiliateUsecase
	Lifecycle    *operation.DefaultOperationLifecycle
	Orchestrator *operation.DefaultOperationOrchestrator
	Monitor      *operation.PositionMonitor
	Signal       *signal.DefaultSignalUsecase
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config
	repos := deps.Repositories

	gate := usecase.NewDefaultSentimentGate(deps.Sentiment, repos.Sentiment, repos.Audit, deps.Metrics, deps.Log.Named("sentiment"), cfg.Sentiment)
	eligibility := usecase.NewDefaultEligibilityChecker(repos.Store, cfg.Trading)
	sweeper := usecase.NewDefaultRetentionSweeper(repos.Signals, repos.Affiliates, repos.Retention, deps.Metrics, deps.Log.Named("retention"), cfg.Retention, cfg.Signals.FreshnessWindow)

	affiliateUsecase, err := affiliate.NewDefaultAffiliateUsecase(repos.Store, repos.Affiliates, deps.Users, repos.Audit, deps.Metrics, deps.Log.Named("affiliate"), cfg.Affiliate)
	if err != nil {
		return nil, fmt.Errorf("affiliate usecase: %w", err)
	}
	settler := affiliate.NewDefaultCommissionSettler(cfg.Affiliate.DefaultRate)

	lifecycle := operation.NewDefaultOperationLifecycle(repos.Store, repos.Operations, settler, deps.Publisher, deps.Metrics, deps.Log.Named("lifecycle"))
	orchestrator := operation.NewDefaultOperationOrchestrator(
		repos.Store,
		repos.Operations,
		deps.Users,
		eligibility,
		lifecycle,
		repos.Audit,
		deps.Publisher,
		deps.Metrics,
		deps.Log.Named("orchestrator"),
		cfg.Trading,
	)
	monitor := operation.NewPositionMonitor(repos.Operations, deps.Prices, lifecycle, deps.Log.Named("monitor"))

	signalUsecase := signal.NewDefaultSignalUsecase(
		repos.Signals,
		signal.NewDefaultSignalValidator(cfg.Signals),
		gate,
		orchestrator,
		deps.Prices,
		repos.Audit,
		deps.Publisher,
		deps.Metrics,
		deps.Log.Named("signal"),
	)
	signalUsecase.Timeout = cfg.Signals.ProcessingTimeout

	return &UseCases{
		Gate:         gate,
		Eligibility:  eligibility,
		Sweeper:      sweeper,
		Affiliate:    affiliateUsecase,
		Lifecycle:    lifecycle,
		Orchestrator: orchestrator,
		Monitor:      monitor,
		Signal:       signalUsecase,
	}, nil
}
