package setup

import (
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-signal-service/internal/client"
	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/domain"
	providers "github.com/LavaJover/shvark-signal-service/internal/infrastructure/exchange_providers"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/sentiment"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Dependencies struct {
	Config       *config.SignalConfig
	Log          *zap.Logger
	DB           *gorm.DB
	Repositories *Repositories
	Users        domain.UserDirectory
	Prices       domain.PriceProvider
	Sentiment    domain.SentimentSource
	Publisher    domain.EventPublisher
	Subscriber   domain.SubscriberPort
	Metrics      *metrics.SignalMetrics

	closers []func() error
}

type Repositories struct {
	Store      domain.TradingStore
	Signals    domain.SignalRepository
	Sentiment  domain.SentimentRepository
	Audit      domain.AuditRepository
	Operations domain.OperationRepository
	Affiliates domain.AffiliateRepository
	Retention  domain.RetentionRepository
}

// InitializeDependencies opens storage and builds every outbound client. A nil
// registerer registers the metrics on the default prometheus registry.
func InitializeDependencies(cfg *config.SignalConfig, log *zap.Logger, reg prometheus.Registerer) (*Dependencies, error) {
	if log == nil {
		log = zap.NewNop()
	}
	deps := &Dependencies{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.NewSignalMetrics(reg),
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("repositories: %w", err)
	}

	deps.Users = client.NewHTTPUserClient(cfg.UserService.Address, cfg.UserService.Timeout)
	deps.Prices = providers.NewChainProvider(log,
		providers.NewBinanceProvider(cfg.Trading.PriceURL, cfg.Trading.PriceTimeout),
		providers.NewBybitProvider(cfg.Trading.FallbackPriceURL, cfg.Trading.PriceTimeout),
	)
	deps.Sentiment = sentiment.NewFearGreedClient(cfg.Sentiment.URL, cfg.Sentiment.Timeout)

	if cfg.KafkaService.Enabled {
		deps.initKafka()
	} else {
		log.Info("kafka disabled, events are not published")
	}
	return deps, nil
}

func (d *Dependencies) initRepositories() error {
	switch d.Config.SignalDB.Driver {
	case DriverMemory:
		store := memory.NewStore()
		d.Repositories = &Repositories{
			Store:      store,
			Signals:    store,
			Sentiment:  store,
			Audit:      store,
			Operations: store,
			Affiliates: store,
			Retention:  store,
		}
		d.Log.Warn("using in-memory storage, state is lost on restart")
		return nil
	case DriverPostgres, "":
		db := postgres.MustInitDB(d.Config.SignalDB, d.Log)
		if d.Config.SignalDB.MigrationsPath != "" {
			if err := migrate.RunMigrations(db, d.Config.SignalDB.MigrationsPath, d.Log); err != nil {
				return err
			}
		}
		d.DB = db
		d.Repositories = &Repositories{
			Store:      repository.NewDefaultTradingStore(db),
			Signals:    repository.NewDefaultSignalRepository(db),
			Sentiment:  repository.NewDefaultSentimentRepository(db),
			Audit:      repository.NewDefaultAuditRepository(db),
			Operations: repository.NewDefaultOperationRepository(db),
			Affiliates: repository.NewDefaultAffiliateRepository(db),
			Retention:  repository.NewDefaultRetentionRepository(db),
		}
		d.closers = append(d.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", d.Config.SignalDB.Driver)
	}
}

func (d *Dependencies) initKafka() {
	brokers := []string{fmt.Sprintf("%s:%s", d.Config.KafkaService.Host, d.Config.KafkaService.Port)}
	eventsPublisher := kafka.NewKafkaPublisher(brokers, d.Config.KafkaService.EventsTopic, d.Log)
	d.Publisher = kafka.NewEventPublisher(eventsPublisher)
	d.Subscriber = kafka.NewKafkaSubscriber(brokers)
	d.closers = append(d.closers, eventsPublisher.Close)
}

// Close releases the database pool and the kafka writer.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
