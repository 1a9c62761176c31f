package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type SignalConfig struct {
	Env            string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer     `yaml:"http_server"`
	SignalDB       `yaml:"signal_db"`
	LogConfig      `yaml:"log_config"`
	KafkaService   `yaml:"kafka_service"`
	UserService    `yaml:"user_service"`
	Sentiment      `yaml:"sentiment"`
	Signals        `yaml:"signals"`
	Trading        `yaml:"trading"`
	Affiliate      `yaml:"affiliate"`
	Retention      `yaml:"retention"`
}

type HTTPServer struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type SignalDB struct {
	Driver         string `yaml:"driver" env:"SIGNAL_DB_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"SIGNAL_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"SIGNAL_DB_MIGRATIONS" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Enabled      bool   `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Host         string `yaml:"host" env:"KAFKA_HOST" env-default:"localhost"`
	Port         string `yaml:"port" env:"KAFKA_PORT" env-default:"9092"`
	SignalsTopic string `yaml:"signals_topic" env-default:"trading-signals"`
	EventsTopic  string `yaml:"events_topic" env-default:"trading-events"`
	GroupID      string `yaml:"group_id" env-default:"signal-service"`
}

type UserService struct {
	Address string        `yaml:"address" env:"USER_SERVICE_ADDRESS" env-default:"http://localhost:8081"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type Sentiment struct {
	URL             string        `yaml:"url" env:"SENTIMENT_URL" env-default:"https://api.alternative.me/fng/?limit=1"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"30m"`
	Timeout         time.Duration `yaml:"timeout" env-default:"10s"`
	// LongBelow and ShortAbove are the boundaries of the neutral zone.
	LongBelow  int `yaml:"long_below" env-default:"30"`
	ShortAbove int `yaml:"short_above" env-default:"80"`
	// LegacyShortAbove is the second SHORT threshold still used by older tooling.
	// Only used to flag readings where the two thresholds disagree.
	LegacyShortAbove int `yaml:"legacy_short_above" env-default:"70"`
}

type Signals struct {
	FreshnessWindow     time.Duration `yaml:"freshness_window" env-default:"2m"`
	FutureSkew          time.Duration `yaml:"future_skew" env-default:"30s"`
	ExpirySweepInterval time.Duration `yaml:"expiry_sweep_interval" env-default:"30s"`
	ProcessingTimeout   time.Duration `yaml:"processing_timeout" env-default:"60s"`
}

type Trading struct {
	MaxOpenOperations int           `yaml:"max_open_operations" env-default:"2"`
	SymbolCooldown    time.Duration `yaml:"symbol_cooldown" env-default:"2h"`
	MinTradeSize      float64       `yaml:"min_trade_size" env-default:"10"`
	PositionSize      float64       `yaml:"position_size" env-default:"10"`
	Leverage          int32         `yaml:"leverage" env-default:"5"`
	TakeProfitPct     float64       `yaml:"take_profit_pct" env-default:"2"`
	StopLossPct       float64       `yaml:"stop_loss_pct" env-default:"1"`
	Workers           int           `yaml:"workers" env-default:"8"`
	MonitorInterval   time.Duration `yaml:"monitor_interval" env-default:"15s"`
	PriceURL          string        `yaml:"price_url" env-default:"https://api.binance.com/api/v3/ticker/price"`
	FallbackPriceURL  string        `yaml:"fallback_price_url" env-default:"https://api.bybit.com/v5/market/tickers"`
	PriceTimeout      time.Duration `yaml:"price_timeout" env-default:"5s"`
}

type Affiliate struct {
	DefaultRate    float64       `yaml:"default_rate" env-default:"0.015"`
	LinkingWindow  time.Duration `yaml:"linking_window" env-default:"48h"`
	ApprovalWindow time.Duration `yaml:"approval_window" env-default:"168h"`
}

type Retention struct {
	CleanupInterval     time.Duration `yaml:"cleanup_interval" env-default:"2h"`
	CriticalCron        string        `yaml:"critical_cron" env-default:"0 30 3 * * *"`
	Signals             time.Duration `yaml:"signals" env-default:"24h"`
	AuditLogs           time.Duration `yaml:"audit_logs" env-default:"72h"`
	SentimentReadings   time.Duration `yaml:"sentiment_readings" env-default:"168h"`
	ClosedOperations    time.Duration `yaml:"closed_operations" env-default:"168h"`
	CommissionReference time.Duration `yaml:"commission_reference" env-default:"720h"`
	CriticalOperations  time.Duration `yaml:"critical_operations" env-default:"720h"`
	CriticalCommissions time.Duration `yaml:"critical_commissions" env-default:"720h"`
	CriticalLinks       time.Duration `yaml:"critical_links" env-default:"360h"`
}

func MustLoad() *SignalConfig {

	// Processing env config variable and file
	configPath := os.Getenv("SIGNAL_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("SIGNAL_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg SignalConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}

// Default returns a config populated from env-default tags only.
func Default() (*SignalConfig, error) {
	var cfg SignalConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
