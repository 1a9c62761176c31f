package postgres

import (
	"fmt"

	"github.com/LavaJover/shvark-signal-service/internal/config"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// AllModels lists every table owned by the service.
func AllModels() []interface{} {
	return []interface{}{
		&models.SignalModel{},
		&models.SentimentReadingModel{},
		&models.OperationModel{},
		&models.AffiliateModel{},
		&models.AffiliateLinkModel{},
		&models.CommissionModel{},
		&models.AuditLogModel{},
	}
}

func InitDB(cfg config.SignalDB) (*gorm.DB, error) {
	if cfg.Dsn == "" {
		return nil, fmt.Errorf("signal db dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(cfg.Dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	return db, nil
}

// MustInitDB opens the database and brings the schema up to date. Without a
// migrations path the schema is created from the gorm models.
func MustInitDB(cfg config.SignalDB, log *zap.Logger) *gorm.DB {
	db, err := InitDB(cfg)
	if err != nil {
		log.Fatal("failed to init db", zap.Error(err))
	}
	if cfg.MigrationsPath == "" {
		if err := db.AutoMigrate(AllModels()...); err != nil {
			log.Fatal("failed to auto migrate", zap.Error(err))
		}
	}
	return db
}
