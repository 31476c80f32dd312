package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/repositories"
)

func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))

	// Auto migrate
	if err := db.AutoMigrate(
		&models.Candidate{},
		&models.DocumentRequest{},
		&models.Document{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database migration completed")

	return db, nil
}

// InitRepository opens the candidate repository for the configured driver.
func InitRepository(cfg *Config, log *zap.Logger) (repositories.CandidateRepository, error) {
	switch cfg.Database.Driver {
	case DriverMemory:
		log.Warn("using in-memory candidate store, data is lost on restart")
		return repositories.NewMemoryCandidateRepository(), nil
	case DriverPostgres, "":
		db, err := InitDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		return repositories.NewCandidateRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
