package common

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/storedesk/storedesk/internal/infrastructure/config"
	"github.com/storedesk/storedesk/internal/infrastructure/database"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// Env is what every subcommand needs before doing work.
type Env struct {
	Config *config.Config
	Log    logger.Interface
	DB     *gorm.DB
}

// Close releases the database handle.
func (e *Env) Close() {
	if e.DB != nil {
		_ = database.Close(e.DB, e.Log)
	}
}

// Init loads configuration for env, initialises the process logger and
// opens the remote store. The ENV variable overrides env.
func Init(env string) (*Env, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}
	mode := MapEnvToGinMode(env)

	cfg, err := config.Load(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, mode); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Env{Config: cfg, Log: log, DB: db}, nil
}

func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
