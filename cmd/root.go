package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vetclinic-backend/config"
	"vetclinic-backend/database"
	"vetclinic-backend/logger"
)

var rootCmd = &cobra.Command{
	Use:           "vetclinic",
	Short:         "Veterinary practice billing and audit backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and opens the logger and database shared by
// every subcommand.
func bootstrap() (config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, nil, err
	}

	log, err := logger.New(logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		_ = log.Sync()
		return cfg, nil, nil, err
	}
	return cfg, log, db, nil
}

func shutdown(log *zap.Logger, db *gorm.DB) {
	if err := database.Close(db); err != nil {
		log.Warn("closing database", zap.Error(err))
	}
	_ = log.Sync()
}
