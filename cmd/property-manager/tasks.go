package main

import (
	"errors"
	"fmt"

	"github.com/gtemgoua/property-manager-app/internal/di"
	"github.com/gtemgoua/property-manager-app/pkg/database"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.InMemory {
				return errors.New("migrate needs PostgreSQL, DATABASE_IN_MEMORY is set")
			}

			db, err := di.Connect(cmd.Context(), &cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.Migrate(cmd.Context(), db.Pool())
			if err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("migrations applied", zap.Int("count", applied))
			return nil
		},
	}
}

func newScanAlertsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan-alerts",
		Short: "Raise alerts for overdue payments once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			container, err := di.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to build container: %w", err)
			}
			defer container.Close(cmd.Context())

			raised, err := container.AlertService.GenerateAlerts(cmd.Context())
			if err != nil {
				return fmt.Errorf("alert scan failed: %w", err)
			}
			logger.Info("alert scan finished", zap.Int("alerts_raised", raised))
			return nil
		},
	}
}
