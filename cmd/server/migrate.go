package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the run history tables and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadBase()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, _, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		logger.Info("Migrations applied", zap.String("driver", cfg.DBDriver))
		return nil
	},
}
