package cmd

import (
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/alpha-arena/tracker/configs"
	"github.com/alpha-arena/tracker/internal/logging"
	"github.com/alpha-arena/tracker/internal/migrations"
	"github.com/alpha-arena/tracker/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configs.AppLoad()
		logger := logging.NewLogger(cfg.LogLevel)

		db, err := storage.Open(cfg.Database)
		if err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			logger.Errorf("Goose: failed to set dialect: %v", err)
			return err
		}

		logger.Info("Running database migrations...")
		if err := goose.Up(sqlDB, "."); err != nil {
			logger.Errorf("Goose migration failed: %v", err)
			return err
		}
		logger.Info("Migrations completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
