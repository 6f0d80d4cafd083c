package main

import (
	"context"
	"fmt"
	"os"

	"dropskills/internal/config"
	"dropskills/internal/logger"
	"dropskills/internal/model"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "dropctl",
	Short: "DropSkills maintenance commands",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (e.g. etc/config-dev.yaml)")
	rootCmd.AddCommand(migrateCmd(), seedCmd(), createAdminCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB loads the config and connects, migrating the schema first.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg := config.Load(configFile)
	logger.Init(config.LogConfig{Level: cfg.Log.Level, Console: true})
	db, err := cfg.OpenGormDB()
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return cfg, db, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := openDB(); err != nil {
				return err
			}
			logger.Info("migrate.done", "tables", len(model.All()))
			return nil
		},
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
