package main

import (
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"projectly/internal/config"
	"projectly/internal/logger"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "projectlyctl",
	Short:         "Administrative commands for the projectly server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (e.g. etc/config-dev.yaml)")
	rootCmd.AddCommand(migrateCmd(), createSuperuserCmd())
	if err := rootCmd.Execute(); err != nil {
		logger.Error("projectlyctl failed", "err", err)
		os.Exit(1)
	}
}

// openDB loads config, sets up logging and connects to the database.
func openDB() (*gorm.DB, error) {
	cfg := config.Load(configFile)
	logger.Init(cfg.Log)
	return cfg.OpenGormDB()
}
