package cmd

import (
	"fmt"
	"os"

	"remold-service/internal/config"
	"remold-service/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "remold-service",
	Short: "Backend de gestión de producción de neumáticos remoldados",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones pendientes y termina",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("error cargando configuración: %w", err)
		}

		logger, err := newLogger(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("error creando logger: %w", err)
		}
		defer logger.Sync()

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Database.MigrationsDir
		}

		if err := database.RunMigrations(cfg.Database.URL, dir, logger); err != nil {
			return fmt.Errorf("error ejecutando migraciones: %w", err)
		}

		logger.Info("Migraciones aplicadas")
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("dir", "", "Directorio con los archivos de migración")
	rootCmd.AddCommand(migrateCmd)
}

// newLogger construye el logger zap según el nivel configurado
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
