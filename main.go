package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/melkeydev/datadesk/config"
	"github.com/melkeydev/datadesk/dashboard"
	"github.com/melkeydev/datadesk/databases"
	"github.com/melkeydev/datadesk/records"
	"github.com/melkeydev/datadesk/telemetry"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "datadesk",
	Short: "datadesk loads spreadsheets into a relational database and serves numeric records",
	Long: `datadesk turns .csv and .xlsx files into database tables, inferring column
types and foreign keys, and serves a small record API with max/min/avg stats.

Examples:
  datadesk serve
  datadesk upload ventas ventas.xlsx
  datadesk dashboard`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd, mcpCmd, dashboardCmd, uploadCmd, dropCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		telemetry.Flush()
		os.Exit(1)
	}
	telemetry.Flush()
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     databases.Database
	svc    *dashboard.Service
}

// setup loads the configuration and connects to the store. The record table
// is created when missing.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := telemetry.NewLogger(os.Stderr, cfg.Log)

	if err := telemetry.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment); err != nil {
		logger.Warn("sentry disabled", "error", err)
	}

	connStr, err := cfg.Database.GetConnectionString()
	if err != nil {
		return nil, fmt.Errorf("connection string error: %w", err)
	}

	db, err := databases.NewConnector(cfg.Database.DBType, connStr, cfg.Database.PoolOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	rec, err := records.NewService(db, cfg.Records.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := rec.EnsureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("connected", "type", cfg.Database.DBType, "records_table", rec.Table())

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     db,
		svc:    dashboard.NewService(db, rec, nil, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}
