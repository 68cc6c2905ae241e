package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/bank"
	"github.com/simonvc/tellerledger/internal/config"
	"github.com/simonvc/tellerledger/internal/seed"
	"github.com/simonvc/tellerledger/internal/sqlstore"
	"github.com/simonvc/tellerledger/internal/store"
)

var (
	flagConfig   string
	flagDataDir  string
	flagBackend  string
	flagLogLevel string
)

// Set up by the root command before any subcommand runs.
var (
	cfg     *config.Config
	logger  *slog.Logger
	backend bank.Store
	svc     *bank.Service
)

var rootCmd = &cobra.Command{
	Use:   "tellerledger",
	Short: "Bank ledger for customers, accounts and transactions",
	Long: "A bank ledger for individual and company customers holding savings, investment and " +
		"checking accounts, persisted to flat files or SQLite.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagDataDir != "" {
			cfg.DataDir = flagDataDir
		}
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}

		logger = config.NewLogger(cfg, os.Stderr)
		switch cfg.Backend {
		case config.BackendSQLite:
			backend, err = sqlstore.Open(cfg.DBPath, sqlstore.WithLogger(logger))
		default:
			backend, err = store.Open(cfg.DataDir, store.WithLogger(logger))
		}
		if err != nil {
			return fmt.Errorf("open %s store: %w", cfg.Backend, err)
		}
		svc = bank.New(backend, logger, bank.WithBcryptCost(cfg.BcryptCost))

		if cfg.SeedOnStart {
			if _, err := seed.New(svc, logger).Run(cmd.Context()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory holding the ledger tables (default data)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: file or sqlite (default file)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// Execute runs the command line and closes the store whether or not the
// command failed.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeBackend(); err == nil {
		err = cerr
	}
	return err
}

func closeBackend() error {
	if backend == nil {
		return nil
	}
	err := backend.Close()
	backend = nil
	return err
}
