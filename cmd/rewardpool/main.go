// Command rewardpool is the operator tool for the reward pool engine: it
// runs a full staking lifecycle against a local account store, inspects
// stored records, and moves state between stores via snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fgrust/reward-pool/pkg/accounts"
)

var (
	flagDataDir     string
	flagLogLevel    string
	flagMetricsAddr string

	logger *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "rewardpool",
		Short:         "Reward pool staking engine tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "persistent account store directory (in-memory if empty)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(newDemoCommand())
	root.AddCommand(newInspectCommand())
	root.AddCommand(newSnapshotCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogger() error {
	level, err := zapcore.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err = cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	return nil
}

// openStore opens the account store selected by --data-dir.
func openStore() (accounts.AccountsDB, error) {
	if flagDataDir == "" {
		logger.Debug("using in-memory account store")
		return accounts.NewMemoryDB(), nil
	}
	logger.Debug("opening persistent account store", zap.String("dir", flagDataDir))
	return accounts.NewBadgerDB(flagDataDir)
}
