package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fgrust/reward-pool/pkg/accounts"
)

func newSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export or import the account store as a compressed snapshot",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write every stored account to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := accounts.ExportSnapshotFile(store, args[0]); err != nil {
				return err
			}
			logger.Info("snapshot exported",
				zap.String("file", args[0]),
				zap.Uint64("accounts", store.GetAccountsCount()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Load accounts from a snapshot file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			imported, err := accounts.ImportSnapshotFile(store, args[0])
			if err != nil {
				return fmt.Errorf("imported %d accounts before failure: %w", imported, err)
			}
			logger.Info("snapshot imported",
				zap.String("file", args[0]),
				zap.Uint64("accounts", imported))
			return nil
		},
	})

	return cmd
}
