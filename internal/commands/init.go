package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/config"
	"github.com/aoiro-dev/aoiro/internal/logging"
	"github.com/aoiro-dev/aoiro/internal/storage"
)

func newInitCommand() *cobra.Command {
	var name string
	var proprietor string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new set of books",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), absDir, name, proprietor, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&proprietor, "proprietor", "", "proprietor name")

	return cmd
}

func runInit(ctx context.Context, dir, name, proprietor string, out, errOut io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	// Write aoiro.yaml, then reload it so env overrides and DSN resolution apply.
	cfg := config.Default(name)
	cfg.Business.Proprietor = proprietor
	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, errOut)
	if err != nil {
		return err
	}
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.DSN(), log)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	// Provision the default chart of accounts.
	n, err := accounts.NewRegistry(store, log).EnsureDefaults(ctx, cfg.User.ID)
	if err != nil {
		return fmt.Errorf("provisioning chart of accounts: %w", err)
	}

	fmt.Fprintf(out, "Initialized books at %s (user %s, %d accounts)\n", dir, cfg.User.ID, n)
	return nil
}
