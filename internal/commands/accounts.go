package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/model"
)

func newAccountsCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the chart of accounts",
	}
	cmd.AddCommand(
		newAccountsListCommand(g),
		newAccountsAddCommand(g),
		newAccountsImportCommand(g),
		newAccountsExportCommand(g),
	)
	return cmd
}

func newAccountsListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts by type and name",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			accts, err := accounts.NewRegistry(a.store, a.log).ListByType(ctx, a.userID)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "区分\t科目\t説明")
			for _, acct := range accts {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", acct.Type.Label(), acct.Name, acct.Description)
			}
			return tw.Flush()
		}),
	}
}

func newAccountsAddCommand(g *globalFlags) *cobra.Command {
	var typ string
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register an account",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			t, err := model.ParseAccountType(typ)
			if err != nil {
				return err
			}
			acct, err := accounts.NewRegistry(a.store, a.log).Register(ctx, a.userID, args[0], t, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s (%s)\n", acct.Name, acct.Type.Label())
			return nil
		}),
	}

	cmd.Flags().StringVar(&typ, "type", "", "ASSET, LIABILITY, EQUITY, REVENUE or EXPENSE (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&description, "description", "", "account description")

	return cmd
}

func newAccountsImportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import accounts from CSV (name,type,description)",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := accounts.NewRegistry(a.store, a.log).ImportCSV(ctx, a.userID, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d accounts\n", n)
			return nil
		}),
	}
}

func newAccountsExportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export accounts as CSV to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return writeTo(a.out, args, func(w io.Writer) error {
				return accounts.NewRegistry(a.store, a.log).ExportCSV(ctx, a.userID, w)
			})
		}),
	}
}

// writeTo runs write against the file named by args[0], or out when args is
// empty.
func writeTo(out io.Writer, args []string, write func(io.Writer) error) error {
	if len(args) == 0 {
		return write(out)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("creating %s: %w", args[0], err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", args[0], err)
	}
	fmt.Fprintf(out, "Wrote %s\n", args[0])
	return nil
}
