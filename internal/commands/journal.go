package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/journal"
	"github.com/aoiro-dev/aoiro/internal/model"
)

func newJournalCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Record and review journal entries",
	}
	cmd.AddCommand(
		newJournalAddCommand(g),
		newJournalListCommand(g),
		newJournalShowCommand(g),
		newJournalEditCommand(g),
		newJournalDeleteCommand(g),
		newJournalImportCommand(g),
		newJournalExportCommand(g),
	)
	return cmd
}

// entryFlags are the flags describing one journal entry. Postings are given
// as repeated --debit and --credit values of the form ACCOUNT=AMOUNT.
type entryFlags struct {
	date        string
	description string
	debits      []string
	credits     []string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.description, "description", "", "description, also used as the payee")
	cmd.Flags().StringArrayVar(&f.debits, "debit", nil, "debit posting ACCOUNT=AMOUNT (repeatable)")
	cmd.Flags().StringArrayVar(&f.credits, "credit", nil, "credit posting ACCOUNT=AMOUNT (repeatable)")
}

func (f *entryFlags) draft(ctx context.Context, a *app) (journal.Draft, error) {
	var d journal.Draft
	if f.date != "" {
		date, err := model.ParseDate(f.date)
		if err != nil {
			return d, common.NewUserError(fmt.Errorf("%w: invalid date %q", common.ErrValidation, f.date), "日付は YYYY-MM-DD 形式で入力してください")
		}
		d.Date = date
	}
	d.Description = f.description

	for _, v := range f.debits {
		p, err := parsePosting(ctx, a, v, true)
		if err != nil {
			return d, err
		}
		d.Postings = append(d.Postings, p)
	}
	for _, v := range f.credits {
		p, err := parsePosting(ctx, a, v, false)
		if err != nil {
			return d, err
		}
		d.Postings = append(d.Postings, p)
	}
	return d, nil
}

func parsePosting(ctx context.Context, a *app, v string, isDebit bool) (journal.DraftPosting, error) {
	name, amountStr, ok := strings.Cut(v, "=")
	if !ok {
		return journal.DraftPosting{}, fmt.Errorf("%w: posting %q must be ACCOUNT=AMOUNT", common.ErrValidation, v)
	}
	amount, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(amountStr), ",", ""), 10, 64)
	if err != nil {
		return journal.DraftPosting{}, fmt.Errorf("%w: invalid amount in %q", common.ErrValidation, v)
	}
	acct, err := a.account(ctx, strings.TrimSpace(name))
	if err != nil {
		return journal.DraftPosting{}, err
	}
	return journal.DraftPosting{AccountID: acct.ID, Amount: amount, IsDebit: isDebit}, nil
}

func newJournalAddCommand(g *globalFlags) *cobra.Command {
	var f entryFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a balanced journal entry",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			d, err := f.draft(ctx, a)
			if err != nil {
				return err
			}
			txn, err := journal.NewService(a.store, a.log).Create(ctx, a.userID, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Recorded %s\n", txn.ID)
			return nil
		}),
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newJournalListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the fiscal year's journal entries",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			txns, err := journal.NewService(a.store, a.log).ListYear(ctx, a.userID, a.year)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "日付\tID\t摘要\t金額")
			for _, txn := range txns {
				debit, _ := txn.Totals()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", txn.Date.Format(model.DateLayout), txn.ID, txn.Description, yen(debit))
			}
			return tw.Flush()
		}),
	}
}

func newJournalShowCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one journal entry with its postings",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			txn, err := journal.NewService(a.store, a.log).Get(ctx, a.userID, args[0])
			if err != nil {
				return err
			}
			accts, err := a.store.ListAccounts(ctx, a.userID)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(accts))
			for _, acct := range accts {
				names[acct.ID] = acct.Name
			}

			fmt.Fprintf(a.out, "%s  %s\n", txn.Date.Format(model.DateLayout), txn.Description)
			if txn.IsSystem() {
				fmt.Fprintf(a.out, "generated: %s %d\n", txn.SystemKind, txn.SystemYear)
			}
			tw := a.table()
			fmt.Fprintln(tw, "科目\t借方\t貸方")
			for _, p := range txn.Postings {
				if p.IsDebit {
					fmt.Fprintf(tw, "%s\t%s\t\n", names[p.AccountID], yen(p.Amount))
				} else {
					fmt.Fprintf(tw, "%s\t\t%s\n", names[p.AccountID], yen(p.Amount))
				}
			}
			return tw.Flush()
		}),
	}
}

func newJournalEditCommand(g *globalFlags) *cobra.Command {
	var f entryFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace a journal entry's date, description and postings",
		Long:  "Replace a journal entry. Omitted --date or --description keep their current values; postings are always replaced.",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			svc := journal.NewService(a.store, a.log)
			existing, err := svc.Get(ctx, a.userID, args[0])
			if err != nil {
				return err
			}
			d, err := f.draft(ctx, a)
			if err != nil {
				return err
			}
			if d.Date.IsZero() {
				d.Date = existing.Date
			}
			if d.Description == "" {
				d.Description = existing.Description
			}
			txn, err := svc.Update(ctx, a.userID, existing.ID, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %s\n", txn.ID)
			return nil
		}),
	}
	f.register(cmd)

	return cmd
}

func newJournalDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a journal entry and its postings",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			if err := journal.NewService(a.store, a.log).Delete(ctx, a.userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s\n", args[0])
			return nil
		}),
	}
}

func newJournalImportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import journal entries from CSV (" + journal.Header + ")",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			n, err := journal.NewService(a.store, a.log).ImportCSV(ctx, a.userID, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Imported %d transactions\n", n)
			return nil
		}),
	}
}

func newJournalExportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export the fiscal year's journal as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return writeTo(a.out, args, func(w io.Writer) error {
				return journal.NewService(a.store, a.log).ExportCSV(ctx, a.userID, a.year, w)
			})
		}),
	}
}
