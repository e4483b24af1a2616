package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/journal"
	"github.com/aoiro-dev/aoiro/internal/model"
)

func newLedgerCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <account>",
		Short: "Show an account's ledger with running balance",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			acct, err := a.account(ctx, args[0])
			if err != nil {
				return err
			}
			_, rows, err := journal.NewService(a.store, a.log).Ledger(ctx, a.userID, acct.ID, a.year)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s (%s) %d年度\n", acct.Name, acct.Type.Label(), a.year)
			tw := a.table()
			fmt.Fprintln(tw, "日付\t摘要\t借方\t貸方\t残高")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.Date.Format(model.DateLayout), r.Description, blankZero(r.Debit), blankZero(r.Credit), yen(r.Balance))
			}
			return tw.Flush()
		}),
	}
}

func blankZero(n int64) string {
	if n == 0 {
		return ""
	}
	return yen(n)
}

func newOpeningCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "opening",
		Short: "Manage opening balances",
	}
	cmd.AddCommand(newOpeningSetCommand(g), newOpeningListCommand(g))
	return cmd
}

func newOpeningSetCommand(g *globalFlags) *cobra.Command {
	var sideFlag string

	cmd := &cobra.Command{
		Use:   "set <account> <amount>",
		Short: "Set an account's opening balance for the fiscal year",
		Args:  cobra.ExactArgs(2),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			acct, err := a.account(ctx, args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(strings.ReplaceAll(args[1], ",", ""), 10, 64)
			if err != nil {
				return fmt.Errorf("%w: invalid amount %q", common.ErrValidation, args[1])
			}

			isDebit, err := acct.Type.NormalBalanceIsDebit()
			if err != nil {
				return err
			}
			switch strings.ToLower(sideFlag) {
			case "":
			case "debit":
				isDebit = true
			case "credit":
				isDebit = false
			default:
				return fmt.Errorf("%w: --side must be debit or credit", common.ErrValidation)
			}

			ob, err := journal.NewService(a.store, a.log).SetOpeningBalance(ctx, a.userID, acct.ID, a.year, amount, isDebit)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%d年度 %s 期首残高 %s (%s)\n", ob.Year, acct.Name, yen(ob.Amount), side(ob.IsDebit))
			return nil
		}),
	}
	cmd.Flags().StringVar(&sideFlag, "side", "", "debit or credit (defaults to the account's normal side)")

	return cmd
}

func newOpeningListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the fiscal year's opening balances",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			obs, err := journal.NewService(a.store, a.log).OpeningBalances(ctx, a.userID, a.year)
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

			tw := a.table()
			fmt.Fprintln(tw, "科目\t金額\t貸借")
			for _, ob := range obs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", names[ob.AccountID], yen(ob.Amount), side(ob.IsDebit))
			}
			return tw.Flush()
		}),
	}
}
