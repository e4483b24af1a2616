package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/closing"
	"github.com/aoiro-dev/aoiro/internal/export"
	"github.com/aoiro-dev/aoiro/internal/reports"
	"github.com/aoiro-dev/aoiro/internal/statements"
)

func newStatementsCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "statements [income|balance]",
		Short:     "Show the blue-return income statement and balance sheet",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"income", "balance"},
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			st, err := statements.NewService(a.store, a.log).Compose(ctx, a.userID, a.year)
			if err != nil {
				return err
			}
			which := ""
			if len(args) > 0 {
				which = args[0]
			}
			if which != "balance" {
				if err := printIncome(a, st.Income); err != nil {
					return err
				}
			}
			if which == "" {
				fmt.Fprintln(a.out)
			}
			if which != "income" {
				if err := printBalanceSheet(a, st.BalanceSheet); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func printIncome(a *app, income *statements.IncomeStatement) error {
	fmt.Fprintf(a.out, "損益計算書 %d年度\n", a.year)
	tw := a.table()
	for _, line := range income.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", statements.Circled(line.No), line.Label, yen(line.Amount))
	}
	return tw.Flush()
}

func printBalanceSheet(a *app, bs *statements.BalanceSheet) error {
	fmt.Fprintf(a.out, "貸借対照表 %d年度\n", a.year)
	tw := a.table()
	for _, sec := range []statements.Section{bs.Assets, bs.Liabilities, bs.Equity} {
		fmt.Fprintf(tw, "[%s]\t\t\n", sec.Type.Label())
		for _, line := range sec.Lines {
			fmt.Fprintf(tw, "\t%s\t%s\n", line.Name, yen(line.Amount))
		}
		fmt.Fprintf(tw, "\t%s合計\t%s\n", sec.Type.Label(), yen(sec.Total))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !bs.Balanced {
		fmt.Fprintf(a.out, "%s: 差額 %s\n", bs.Warning(), yen(bs.Mismatch))
	}
	return nil
}

func newCloseCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the fiscal year and carry balances into next year's opening balances",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			res, err := closing.NewCloser(a.store, a.log).CloseYear(ctx, a.userID, a.year)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%d年度を締めました。当期純利益 %s\n", res.Year, yen(res.NetIncome))
			if res.CapitalAccount == nil {
				fmt.Fprintf(a.out, "「%s」の科目がないため、当期純利益は繰り越されていません\n", closing.CapitalMarker)
			}

			names := make(map[string]string)
			accts, err := a.store.ListAccounts(ctx, a.userID)
			if err != nil {
				return err
			}
			for _, acct := range accts {
				names[acct.ID] = acct.Name
			}
			fmt.Fprintf(a.out, "%d年度 期首残高:\n", res.NextYear)
			tw := a.table()
			for _, ob := range res.OpeningBalances {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", names[ob.AccountID], yen(ob.Amount), side(ob.IsDebit))
			}
			return tw.Flush()
		}),
	}
}

func newExportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the fiscal year's statements and monthly table to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			st, err := statements.NewService(a.store, a.log).Compose(ctx, a.userID, a.year)
			if err != nil {
				return err
			}
			monthly, err := reports.NewService(a.store).Monthly(ctx, a.userID, a.year)
			if err != nil {
				return err
			}
			return writeTo(a.out, args, func(w io.Writer) error {
				return export.Write(w, st, monthly)
			})
		}),
	}
}
