package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/reports"
)

func newReportsCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Supporting tables for the blue-return filing",
	}
	cmd.AddCommand(
		newReportsMonthlyCommand(g),
		newReportsPayeesCommand(g),
		newReportsSummaryCommand(g),
	)
	return cmd
}

func newReportsMonthlyCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly",
		Short: "Revenue and expense by month",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			m, err := reports.NewService(a.store).Monthly(ctx, a.userID, a.year)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "月\t売上(収入)金額\t経費\t差引")
			for _, row := range m.Months {
				fmt.Fprintf(tw, "%d月\t%s\t%s\t%s\n", row.Month, yen(row.Revenue), yen(row.Expense), yen(row.Profit()))
			}
			fmt.Fprintf(tw, "合計\t%s\t%s\t%s\n", yen(m.Revenue), yen(m.Expense), yen(m.Profit()))
			return tw.Flush()
		}),
	}
}

func newReportsPayeesCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "payees",
		Short: "Yearly payments by payee for wage, rent, outsourcing and repair accounts",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			breakdowns, err := reports.NewService(a.store).Payees(ctx, a.userID, a.year)
			if err != nil {
				return err
			}
			tw := a.table()
			for _, b := range breakdowns {
				fmt.Fprintf(tw, "[%s]\t%s\n", b.Account, yen(b.Total))
				if len(b.Payees) == 0 {
					fmt.Fprintln(tw, "\t対象となる取引データがありません")
					continue
				}
				for _, p := range b.Payees {
					fmt.Fprintf(tw, "\t%s\t%s\n", p.Name, yen(p.Amount))
				}
			}
			return tw.Flush()
		}),
	}
}

func newReportsSummaryCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Ending balances by account type and net income",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			s, err := reports.NewService(a.store).Summary(ctx, a.userID, a.year)
			if err != nil {
				return err
			}
			tw := a.table()
			for _, t := range model.AccountTypes {
				fmt.Fprintf(tw, "%s\t%s\n", t.Label(), yen(s.Totals[t]))
			}
			fmt.Fprintf(tw, "当期純利益\t%s\n", yen(s.NetIncome))
			return tw.Flush()
		}),
	}
}
