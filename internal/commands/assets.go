package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/depreciation"
	"github.com/aoiro-dev/aoiro/internal/model"
)

func newAssetsCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage fixed assets",
	}
	cmd.AddCommand(newAssetsAddCommand(g), newAssetsListCommand(g))
	return cmd
}

func newAssetsAddCommand(g *globalFlags) *cobra.Command {
	var acquired string
	var cost int64
	var life int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a straight-line fixed asset",
		Args:  cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			date, err := model.ParseDate(acquired)
			if err != nil {
				return common.NewUserError(fmt.Errorf("%w: invalid date %q", common.ErrValidation, acquired), "取得日は YYYY-MM-DD 形式で入力してください")
			}
			asset, err := depreciation.NewScheduler(a.store, a.log).RegisterAsset(ctx, a.userID, args[0], date, cost, life)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s (annual charge %s)\n", asset.Name, yen(depreciation.AnnualCharge(*asset)))
			return nil
		}),
	}

	cmd.Flags().StringVar(&acquired, "acquired", "", "acquisition date YYYY-MM-DD (required)")
	cmd.Flags().Int64Var(&cost, "cost", 0, "acquisition cost in yen (required)")
	cmd.Flags().IntVar(&life, "life", 0, "useful life in years (required)")
	_ = cmd.MarkFlagRequired("acquired")
	_ = cmd.MarkFlagRequired("cost")
	_ = cmd.MarkFlagRequired("life")

	return cmd
}

func newAssetsListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fixed assets",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			assets, err := depreciation.NewScheduler(a.store, a.log).Assets(ctx, a.userID)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "資産\t取得日\t取得価額\t耐用年数\t年間償却額")
			for _, asset := range assets {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					asset.Name, asset.AcquisitionDate.Format(model.DateLayout), yen(asset.AcquisitionCost),
					asset.UsefulLife, yen(depreciation.AnnualCharge(asset)))
			}
			return tw.Flush()
		}),
	}
}

func newDepreciateCommand(g *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "depreciate",
		Short: "Post the fiscal year's straight-line depreciation",
		Args:  cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, _ []string) error {
			s := depreciation.NewScheduler(a.store, a.log)

			var plan depreciation.Plan
			message := ""
			if dryRun {
				p, err := s.Preview(ctx, a.userID, a.year)
				if err != nil {
					return err
				}
				plan = p
			} else {
				res, err := s.Run(ctx, a.userID, a.year)
				if err != nil {
					return err
				}
				plan, message = res.Plan, res.Message
			}

			tw := a.table()
			fmt.Fprintln(tw, "資産\t償却額\t備考")
			for _, e := range plan.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.AssetName, yen(e.Amount), e.Reason)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			switch {
			case message != "":
				fmt.Fprintln(a.out, message)
			case dryRun:
				fmt.Fprintf(a.out, "%d年度 償却予定額 %s (dry run)\n", a.year, yen(plan.Total))
			default:
				fmt.Fprintf(a.out, "%s %s\n", depreciation.Description(a.year), yen(plan.Total))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute without posting")

	return cmd
}
