package depreciation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
)

// Accounts the scheduler posts to, created on first use.
const (
	ExpenseAccount            = "減価償却費"
	ExpenseAccountDescription = "固定資産の価値減少分"

	AccumulatedAccount            = "減価償却累計額"
	AccumulatedAccountDescription = "資産から控除される減価償却の累計"
)

// Description returns the description of the generated transaction for year.
func Description(year int) string {
	return fmt.Sprintf("%d年度 減価償却費計上", year)
}

// Result reports a depreciation run. Transaction is nil when nothing was
// posted, and Message then says why.
type Result struct {
	Plan
	Transaction *model.Transaction
	Message     string
}

// Posted reports whether the run wrote a transaction.
func (r *Result) Posted() bool {
	return r.Transaction != nil
}

// Scheduler registers fixed assets and posts yearly depreciation.
type Scheduler struct {
	store service.Storage
	log   logrus.FieldLogger
}

// NewScheduler creates a Scheduler.
func NewScheduler(store service.Storage, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{store: store, log: log}
}

// RegisterAsset records a straight-line fixed asset.
func (s *Scheduler) RegisterAsset(ctx context.Context, userID, name string, acquired time.Time, cost int64, usefulLife int) (*model.FixedAsset, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, common.NewUserError(fmt.Errorf("%w: asset name is required", common.ErrValidation), "資産名を入力してください")
	case acquired.IsZero():
		return nil, common.NewUserError(fmt.Errorf("%w: acquisition date is required", common.ErrValidation), "取得日を入力してください")
	case cost <= 0:
		return nil, common.NewUserError(fmt.Errorf("%w: acquisition cost must be positive, got %d", common.ErrValidation, cost), "取得価額は1円以上で入力してください")
	case usefulLife <= 0:
		return nil, common.NewUserError(fmt.Errorf("%w: useful life must be positive, got %d", common.ErrValidation, usefulLife), "耐用年数は1年以上で入力してください")
	}

	asset := &model.FixedAsset{
		UserID:           userID,
		Name:             name,
		AcquisitionDate:  model.Day(acquired),
		AcquisitionCost:  cost,
		UsefulLife:       usefulLife,
		DepreciationType: model.DepreciationStraightLine,
	}
	if err := s.store.CreateFixedAsset(ctx, asset); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "asset": asset.Name, "cost": cost, "useful_life": usefulLife}).Info("registered fixed asset")
	return asset, nil
}

// Assets lists the user's fixed assets.
func (s *Scheduler) Assets(ctx context.Context, userID string) ([]model.FixedAsset, error) {
	return s.store.ListFixedAssets(ctx, userID)
}

// Preview computes year's depreciation without writing anything.
func (s *Scheduler) Preview(ctx context.Context, userID string, year int) (Plan, error) {
	if year <= 0 {
		return Plan{}, common.ErrInvalidYear
	}
	assets, err := s.store.ListFixedAssets(ctx, userID)
	if err != nil {
		return Plan{}, err
	}
	return Schedule(assets, year), nil
}

// postedBefore reports whether year already carries a depreciation entry:
// either the marked system transaction or, for entries that lost the marker
// through a CSV round trip, one dated in year whose description names it.
func postedBefore(ctx context.Context, q service.Queries, userID string, year int) (bool, error) {
	_, err := q.GetSystemTransaction(ctx, userID, model.SystemKindDepreciation, year)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, common.ErrNotFound):
		return false, err
	}

	start, end := model.YearRange(year)
	txns, err := q.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return false, err
	}
	desc := Description(year)
	for _, txn := range txns {
		if strings.Contains(txn.Description, desc) {
			return true, nil
		}
	}
	return false, nil
}

// Run posts year's depreciation as one transaction dated December 31,
// debiting the expense account and crediting accumulated depreciation. A
// second run for the same year fails with common.ErrAlreadyRun, as does a
// year holding an unmarked entry with the depreciation description.
func (s *Scheduler) Run(ctx context.Context, userID string, year int) (*Result, error) {
	if year <= 0 {
		return nil, common.ErrInvalidYear
	}

	res := &Result{Plan: Plan{Year: year}}
	err := s.store.InTx(ctx, func(q service.Queries) error {
		posted, err := postedBefore(ctx, q, userID, year)
		if err != nil {
			return err
		}
		if posted {
			return alreadyRun(year)
		}

		assets, err := q.ListFixedAssets(ctx, userID)
		if err != nil {
			return err
		}
		if len(assets) == 0 {
			res.Message = "登録された固定資産がありません"
			return nil
		}

		res.Plan = Schedule(assets, year)
		if res.Total <= 0 {
			res.Message = fmt.Sprintf("%d年度に償却対象となる資産がありません", year)
			return nil
		}

		expense, err := accounts.FindOrCreate(ctx, q, userID, ExpenseAccount, model.AccountTypeExpense, ExpenseAccountDescription)
		if err != nil {
			return err
		}
		accumulated, err := accounts.FindOrCreate(ctx, q, userID, AccumulatedAccount, model.AccountTypeAsset, AccumulatedAccountDescription)
		if err != nil {
			return err
		}

		txn := &model.Transaction{
			UserID:      userID,
			Date:        model.YearEnd(year),
			Description: Description(year),
			Postings: []model.Posting{
				{AccountID: expense.ID, Amount: res.Total, IsDebit: true},
				{AccountID: accumulated.ID, Amount: res.Total, IsDebit: false},
			},
			SystemKind: model.SystemKindDepreciation,
			SystemYear: year,
		}
		if err := q.CreateTransaction(ctx, txn); err != nil {
			if errors.Is(err, common.ErrConflict) {
				return alreadyRun(year)
			}
			return err
		}
		res.Transaction = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"user_id": userID, "year": year, "total": res.Total, "assets": len(res.Entries)}
	if res.Posted() {
		s.log.WithFields(fields).WithField("transaction_id", res.Transaction.ID).Info("posted depreciation")
	} else {
		s.log.WithFields(fields).Info(res.Message)
	}
	return res, nil
}

func alreadyRun(year int) error {
	return common.NewUserError(
		fmt.Errorf("depreciation for %d: %w", year, common.ErrAlreadyRun),
		fmt.Sprintf("%d年度の減価償却は既に計上済みです。再実行する場合は、先に既存の減価償却仕訳を削除してください。", year),
	)
}
