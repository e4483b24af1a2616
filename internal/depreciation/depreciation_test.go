package depreciation

import (
	"bytes"
	"context"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/journal"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/storage/storagetest"
)

func acquired(year int) time.Time {
	return time.Date(year, time.April, 1, 0, 0, 0, 0, time.UTC)
}

func TestSchedule_Boundaries(t *testing.T) {
	pc := model.FixedAsset{ID: "pc", Name: "PC", AcquisitionDate: acquired(2024), AcquisitionCost: 480000, UsefulLife: 4}

	tests := []struct {
		year    int
		want    int64
		skipped bool
		reason  string
	}{
		{2023, 0, true, "取得日（2024年）より前の年度です"},
		{2024, 120000, false, ""},
		{2025, 120000, false, ""},
		{2027, 120000, false, ""},
		{2028, 0, true, "耐用年数（4年）を超過しています"},
	}
	for _, tt := range tests {
		plan := Schedule([]model.FixedAsset{pc}, tt.year)
		require.Len(t, plan.Entries, 1)
		e := plan.Entries[0]
		assert.Equal(t, tt.want, plan.Total, "year %d", tt.year)
		assert.Equal(t, tt.skipped, e.Skipped, "year %d", tt.year)
		assert.Equal(t, tt.reason, e.Reason, "year %d", tt.year)
		assert.Equal(t, "PC", e.AssetName)
	}
}

func TestSchedule_FloorsAndSums(t *testing.T) {
	assets := []model.FixedAsset{
		{Name: "desk", AcquisitionDate: acquired(2024), AcquisitionCost: 100000, UsefulLife: 3},
		{Name: "car", AcquisitionDate: acquired(2020), AcquisitionCost: 1200000, UsefulLife: 6},
		{Name: "old", AcquisitionDate: acquired(2010), AcquisitionCost: 50000, UsefulLife: 2},
	}
	plan := Schedule(assets, 2024)
	assert.Equal(t, int64(33333+200000), plan.Total)
	assert.Equal(t, int64(33333), plan.Entries[0].Amount)
	assert.True(t, plan.Entries[2].Skipped)
}

func TestAnnualCharge_ZeroLife(t *testing.T) {
	assert.Zero(t, AnnualCharge(model.FixedAsset{AcquisitionCost: 100}))
}

func newScheduler(t *testing.T) (*Scheduler, context.Context) {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	return NewScheduler(storagetest.New(t), log), context.Background()
}

func TestRun_PostsOnce(t *testing.T) {
	s, ctx := newScheduler(t)
	_, err := s.RegisterAsset(ctx, "u1", "PC", acquired(2024), 480000, 4)
	require.NoError(t, err)

	res, err := s.Run(ctx, "u1", 2024)
	require.NoError(t, err)
	require.True(t, res.Posted())
	assert.Equal(t, int64(120000), res.Total)

	txn := res.Transaction
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.Equal(t, "2024年度 減価償却費計上", txn.Description)
	assert.Equal(t, model.SystemKindDepreciation, txn.SystemKind)
	debit, credit := txn.Totals()
	assert.Equal(t, int64(120000), debit)
	assert.Equal(t, debit, credit)

	expense, err := s.store.GetAccountByName(ctx, "u1", ExpenseAccount)
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeExpense, expense.Type)
	accumulated, err := s.store.GetAccountByName(ctx, "u1", AccumulatedAccount)
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeAsset, accumulated.Type)

	_, err = s.Run(ctx, "u1", 2024)
	require.ErrorIs(t, err, common.ErrAlreadyRun)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, common.UserMessage(err), "既に計上済み")

	start, end := model.YearRange(2024)
	txns, err := s.store.ListTransactions(ctx, "u1", start, end)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestRun_UsesExistingAccounts(t *testing.T) {
	s, ctx := newScheduler(t)
	existing := &model.Account{UserID: "u1", Name: ExpenseAccount, Type: model.AccountTypeExpense}
	require.NoError(t, s.store.CreateAccount(ctx, existing))
	_, err := s.RegisterAsset(ctx, "u1", "PC", acquired(2024), 300000, 3)
	require.NoError(t, err)

	res, err := s.Run(ctx, "u1", 2025)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.Transaction.Postings[0].AccountID)
}

func TestRun_AfterDeleteCanRerun(t *testing.T) {
	s, ctx := newScheduler(t)
	_, err := s.RegisterAsset(ctx, "u1", "PC", acquired(2024), 480000, 4)
	require.NoError(t, err)

	res, err := s.Run(ctx, "u1", 2024)
	require.NoError(t, err)
	require.NoError(t, s.store.DeleteTransaction(ctx, "u1", res.Transaction.ID))

	_, err = s.Run(ctx, "u1", 2024)
	assert.NoError(t, err)
}

func TestRun_UnmarkedEntryBlocksRerun(t *testing.T) {
	s, ctx := newScheduler(t)
	log, _ := logtest.NewNullLogger()
	_, err := s.RegisterAsset(ctx, "u1", "PC", acquired(2024), 480000, 4)
	require.NoError(t, err)

	expense, err := accounts.FindOrCreate(ctx, s.store, "u1", ExpenseAccount, model.AccountTypeExpense, "")
	require.NoError(t, err)
	accumulated, err := accounts.FindOrCreate(ctx, s.store, "u1", AccumulatedAccount, model.AccountTypeAsset, "")
	require.NoError(t, err)
	_, err = journal.NewService(s.store, log).Create(ctx, "u1",
		journal.Simple(model.YearEnd(2024), Description(2024), expense.ID, accumulated.ID, 120000))
	require.NoError(t, err)

	_, err = s.Run(ctx, "u1", 2024)
	require.ErrorIs(t, err, common.ErrAlreadyRun)

	res, err := s.Run(ctx, "u1", 2025)
	require.NoError(t, err, "the description only blocks its own year")
	assert.True(t, res.Posted())
}

func TestRun_CSVRoundTripKeepsGuard(t *testing.T) {
	s, ctx := newScheduler(t)
	log, _ := logtest.NewNullLogger()
	j := journal.NewService(s.store, log)

	_, err := s.RegisterAsset(ctx, "u1", "PC", acquired(2024), 480000, 4)
	require.NoError(t, err)
	_, err = s.Run(ctx, "u1", 2024)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, j.ExportCSV(ctx, "u1", 2024, &buf))

	_, err = s.RegisterAsset(ctx, "u2", "PC", acquired(2024), 480000, 4)
	require.NoError(t, err)
	for _, name := range []string{ExpenseAccount, AccumulatedAccount} {
		typ := model.AccountTypeExpense
		if name == AccumulatedAccount {
			typ = model.AccountTypeAsset
		}
		_, err := accounts.FindOrCreate(ctx, s.store, "u2", name, typ, "")
		require.NoError(t, err)
	}
	n, err := j.ImportCSV(ctx, "u2", &buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = s.Run(ctx, "u2", 2024)
	require.ErrorIs(t, err, common.ErrAlreadyRun)

	start, end := model.YearRange(2024)
	txns, err := s.store.ListTransactions(ctx, "u2", start, end)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestRun_NothingToPost(t *testing.T) {
	s, ctx := newScheduler(t)

	res, err := s.Run(ctx, "u1", 2024)
	require.NoError(t, err)
	assert.False(t, res.Posted())
	assert.Equal(t, "登録された固定資産がありません", res.Message)

	_, err = s.RegisterAsset(ctx, "u1", "PC", acquired(2024), 480000, 4)
	require.NoError(t, err)
	res, err = s.Run(ctx, "u1", 2030)
	require.NoError(t, err)
	assert.False(t, res.Posted())
	assert.Equal(t, "2030年度に償却対象となる資産がありません", res.Message)
	require.Len(t, res.Entries, 1)
	assert.True(t, res.Entries[0].Skipped)

	_, err = s.store.GetAccountByName(ctx, "u1", ExpenseAccount)
	assert.ErrorIs(t, err, common.ErrNotFound, "accounts are only created when something is posted")
}

func TestRun_UsersAreIndependent(t *testing.T) {
	s, ctx := newScheduler(t)
	for _, user := range []string{"u1", "u2"} {
		_, err := s.RegisterAsset(ctx, user, "PC", acquired(2024), 480000, 4)
		require.NoError(t, err)
		res, err := s.Run(ctx, user, 2024)
		require.NoError(t, err)
		assert.True(t, res.Posted())
	}
}

func TestRun_InvalidYear(t *testing.T) {
	s, ctx := newScheduler(t)
	_, err := s.Run(ctx, "u1", 0)
	assert.ErrorIs(t, err, common.ErrInvalidYear)
}

func TestRegisterAsset_Validation(t *testing.T) {
	s, ctx := newScheduler(t)
	tests := []struct {
		name  string
		asset string
		date  time.Time
		cost  int64
		life  int
	}{
		{"blank name", " ", acquired(2024), 1, 1},
		{"no date", "PC", time.Time{}, 1, 1},
		{"zero cost", "PC", acquired(2024), 0, 1},
		{"zero life", "PC", acquired(2024), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RegisterAsset(ctx, "u1", tt.asset, tt.date, tt.cost, tt.life)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}

	assets, err := s.Assets(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestPreview(t *testing.T) {
	s, ctx := newScheduler(t)
	_, err := s.RegisterAsset(ctx, "u1", "PC", acquired(2024), 480000, 4)
	require.NoError(t, err)

	plan, err := s.Preview(ctx, "u1", 2026)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), plan.Total)

	start, end := model.YearRange(2026)
	txns, err := s.store.ListTransactions(ctx, "u1", start, end)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
