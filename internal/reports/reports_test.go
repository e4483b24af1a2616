package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/storage/storagetest"
)

var chart = []model.Account{
	{ID: "cash", Name: "現金", Type: model.AccountTypeAsset},
	{ID: "sales", Name: "売上高", Type: model.AccountTypeRevenue},
	{ID: "rent", Name: "地代家賃", Type: model.AccountTypeExpense},
	{ID: "wages", Name: "給料賃金", Type: model.AccountTypeExpense},
	{ID: "misc", Name: "雑費", Type: model.AccountTypeExpense},
}

func entry(m time.Month, desc, debit, credit string, amount int64) model.Transaction {
	return model.Transaction{
		Date:        time.Date(2024, m, 10, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Postings: []model.Posting{
			{AccountID: debit, Amount: amount, IsDebit: true},
			{AccountID: credit, Amount: amount},
		},
	}
}

func TestBuildMonthly(t *testing.T) {
	txns := []model.Transaction{
		entry(time.January, "A社", "cash", "sales", 100000),
		entry(time.January, "返品", "sales", "cash", 10000),
		entry(time.March, "家賃", "rent", "cash", 50000),
		entry(time.December, "雑費", "misc", "cash", 3000),
	}
	m, err := BuildMonthly(chart, txns, 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, m.Year)
	assert.Equal(t, 1, m.Months[0].Month)
	assert.Equal(t, int64(90000), m.Months[0].Revenue)
	assert.Zero(t, m.Months[0].Expense)
	assert.Equal(t, int64(50000), m.Months[2].Expense)
	assert.Equal(t, int64(-50000), m.Months[2].Profit())
	assert.Equal(t, 12, m.Months[11].Month)
	assert.Equal(t, int64(3000), m.Months[11].Expense)
	assert.Equal(t, int64(90000), m.Revenue)
	assert.Equal(t, int64(53000), m.Expense)
	assert.Equal(t, int64(37000), m.Profit())
}

func TestBuildPayees(t *testing.T) {
	txns := []model.Transaction{
		entry(time.January, " 大家さん ", "rent", "cash", 50000),
		entry(time.February, "大家さん", "rent", "cash", 50000),
		entry(time.March, "駐車場", "rent", "cash", 10000),
		entry(time.April, "", "wages", "cash", 2000),
		entry(time.May, "訂正", "rent", "cash", 700),
		entry(time.May, "訂正", "cash", "rent", 700),
		entry(time.June, "雑費", "misc", "cash", 999),
	}
	got, err := BuildPayees(chart, txns)
	require.NoError(t, err)
	require.Len(t, got, len(PayeeAccounts))

	byAccount := make(map[string]PayeeBreakdown)
	for _, b := range got {
		byAccount[b.Account] = b
	}

	rent := byAccount["地代家賃"]
	assert.Equal(t, []Payee{{Name: "大家さん", Amount: 100000}, {Name: "駐車場", Amount: 10000}}, rent.Payees)
	assert.Equal(t, int64(110000), rent.Total)

	wages := byAccount["給料賃金"]
	assert.Equal(t, []Payee{{Name: UnknownPayee, Amount: 2000}}, wages.Payees)

	assert.Empty(t, byAccount["外注工賃"].Payees, "accounts missing from the chart still appear")
	assert.Equal(t, "給料賃金", got[0].Account)
}

func TestBuildPayees_TiesSortByName(t *testing.T) {
	txns := []model.Transaction{
		entry(time.January, "B", "rent", "cash", 100),
		entry(time.January, "A", "rent", "cash", 100),
	}
	got, err := BuildPayees(chart, txns)
	require.NoError(t, err)
	assert.Equal(t, []Payee{{Name: "A", Amount: 100}, {Name: "B", Amount: 100}}, got[1].Payees)
}

func TestBuild_UnknownAccountType(t *testing.T) {
	broken := append([]model.Account{}, chart...)
	broken = append(broken,
		model.Account{ID: "odd", Name: "外注工賃", Type: "OTHER"},
	)
	txns := []model.Transaction{entry(time.January, "X社", "odd", "cash", 100)}

	_, err := BuildPayees(broken, txns)
	assert.ErrorIs(t, err, common.ErrUnknownAccountType)

	// Accounts outside revenue and expense never reach the monthly table.
	_, err = BuildMonthly(broken, txns, 2024)
	assert.NoError(t, err)
}

func TestBuildSummary(t *testing.T) {
	s := BuildSummary(chart, ledger.Balances{"cash": 10, "sales": 500, "rent": 200, "misc": 50}, 2024)
	assert.Equal(t, int64(500), s.Totals[model.AccountTypeRevenue])
	assert.Equal(t, int64(250), s.Totals[model.AccountTypeExpense])
	assert.Equal(t, int64(250), s.NetIncome)
}

func TestService(t *testing.T) {
	ctx := context.Background()
	store := storagetest.New(t)
	svc := NewService(store)

	ids := make(map[string]string)
	for _, a := range chart {
		a.ID = ""
		a.UserID = "u1"
		require.NoError(t, store.CreateAccount(ctx, &a))
		ids[a.Name] = a.ID
	}
	txn := entry(time.July, "大家さん", ids["地代家賃"], ids["現金"], 80000)
	txn.UserID = "u1"
	require.NoError(t, store.CreateTransaction(ctx, &txn))

	m, err := svc.Monthly(ctx, "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), m.Months[6].Expense)

	payees, err := svc.Payees(ctx, "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), payees[1].Total)

	sum, err := svc.Summary(ctx, "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(-80000), sum.NetIncome)
	assert.Equal(t, int64(-80000), sum.Totals[model.AccountTypeAsset])

	empty, err := svc.Monthly(ctx, "u1", 2023)
	require.NoError(t, err)
	assert.Zero(t, empty.Expense)

	_, err = svc.Payees(ctx, "u1", 0)
	assert.ErrorIs(t, err, common.ErrInvalidYear)
}
