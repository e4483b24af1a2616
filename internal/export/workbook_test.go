package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/reports"
	"github.com/aoiro-dev/aoiro/internal/statements"
)

func testStatements(t *testing.T, balances ledger.Balances) *statements.Statements {
	t.Helper()
	accts := []model.Account{
		{ID: "cash", Name: "現金", Type: model.AccountTypeAsset},
		{ID: "capital", Name: "元入金", Type: model.AccountTypeEquity},
		{ID: "sales", Name: "売上高", Type: model.AccountTypeRevenue},
	}
	income, err := statements.ComposeIncomeStatement(statements.BlueReturnTemplate(), accts, balances)
	require.NoError(t, err)
	return &statements.Statements{
		Year:         2024,
		Accounts:     accts,
		Balances:     balances,
		Income:       income,
		BalanceSheet: statements.ComposeBalanceSheet(accts, balances),
	}
}

func TestWrite(t *testing.T) {
	st := testStatements(t, ledger.Balances{"cash": 1500000, "capital": 500000, "sales": 1000000})
	monthly := &reports.Monthly{Year: 2024, Revenue: 1000000}
	for i := range monthly.Months {
		monthly.Months[i].Month = i + 1
	}
	monthly.Months[4].Revenue = 1000000

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, st, monthly))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetIncome, SheetBalanceSheet, SheetMonthly}, f.GetSheetList())

	rows, err := f.GetRows(SheetIncome)
	require.NoError(t, err)
	assert.Equal(t, []string{"番号", "科目", "金額"}, rows[0])
	assert.Equal(t, "①", rows[1][0])
	assert.Equal(t, "売上(収入)金額", rows[1][1])
	assert.Equal(t, len(st.Income.Lines)+1, len(rows))

	raw, err := f.GetCellValue(SheetIncome, "C2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1000000", raw)

	bs, err := f.GetRows(SheetBalanceSheet)
	require.NoError(t, err)
	var names []string
	for _, r := range bs[1:] {
		names = append(names, r[1])
	}
	assert.Contains(t, names, statements.NetIncomeLabel)
	assert.Contains(t, names, "資産合計")
	assert.NotContains(t, names, "差額")

	months, err := f.GetRows(SheetMonthly)
	require.NoError(t, err)
	require.Len(t, months, 14)
	assert.Equal(t, "5月", months[5][0])
	assert.Equal(t, "合計", months[13][0])
}

func TestWorkbook_MismatchAndNoMonthly(t *testing.T) {
	st := testStatements(t, ledger.Balances{"cash": 100})
	f, err := Workbook(st, nil)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetIncome, SheetBalanceSheet}, f.GetSheetList())

	rows, err := f.GetRows(SheetBalanceSheet)
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, statements.MismatchWarning, last[0])
}
