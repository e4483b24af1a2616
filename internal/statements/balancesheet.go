package statements

import (
	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
)

// NetIncomeLabel is the pseudo-line added under equity.
const NetIncomeLabel = "当期純利益"

// MismatchWarning is shown when the balance sheet does not balance.
const MismatchWarning = "貸借不一致"

// SheetLine is one account on the balance sheet. AccountID is empty for the
// net income pseudo-line.
type SheetLine struct {
	AccountID string
	Name      string
	Amount    int64
}

// Section groups the lines of one account type.
type Section struct {
	Type  model.AccountType
	Lines []SheetLine
	Total int64
}

// BalanceSheet lists asset, liability and equity balances. Equity includes
// the period's net income.
type BalanceSheet struct {
	Assets      Section
	Liabilities Section
	Equity      Section
	NetIncome   int64

	// Balanced reports whether assets equal liabilities plus equity.
	// Mismatch is assets minus (liabilities plus equity).
	Balanced bool
	Mismatch int64
}

// Warning returns MismatchWarning when the sheet does not balance.
func (b *BalanceSheet) Warning() string {
	if b.Balanced {
		return ""
	}
	return MismatchWarning
}

// ComposeBalanceSheet partitions balance sheet accounts by type in
// (type, name) order. A mismatch is reported on the result, never corrected.
func ComposeBalanceSheet(accts []model.Account, balances ledger.Balances) *BalanceSheet {
	bs := &BalanceSheet{
		Assets:      Section{Type: model.AccountTypeAsset},
		Liabilities: Section{Type: model.AccountTypeLiability},
		Equity:      Section{Type: model.AccountTypeEquity},
	}

	sorted := append([]model.Account(nil), accts...)
	accounts.SortByType(sorted)
	for _, a := range sorted {
		var sec *Section
		switch a.Type {
		case model.AccountTypeAsset:
			sec = &bs.Assets
		case model.AccountTypeLiability:
			sec = &bs.Liabilities
		case model.AccountTypeEquity:
			sec = &bs.Equity
		default:
			continue
		}
		amount := balances[a.ID]
		sec.Lines = append(sec.Lines, SheetLine{AccountID: a.ID, Name: a.Name, Amount: amount})
		sec.Total += amount
	}

	bs.NetIncome = ledger.NetIncome(accts, balances)
	bs.Equity.Lines = append(bs.Equity.Lines, SheetLine{Name: NetIncomeLabel, Amount: bs.NetIncome})
	bs.Equity.Total += bs.NetIncome

	bs.Mismatch = bs.Assets.Total - (bs.Liabilities.Total + bs.Equity.Total)
	bs.Balanced = bs.Mismatch == 0
	return bs
}
