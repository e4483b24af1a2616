// Package reports aggregates a fiscal year's journal into the supporting
// tables of the blue-return filing.
package reports

import (
	"slices"
	"sort"
	"strings"

	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
)

// Month is one row of the monthly table.
type Month struct {
	Month   int
	Revenue int64
	Expense int64
}

// Profit is revenue minus expense.
func (m Month) Profit() int64 {
	return m.Revenue - m.Expense
}

// Monthly is the twelve-month revenue and expense table.
type Monthly struct {
	Year    int
	Months  [12]Month
	Revenue int64
	Expense int64
}

// Profit is the year's revenue minus expense.
func (m *Monthly) Profit() int64 {
	return m.Revenue - m.Expense
}

// BuildMonthly totals revenue and expense postings by calendar month.
// Postings are signed by the account's normal side, so a debit to revenue
// reduces that month's revenue.
func BuildMonthly(accts []model.Account, txns []model.Transaction, year int) (*Monthly, error) {
	sides := make(map[string]side, len(accts))
	for _, a := range accts {
		if a.Type != model.AccountTypeRevenue && a.Type != model.AccountTypeExpense {
			continue
		}
		normalIsDebit, err := a.Type.NormalBalanceIsDebit()
		if err != nil {
			return nil, err
		}
		sides[a.ID] = side{typ: a.Type, normalIsDebit: normalIsDebit}
	}

	m := &Monthly{Year: year}
	for i := range m.Months {
		m.Months[i].Month = i + 1
	}
	for _, txn := range txns {
		row := &m.Months[txn.Date.Month()-1]
		for _, p := range txn.Postings {
			acct, ok := sides[p.AccountID]
			if !ok {
				continue
			}
			amount := ledger.Effect(acct.normalIsDebit, p.IsDebit, p.Amount)
			if acct.typ == model.AccountTypeRevenue {
				row.Revenue += amount
			} else {
				row.Expense += amount
			}
		}
	}
	for _, row := range m.Months {
		m.Revenue += row.Revenue
		m.Expense += row.Expense
	}
	return m, nil
}

// side is an account's type and normal balance side.
type side struct {
	typ           model.AccountType
	normalIsDebit bool
}

// PayeeAccounts are the expense accounts whose breakdown by payee the
// filing asks for.
var PayeeAccounts = []string{"給料賃金", "地代家賃", "外注工賃", "修繕費", "専従者給与"}

// UnknownPayee stands in for a blank description.
const UnknownPayee = "不明 (摘要なし)"

// Payee is one payee's yearly total for an account.
type Payee struct {
	Name   string
	Amount int64
}

// PayeeBreakdown lists the payees of one account, largest first.
type PayeeBreakdown struct {
	Account string
	Payees  []Payee
	Total   int64
}

// BuildPayees groups postings to PayeeAccounts by transaction description.
// Payees whose postings net to zero are dropped. Every account in
// PayeeAccounts gets a breakdown, empty when it has no postings.
func BuildPayees(accts []model.Account, txns []model.Transaction) ([]PayeeBreakdown, error) {
	type target struct {
		name          string
		normalIsDebit bool
	}
	targets := make(map[string]target)
	for _, a := range accts {
		if !slices.Contains(PayeeAccounts, a.Name) {
			continue
		}
		normalIsDebit, err := a.Type.NormalBalanceIsDebit()
		if err != nil {
			return nil, err
		}
		targets[a.ID] = target{name: a.Name, normalIsDebit: normalIsDebit}
	}

	sums := make(map[string]map[string]int64, len(PayeeAccounts))
	for _, name := range PayeeAccounts {
		sums[name] = make(map[string]int64)
	}
	for _, txn := range txns {
		payee := strings.TrimSpace(txn.Description)
		if payee == "" {
			payee = UnknownPayee
		}
		for _, p := range txn.Postings {
			acct, ok := targets[p.AccountID]
			if !ok {
				continue
			}
			sums[acct.name][payee] += ledger.Effect(acct.normalIsDebit, p.IsDebit, p.Amount)
		}
	}

	out := make([]PayeeBreakdown, 0, len(PayeeAccounts))
	for _, name := range PayeeAccounts {
		b := PayeeBreakdown{Account: name}
		for payee, amount := range sums[name] {
			if amount == 0 {
				continue
			}
			b.Payees = append(b.Payees, Payee{Name: payee, Amount: amount})
			b.Total += amount
		}
		sort.Slice(b.Payees, func(i, j int) bool {
			if b.Payees[i].Amount != b.Payees[j].Amount {
				return b.Payees[i].Amount > b.Payees[j].Amount
			}
			return b.Payees[i].Name < b.Payees[j].Name
		})
		out = append(out, b)
	}
	return out, nil
}

// Summary is the per-type totals of a year.
type Summary struct {
	Year      int
	Totals    map[model.AccountType]int64
	NetIncome int64
}

// BuildSummary totals balances by account type.
func BuildSummary(accts []model.Account, balances ledger.Balances, year int) *Summary {
	return &Summary{
		Year:      year,
		Totals:    ledger.TotalsByType(accts, balances),
		NetIncome: ledger.NetIncome(accts, balances),
	}
}
