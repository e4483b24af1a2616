// Package ledger folds opening positions and postings into signed account balances.
package ledger

import (
	"fmt"
	"sort"

	"github.com/aoiro-dev/aoiro/internal/model"
)

// Balances maps account ID to its signed balance. Positive means the
// balance sits on the account's normal side.
type Balances map[string]int64

// Effect returns the signed change a posting makes to an account whose
// normal side is normalIsDebit.
func Effect(normalIsDebit, isDebit bool, amount int64) int64 {
	if normalIsDebit == isDebit {
		return amount
	}
	return -amount
}

// ComputeBalances returns every account's signed balance after applying
// opening balances and then postings in date order.
//
// Opening balances on REVENUE and EXPENSE accounts, and opening balances or
// postings that reference accounts not in accts, are ignored.
func ComputeBalances(accts []model.Account, openings []model.OpeningBalance, txns []model.Transaction) (Balances, error) {
	normal := make(map[string]bool, len(accts))
	types := make(map[string]model.AccountType, len(accts))
	balances := make(Balances, len(accts))
	for _, a := range accts {
		isDebit, err := a.Type.NormalBalanceIsDebit()
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Name, err)
		}
		normal[a.ID] = isDebit
		types[a.ID] = a.Type
		balances[a.ID] = 0
	}

	for _, ob := range openings {
		typ, ok := types[ob.AccountID]
		if !ok || !typ.IsBalanceSheet() {
			continue
		}
		balances[ob.AccountID] += Effect(normal[ob.AccountID], ob.IsDebit, ob.Amount)
	}

	for _, txn := range SortByDate(txns) {
		for _, p := range txn.Postings {
			isDebit, ok := normal[p.AccountID]
			if !ok {
				continue
			}
			balances[p.AccountID] += Effect(isDebit, p.IsDebit, p.Amount)
		}
	}
	return balances, nil
}

// SortByDate returns txns ordered by date, keeping input order for ties.
// The input slice is not modified.
func SortByDate(txns []model.Transaction) []model.Transaction {
	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Position is a balance expressed as an unsigned amount on one side.
type Position struct {
	Amount  int64
	IsDebit bool
}

// Normalize converts a signed balance into a Position. Negative balances
// flip to the opposite side.
func Normalize(normalIsDebit bool, signed int64) Position {
	if signed < 0 {
		return Position{Amount: -signed, IsDebit: !normalIsDebit}
	}
	return Position{Amount: signed, IsDebit: normalIsDebit}
}

// NormalizeAccount is Normalize using the account's own normal side.
func NormalizeAccount(acct model.Account, signed int64) (Position, error) {
	isDebit, err := acct.Type.NormalBalanceIsDebit()
	if err != nil {
		return Position{}, err
	}
	return Normalize(isDebit, signed), nil
}

// Signed converts a Position back into a signed balance for an account
// whose normal side is normalIsDebit.
func (p Position) Signed(normalIsDebit bool) int64 {
	return Effect(normalIsDebit, p.IsDebit, p.Amount)
}

// TotalsByType sums signed balances per account type.
func TotalsByType(accts []model.Account, balances Balances) map[model.AccountType]int64 {
	totals := make(map[model.AccountType]int64, len(model.AccountTypes))
	for _, t := range model.AccountTypes {
		totals[t] = 0
	}
	for _, a := range accts {
		totals[a.Type] += balances[a.ID]
	}
	return totals
}

// NetIncome is total REVENUE minus total EXPENSE.
func NetIncome(accts []model.Account, balances Balances) int64 {
	totals := TotalsByType(accts, balances)
	return totals[model.AccountTypeRevenue] - totals[model.AccountTypeExpense]
}
