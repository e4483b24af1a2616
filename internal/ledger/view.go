package ledger

import (
	"time"

	"github.com/aoiro-dev/aoiro/internal/model"
)

// OpeningRowDescription labels the synthetic first row of a ledger view.
const OpeningRowDescription = "期首残高"

// Row is one line of a single-account ledger.
type Row struct {
	Date          time.Time
	Description   string
	TransactionID string // empty for the opening row
	Debit         int64
	Credit        int64
	Balance       int64 // running signed balance after this row
}

// Scan folds step over items, returning every intermediate state.
func Scan[T, S any](items []T, initial S, step func(S, T) S) []S {
	out := make([]S, 0, len(items))
	state := initial
	for _, item := range items {
		state = step(state, item)
		out = append(out, state)
	}
	return out
}

// View returns the ledger of one account for a fiscal year: an opening row
// dated January 1 when opening is non-nil, then one row per posting that
// touches the account, each carrying the running balance.
func View(acct model.Account, opening *model.OpeningBalance, year int, txns []model.Transaction) ([]Row, error) {
	normalIsDebit, err := acct.Type.NormalBalanceIsDebit()
	if err != nil {
		return nil, err
	}

	var rows []Row
	if opening != nil && opening.AccountID == acct.ID && acct.Type.IsBalanceSheet() {
		start, _ := model.YearRange(year)
		r := Row{Date: start, Description: OpeningRowDescription}
		if opening.IsDebit {
			r.Debit = opening.Amount
		} else {
			r.Credit = opening.Amount
		}
		rows = append(rows, r)
	}

	for _, txn := range SortByDate(txns) {
		for _, p := range txn.Postings {
			if p.AccountID != acct.ID {
				continue
			}
			r := Row{Date: txn.Date, Description: txn.Description, TransactionID: txn.ID}
			if p.IsDebit {
				r.Debit = p.Amount
			} else {
				r.Credit = p.Amount
			}
			rows = append(rows, r)
		}
	}

	balances := Scan(rows, int64(0), func(bal int64, r Row) int64 {
		return bal + Effect(normalIsDebit, true, r.Debit) + Effect(normalIsDebit, false, r.Credit)
	})
	for i := range rows {
		rows[i].Balance = balances[i]
	}
	return rows, nil
}
