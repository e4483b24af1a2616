// Package closing rolls a fiscal year's balance sheet forward into the
// next year's opening balances.
package closing

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
	"github.com/aoiro-dev/aoiro/internal/statements"
)

// CapitalMarker identifies the proprietor's capital account by name.
const CapitalMarker = "元入金"

// Result describes a completed closing.
type Result struct {
	Year      int
	NextYear  int
	NetIncome int64
	// CapitalAccount is the account net income was merged into, or nil when
	// the chart has no capital account.
	CapitalAccount  *model.Account
	OpeningBalances []model.OpeningBalance
}

// Closer runs year-end closing.
type Closer struct {
	store service.Storage
	log   logrus.FieldLogger
}

// NewCloser creates a Closer.
func NewCloser(store service.Storage, log logrus.FieldLogger) *Closer {
	return &Closer{store: store, log: log}
}

// CloseYear computes year's ending balances and replaces year+1's opening
// balances with them. Revenue and expense accounts are not carried; their
// net is merged into the capital account. Running it again for the same year
// overwrites the previous result.
func (c *Closer) CloseYear(ctx context.Context, userID string, year int) (*Result, error) {
	if year <= 0 {
		return nil, common.ErrInvalidYear
	}

	var res *Result
	err := c.store.InTx(ctx, func(q service.Queries) error {
		accts, balances, err := statements.Balances(ctx, q, userID, year)
		if err != nil {
			return err
		}

		res, err = Plan(accts, balances, userID, year)
		if err != nil {
			return err
		}

		if err := q.DeleteOpeningBalances(ctx, userID, res.NextYear); err != nil {
			return err
		}
		for i := range res.OpeningBalances {
			if err := q.UpsertOpeningBalance(ctx, &res.OpeningBalances[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"user_id":    userID,
		"year":       year,
		"net_income": res.NetIncome,
		"accounts":   len(res.OpeningBalances),
	}
	if res.CapitalAccount == nil {
		c.log.WithFields(fields).Warn("closed year without a capital account; net income not carried")
	} else {
		c.log.WithFields(fields).Info("closed year")
	}
	return res, nil
}

// Plan computes the next year's opening balances from year's ending
// balances without writing anything. Accounts are visited in (type, name)
// order and every balance sheet account gets a row, zero balances included.
func Plan(accts []model.Account, balances ledger.Balances, userID string, year int) (*Result, error) {
	if year <= 0 {
		return nil, common.ErrInvalidYear
	}

	sorted := append([]model.Account(nil), accts...)
	accounts.SortByType(sorted)

	res := &Result{
		Year:      year,
		NextYear:  year + 1,
		NetIncome: ledger.NetIncome(sorted, balances),
	}
	for i := range sorted {
		a := sorted[i]
		if a.Type == model.AccountTypeEquity && strings.Contains(a.Name, CapitalMarker) {
			res.CapitalAccount = &a
			break
		}
	}

	for _, a := range sorted {
		if !a.Type.IsBalanceSheet() {
			continue
		}
		signed := balances[a.ID]
		if res.CapitalAccount != nil && a.ID == res.CapitalAccount.ID {
			signed += res.NetIncome
		}
		pos, err := ledger.NormalizeAccount(a, signed)
		if err != nil {
			return nil, err
		}
		res.OpeningBalances = append(res.OpeningBalances, model.OpeningBalance{
			UserID:    userID,
			Year:      res.NextYear,
			AccountID: a.ID,
			Amount:    pos.Amount,
			IsDebit:   pos.IsDebit,
		})
	}
	return res, nil
}
