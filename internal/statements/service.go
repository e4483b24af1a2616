package statements

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
)

// Statements holds both statements for one fiscal year.
type Statements struct {
	Year         int
	Accounts     []model.Account
	Balances     ledger.Balances
	Income       *IncomeStatement
	BalanceSheet *BalanceSheet
}

// Service loads a year's books and composes its statements.
type Service struct {
	store    service.Queries
	log      logrus.FieldLogger
	template Template
}

// NewService creates a Service that uses the blue-return template.
func NewService(store service.Queries, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: log, template: BlueReturnTemplate()}
}

// Balances loads the user's chart, the year's opening balances and the
// year's transactions, and folds them into ending balances.
func Balances(ctx context.Context, q service.Queries, userID string, year int) ([]model.Account, ledger.Balances, error) {
	if year <= 0 {
		return nil, nil, common.ErrInvalidYear
	}
	accts, err := q.ListAccounts(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	openings, err := q.ListOpeningBalances(ctx, userID, year)
	if err != nil {
		return nil, nil, err
	}
	start, end := model.YearRange(year)
	txns, err := q.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, nil, err
	}
	balances, err := ledger.ComputeBalances(accts, openings, txns)
	if err != nil {
		return nil, nil, err
	}
	return accts, balances, nil
}

// Compose builds the income statement and balance sheet for a year.
func (s *Service) Compose(ctx context.Context, userID string, year int) (*Statements, error) {
	accts, balances, err := Balances(ctx, s.store, userID, year)
	if err != nil {
		return nil, err
	}

	income, err := ComposeIncomeStatement(s.template, accts, balances)
	if err != nil {
		return nil, err
	}
	bs := ComposeBalanceSheet(accts, balances)
	if !bs.Balanced {
		s.log.WithFields(logrus.Fields{
			"user_id":  userID,
			"year":     year,
			"mismatch": bs.Mismatch,
		}).Warn("balance sheet does not balance")
	}

	return &Statements{
		Year:         year,
		Accounts:     accts,
		Balances:     balances,
		Income:       income,
		BalanceSheet: bs,
	}, nil
}
