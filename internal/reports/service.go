package reports

import (
	"context"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
	"github.com/aoiro-dev/aoiro/internal/statements"
)

// Service loads a year's journal and builds reports from it.
type Service struct {
	store service.Queries
}

// NewService creates a reports Service.
func NewService(store service.Queries) *Service {
	return &Service{store: store}
}

func (s *Service) load(ctx context.Context, userID string, year int) ([]model.Account, []model.Transaction, error) {
	if year <= 0 {
		return nil, nil, common.ErrInvalidYear
	}
	accts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	start, end := model.YearRange(year)
	txns, err := s.store.ListTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, nil, err
	}
	return accts, txns, nil
}

// Monthly returns the monthly revenue and expense table for year.
func (s *Service) Monthly(ctx context.Context, userID string, year int) (*Monthly, error) {
	accts, txns, err := s.load(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return BuildMonthly(accts, txns, year)
}

// Payees returns the payee breakdown for year.
func (s *Service) Payees(ctx context.Context, userID string, year int) ([]PayeeBreakdown, error) {
	accts, txns, err := s.load(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return BuildPayees(accts, txns)
}

// Summary returns per-type ending balances for year.
func (s *Service) Summary(ctx context.Context, userID string, year int) (*Summary, error) {
	accts, balances, err := statements.Balances(ctx, s.store, userID, year)
	if err != nil {
		return nil, err
	}
	return BuildSummary(accts, balances, year), nil
}
