package journal

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/accounts"
	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
)

// Service provides business logic for journal entries.
type Service struct {
	store service.Storage
	log   logrus.FieldLogger
}

// NewService creates a journal Service.
func NewService(store service.Storage, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: log}
}

// Create validates a draft against the user's chart and stores it.
func (s *Service) Create(ctx context.Context, userID string, d Draft) (*model.Transaction, error) {
	var txn *model.Transaction
	err := s.store.InTx(ctx, func(q service.Queries) error {
		var err error
		txn, err = create(ctx, q, userID, d)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "transaction_id": txn.ID, "date": txn.Date.Format(model.DateLayout)}).Info("created transaction")
	return txn, nil
}

func create(ctx context.Context, q service.Queries, userID string, d Draft) (*model.Transaction, error) {
	if err := validate(ctx, q, userID, d); err != nil {
		return nil, err
	}
	txn := fromDraft(userID, d)
	if err := q.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Get returns one of the user's transactions.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// ListYear returns the user's transactions dated within a fiscal year.
func (s *Service) ListYear(ctx context.Context, userID string, year int) ([]model.Transaction, error) {
	if year <= 0 {
		return nil, common.ErrInvalidYear
	}
	start, end := model.YearRange(year)
	return s.store.ListTransactions(ctx, userID, start, end)
}

// Update replaces the header and every posting of an existing transaction.
// A transaction the user does not own behaves as missing. A system entry
// moved out of its fiscal year loses its system marker.
func (s *Service) Update(ctx context.Context, userID, id string, d Draft) (*model.Transaction, error) {
	var txn *model.Transaction
	err := s.store.InTx(ctx, func(q service.Queries) error {
		existing, err := q.GetTransaction(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := validate(ctx, q, userID, d); err != nil {
			return err
		}
		txn = fromDraft(userID, d)
		txn.ID = existing.ID
		txn.CreatedAt = existing.CreatedAt
		if existing.IsSystem() && txn.Date.Year() == existing.SystemYear {
			txn.SystemKind = existing.SystemKind
			txn.SystemYear = existing.SystemYear
		}
		return q.ReplaceTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).Info("updated transaction")
	return txn, nil
}

// Delete removes a transaction and its postings.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).Info("deleted transaction")
	return nil
}

// Ledger returns the single-account ledger for a fiscal year.
func (s *Service) Ledger(ctx context.Context, userID, accountID string, year int) (*model.Account, []ledger.Row, error) {
	if year <= 0 {
		return nil, nil, common.ErrInvalidYear
	}
	acct, err := s.store.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, nil, err
	}

	openings, err := s.store.ListOpeningBalances(ctx, userID, year)
	if err != nil {
		return nil, nil, err
	}
	var opening *model.OpeningBalance
	for i := range openings {
		if openings[i].AccountID == acct.ID {
			opening = &openings[i]
			break
		}
	}

	txns, err := s.ListYear(ctx, userID, year)
	if err != nil {
		return nil, nil, err
	}

	rows, err := ledger.View(*acct, opening, year, txns)
	if err != nil {
		return nil, nil, err
	}
	return acct, rows, nil
}

// SetOpeningBalance records the carried-forward position of a balance
// sheet account for a year, replacing any previous value.
func (s *Service) SetOpeningBalance(ctx context.Context, userID, accountID string, year int, amount int64, isDebit bool) (*model.OpeningBalance, error) {
	if year <= 0 {
		return nil, common.ErrInvalidYear
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: opening balance must not be negative", common.ErrValidation)
	}

	acct, err := s.store.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.Type.IsBalanceSheet() {
		return nil, common.NewUserError(
			fmt.Errorf("%w: %s is a %s account", common.ErrValidation, acct.Name, acct.Type),
			"期首残高は資産・負債・資本の科目にのみ設定できます",
		)
	}

	ob := &model.OpeningBalance{UserID: userID, Year: year, AccountID: acct.ID, Amount: amount, IsDebit: isDebit}
	if err := s.store.UpsertOpeningBalance(ctx, ob); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "year": year, "account": acct.Name, "amount": amount}).Info("set opening balance")
	return ob, nil
}

// OpeningBalances lists the opening balances recorded for a year.
func (s *Service) OpeningBalances(ctx context.Context, userID string, year int) ([]model.OpeningBalance, error) {
	if year <= 0 {
		return nil, common.ErrInvalidYear
	}
	return s.store.ListOpeningBalances(ctx, userID, year)
}

func validate(ctx context.Context, q service.Queries, userID string, d Draft) error {
	accts, err := q.ListAccounts(ctx, userID)
	if err != nil {
		return err
	}
	return asError(Validate(d, accounts.NewIndex(accts)))
}

func fromDraft(userID string, d Draft) *model.Transaction {
	txn := &model.Transaction{
		UserID:      userID,
		Date:        model.Day(d.Date),
		Description: strings.TrimSpace(d.Description),
	}
	for _, p := range d.Postings {
		txn.Postings = append(txn.Postings, model.Posting{
			AccountID: p.AccountID,
			Amount:    p.Amount,
			IsDebit:   p.IsDebit,
		})
	}
	return txn
}
