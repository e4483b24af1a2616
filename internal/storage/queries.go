package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
)

// queries runs statements against either the database handle or an open
// transaction. Multi-statement writes assume they run inside a transaction;
// Store wraps them when called outside one.
type queries struct {
	ext    sqlx.ExtContext
	driver string
}

var _ service.Queries = (*queries)(nil)

type accountRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Name        string    `db:"name"`
	Type        string    `db:"type"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r accountRow) toModel() model.Account {
	return model.Account{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Type:        model.AccountType(r.Type),
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type transactionRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Date        time.Time      `db:"date"`
	Description string         `db:"description"`
	SystemKind  sql.NullString `db:"system_kind"`
	SystemYear  sql.NullInt64  `db:"system_year"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r transactionRow) toModel() model.Transaction {
	txn := model.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		Date:        model.Day(r.Date),
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if r.SystemKind.Valid {
		txn.SystemKind = model.SystemKind(r.SystemKind.String)
	}
	if r.SystemYear.Valid {
		txn.SystemYear = int(r.SystemYear.Int64)
	}
	return txn
}

type postingRow struct {
	ID            string `db:"id"`
	TransactionID string `db:"transaction_id"`
	AccountID     string `db:"account_id"`
	Amount        int64  `db:"amount"`
	IsDebit       bool   `db:"is_debit"`
	LineNo        int    `db:"line_no"`
}

func (r postingRow) toModel() model.Posting {
	return model.Posting(r)
}

type openingBalanceRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Year      int    `db:"year"`
	AccountID string `db:"account_id"`
	Amount    int64  `db:"amount"`
	IsDebit   bool   `db:"is_debit"`
}

type fixedAssetRow struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	Name             string    `db:"name"`
	AcquisitionDate  time.Time `db:"acquisition_date"`
	AcquisitionCost  int64     `db:"acquisition_cost"`
	UsefulLife       int       `db:"useful_life"`
	DepreciationType string    `db:"depreciation_type"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r fixedAssetRow) toModel() model.FixedAsset {
	return model.FixedAsset{
		ID:               r.ID,
		UserID:           r.UserID,
		Name:             r.Name,
		AcquisitionDate:  model.Day(r.AcquisitionDate),
		AcquisitionCost:  r.AcquisitionCost,
		UsefulLife:       r.UsefulLife,
		DepreciationType: model.DepreciationType(r.DepreciationType),
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

// ListAccounts returns the user's accounts ordered by name.
func (q *queries) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	var rows []accountRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		`SELECT id, user_id, name, type, description, created_at
		FROM accounts WHERE user_id = ? ORDER BY name, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	accounts := make([]model.Account, len(rows))
	for i, r := range rows {
		accounts[i] = r.toModel()
	}
	return accounts, nil
}

// GetAccount returns one account by ID.
func (q *queries) GetAccount(ctx context.Context, userID, id string) (*model.Account, error) {
	var row accountRow
	err := sqlx.GetContext(ctx, q.ext, &row,
		`SELECT id, user_id, name, type, description, created_at
		FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, notFound(err, "account "+id)
	}
	acct := row.toModel()
	return &acct, nil
}

// GetAccountByName returns one account by its unique name.
func (q *queries) GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error) {
	var row accountRow
	err := sqlx.GetContext(ctx, q.ext, &row,
		`SELECT id, user_id, name, type, description, created_at
		FROM accounts WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return nil, notFound(err, "account "+name)
	}
	acct := row.toModel()
	return &acct, nil
}

// CountAccounts returns how many accounts the user has.
func (q *queries) CountAccounts(ctx context.Context, userID string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q.ext, &n, `SELECT COUNT(*) FROM accounts WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return n, nil
}

// CreateAccount inserts an account, assigning ID and CreatedAt when empty.
func (q *queries) CreateAccount(ctx context.Context, account *model.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	row := accountRow{
		ID:          account.ID,
		UserID:      account.UserID,
		Name:        account.Name,
		Type:        string(account.Type),
		Description: account.Description,
		CreatedAt:   account.CreatedAt,
	}
	_, err := sqlx.NamedExecContext(ctx, q.ext,
		`INSERT INTO accounts (id, user_id, name, type, description, created_at)
		VALUES (:id, :user_id, :name, :type, :description, :created_at)`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating account %q: %w", account.Name, common.ErrDuplicateAccount)
		}
		return fmt.Errorf("creating account %q: %w", account.Name, err)
	}
	return nil
}

// CreateTransaction inserts the header row followed by every posting.
func (q *queries) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	txn.Date = model.Day(txn.Date)

	row := transactionRow{
		ID:          txn.ID,
		UserID:      txn.UserID,
		Date:        txn.Date,
		Description: txn.Description,
		CreatedAt:   txn.CreatedAt,
	}
	row.SystemKind, row.SystemYear = systemMarker(txn)

	_, err := sqlx.NamedExecContext(ctx, q.ext,
		`INSERT INTO transactions (id, user_id, date, description, system_kind, system_year, created_at)
		VALUES (:id, :user_id, :date, :description, :system_kind, :system_year, :created_at)`, row)
	if err != nil {
		if isUniqueViolation(err) && txn.IsSystem() {
			return fmt.Errorf("creating %s transaction for %d: %w", txn.SystemKind, txn.SystemYear, ErrDuplicateSystemEntry)
		}
		return fmt.Errorf("creating transaction: %w", err)
	}

	return q.insertPostings(ctx, txn)
}

// systemMarker returns the nullable system columns, both NULL for user entries.
func systemMarker(txn *model.Transaction) (sql.NullString, sql.NullInt64) {
	if !txn.IsSystem() {
		return sql.NullString{}, sql.NullInt64{}
	}
	return sql.NullString{String: string(txn.SystemKind), Valid: true},
		sql.NullInt64{Int64: int64(txn.SystemYear), Valid: true}
}

func (q *queries) insertPostings(ctx context.Context, txn *model.Transaction) error {
	for i := range txn.Postings {
		p := &txn.Postings[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.TransactionID = txn.ID
		p.LineNo = i
		_, err := sqlx.NamedExecContext(ctx, q.ext,
			`INSERT INTO postings (id, transaction_id, account_id, amount, is_debit, line_no)
			VALUES (:id, :transaction_id, :account_id, :amount, :is_debit, :line_no)`, postingRow(*p))
		if err != nil {
			return fmt.Errorf("creating posting %d: %w", i, err)
		}
	}
	return nil
}

// GetTransaction returns one transaction with its postings.
func (q *queries) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	var row transactionRow
	err := sqlx.GetContext(ctx, q.ext, &row,
		`SELECT id, user_id, date, description, system_kind, system_year, created_at
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, notFound(err, "transaction "+id)
	}

	var postings []postingRow
	err = sqlx.SelectContext(ctx, q.ext, &postings,
		`SELECT id, transaction_id, account_id, amount, is_debit, line_no
		FROM postings WHERE transaction_id = ? ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("loading postings of %s: %w", id, err)
	}

	txn := row.toModel()
	for _, p := range postings {
		txn.Postings = append(txn.Postings, p.toModel())
	}
	return &txn, nil
}

// ListTransactions returns the user's transactions dated in [start, end),
// ordered by date then creation.
func (q *queries) ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error) {
	start, end = start.UTC(), end.UTC()

	var rows []transactionRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		`SELECT id, user_id, date, description, system_kind, system_year, created_at
		FROM transactions
		WHERE user_id = ? AND date >= ? AND date < ?
		ORDER BY date, created_at, id`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var postings []postingRow
	err = sqlx.SelectContext(ctx, q.ext, &postings,
		`SELECT p.id, p.transaction_id, p.account_id, p.amount, p.is_debit, p.line_no
		FROM postings p
		JOIN transactions t ON t.id = p.transaction_id
		WHERE t.user_id = ? AND t.date >= ? AND t.date < ?
		ORDER BY p.transaction_id, p.line_no`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}

	byTxn := make(map[string][]model.Posting, len(rows))
	for _, p := range postings {
		byTxn[p.TransactionID] = append(byTxn[p.TransactionID], p.toModel())
	}

	txns := make([]model.Transaction, len(rows))
	for i, r := range rows {
		txns[i] = r.toModel()
		txns[i].Postings = byTxn[r.ID]
	}
	return txns, nil
}

// ReplaceTransaction updates the header and swaps in the new postings.
func (q *queries) ReplaceTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := q.requireTransaction(ctx, txn.UserID, txn.ID); err != nil {
		return err
	}

	txn.Date = model.Day(txn.Date)
	kind, year := systemMarker(txn)
	if _, err := q.ext.ExecContext(ctx,
		`UPDATE transactions SET date = ?, description = ?, system_kind = ?, system_year = ? WHERE id = ? AND user_id = ?`,
		txn.Date, txn.Description, kind, year, txn.ID, txn.UserID); err != nil {
		if isUniqueViolation(err) && txn.IsSystem() {
			return fmt.Errorf("updating %s transaction for %d: %w", txn.SystemKind, txn.SystemYear, ErrDuplicateSystemEntry)
		}
		return fmt.Errorf("updating transaction %s: %w", txn.ID, err)
	}
	if _, err := q.ext.ExecContext(ctx, `DELETE FROM postings WHERE transaction_id = ?`, txn.ID); err != nil {
		return fmt.Errorf("clearing postings of %s: %w", txn.ID, err)
	}
	for i := range txn.Postings {
		txn.Postings[i].ID = ""
	}
	return q.insertPostings(ctx, txn)
}

// DeleteTransaction removes the transaction and its postings.
func (q *queries) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := q.requireTransaction(ctx, userID, id); err != nil {
		return err
	}
	if _, err := q.ext.ExecContext(ctx, `DELETE FROM postings WHERE transaction_id = ?`, id); err != nil {
		return fmt.Errorf("deleting postings of %s: %w", id, err)
	}
	if _, err := q.ext.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return nil
}

func (q *queries) requireTransaction(ctx context.Context, userID, id string) error {
	var found string
	err := sqlx.GetContext(ctx, q.ext, &found,
		`SELECT id FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return notFound(err, "transaction "+id)
	}
	return nil
}

// GetSystemTransaction returns the generated transaction of a kind for a year.
func (q *queries) GetSystemTransaction(ctx context.Context, userID string, kind model.SystemKind, year int) (*model.Transaction, error) {
	var id string
	err := sqlx.GetContext(ctx, q.ext, &id,
		`SELECT id FROM transactions WHERE user_id = ? AND system_kind = ? AND system_year = ?`,
		userID, string(kind), year)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("%s transaction for %d", kind, year))
	}
	return q.GetTransaction(ctx, userID, id)
}

// ListOpeningBalances returns the opening balances recorded for a year.
func (q *queries) ListOpeningBalances(ctx context.Context, userID string, year int) ([]model.OpeningBalance, error) {
	var rows []openingBalanceRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		`SELECT id, user_id, year, account_id, amount, is_debit
		FROM opening_balances WHERE user_id = ? AND year = ? ORDER BY account_id`, userID, year)
	if err != nil {
		return nil, fmt.Errorf("listing opening balances for %d: %w", year, err)
	}
	obs := make([]model.OpeningBalance, len(rows))
	for i, r := range rows {
		obs[i] = model.OpeningBalance(r)
	}
	return obs, nil
}

// UpsertOpeningBalance writes the balance, replacing any existing row for
// the same (user, year, account).
func (q *queries) UpsertOpeningBalance(ctx context.Context, ob *model.OpeningBalance) error {
	if ob.ID == "" {
		ob.ID = uuid.NewString()
	}

	stmt := `INSERT INTO opening_balances (id, user_id, year, account_id, amount, is_debit)
		VALUES (:id, :user_id, :year, :account_id, :amount, :is_debit)
		ON CONFLICT (user_id, year, account_id) DO UPDATE SET amount = excluded.amount, is_debit = excluded.is_debit`
	if q.driver == DriverMySQL {
		stmt = `INSERT INTO opening_balances (id, user_id, year, account_id, amount, is_debit)
		VALUES (:id, :user_id, :year, :account_id, :amount, :is_debit)
		ON DUPLICATE KEY UPDATE amount = VALUES(amount), is_debit = VALUES(is_debit)`
	}

	if _, err := sqlx.NamedExecContext(ctx, q.ext, stmt, openingBalanceRow(*ob)); err != nil {
		return fmt.Errorf("writing opening balance for %s/%d: %w", ob.AccountID, ob.Year, err)
	}
	return nil
}

// DeleteOpeningBalances removes every opening balance of the user for a year.
func (q *queries) DeleteOpeningBalances(ctx context.Context, userID string, year int) error {
	if _, err := q.ext.ExecContext(ctx,
		`DELETE FROM opening_balances WHERE user_id = ? AND year = ?`, userID, year); err != nil {
		return fmt.Errorf("deleting opening balances for %d: %w", year, err)
	}
	return nil
}

// CreateFixedAsset inserts a fixed asset.
func (q *queries) CreateFixedAsset(ctx context.Context, asset *model.FixedAsset) error {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
	}
	if asset.DepreciationType == "" {
		asset.DepreciationType = model.DepreciationStraightLine
	}
	asset.AcquisitionDate = model.Day(asset.AcquisitionDate)

	row := fixedAssetRow{
		ID:               asset.ID,
		UserID:           asset.UserID,
		Name:             asset.Name,
		AcquisitionDate:  asset.AcquisitionDate,
		AcquisitionCost:  asset.AcquisitionCost,
		UsefulLife:       asset.UsefulLife,
		DepreciationType: string(asset.DepreciationType),
		CreatedAt:        asset.CreatedAt,
	}
	_, err := sqlx.NamedExecContext(ctx, q.ext,
		`INSERT INTO fixed_assets (id, user_id, name, acquisition_date, acquisition_cost, useful_life, depreciation_type, created_at)
		VALUES (:id, :user_id, :name, :acquisition_date, :acquisition_cost, :useful_life, :depreciation_type, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("creating fixed asset %q: %w", asset.Name, err)
	}
	return nil
}

// ListFixedAssets returns the user's fixed assets by acquisition date.
func (q *queries) ListFixedAssets(ctx context.Context, userID string) ([]model.FixedAsset, error) {
	var rows []fixedAssetRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		`SELECT id, user_id, name, acquisition_date, acquisition_cost, useful_life, depreciation_type, created_at
		FROM fixed_assets WHERE user_id = ? ORDER BY acquisition_date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing fixed assets: %w", err)
	}
	assets := make([]model.FixedAsset, len(rows))
	for i, r := range rows {
		assets[i] = r.toModel()
	}
	return assets, nil
}
