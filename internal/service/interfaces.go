// Package service defines the persistence contract shared by the ledger services.
package service

import (
	"context"
	"time"

	"github.com/aoiro-dev/aoiro/internal/model"
)

// Queries is the set of reads and writes available both on the store and
// inside a storage transaction. Every call is scoped to one user; records
// owned by someone else behave as if they do not exist.
type Queries interface {
	// Account operations
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
	GetAccount(ctx context.Context, userID, id string) (*model.Account, error)
	// GetAccountByName returns common.ErrNotFound when no account has that name.
	GetAccountByName(ctx context.Context, userID, name string) (*model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	CountAccounts(ctx context.Context, userID string) (int, error)

	// Transaction operations. Postings are always loaded with their transaction.
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]model.Transaction, error)
	ReplaceTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
	GetSystemTransaction(ctx context.Context, userID string, kind model.SystemKind, year int) (*model.Transaction, error)

	// Opening balance operations
	ListOpeningBalances(ctx context.Context, userID string, year int) ([]model.OpeningBalance, error)
	UpsertOpeningBalance(ctx context.Context, ob *model.OpeningBalance) error
	DeleteOpeningBalances(ctx context.Context, userID string, year int) error

	// Fixed asset operations
	CreateFixedAsset(ctx context.Context, asset *model.FixedAsset) error
	ListFixedAssets(ctx context.Context, userID string) ([]model.FixedAsset, error)
}

// Storage is the persistence layer.
type Storage interface {
	Queries

	// InTx runs fn inside one storage transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Queries) error) error

	Migrate(ctx context.Context) error
	Close() error
}
