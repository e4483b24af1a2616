package accounts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
)

// Registry manages each user's chart of accounts.
type Registry struct {
	store service.Storage
	log   logrus.FieldLogger
}

// NewRegistry creates a Registry backed by store.
func NewRegistry(store service.Storage, log logrus.FieldLogger) *Registry {
	return &Registry{store: store, log: log}
}

// Register creates a new account. A name already in use fails with
// common.ErrDuplicateAccount.
func (r *Registry) Register(ctx context.Context, userID, name string, typ model.AccountType, description string) (*model.Account, error) {
	acct, err := register(ctx, r.store, userID, name, typ, description)
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{"user_id": userID, "account": acct.Name, "type": acct.Type}).Info("registered account")
	return acct, nil
}

func register(ctx context.Context, q service.Queries, userID, name string, typ model.AccountType, description string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewUserError(fmt.Errorf("%w: account name is required", common.ErrValidation), "勘定科目名を入力してください")
	}
	if _, err := typ.NormalBalanceIsDebit(); err != nil {
		return nil, err
	}

	existing, err := q.GetAccountByName(ctx, userID, name)
	switch {
	case err == nil:
		return nil, duplicate(existing.Name)
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	acct := &model.Account{
		UserID:      userID,
		Name:        name,
		Type:        typ,
		Description: strings.TrimSpace(description),
	}
	if err := q.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, common.ErrDuplicateAccount) {
			return nil, duplicate(name)
		}
		return nil, err
	}
	return acct, nil
}

func duplicate(name string) error {
	return common.NewUserError(
		fmt.Errorf("registering %q: %w", name, common.ErrDuplicateAccount),
		fmt.Sprintf("勘定科目「%s」は既に存在します", name),
	)
}

// FindOrCreate returns the account with name, creating it with typ and
// description when it does not exist yet.
func FindOrCreate(ctx context.Context, q service.Queries, userID, name string, typ model.AccountType, description string) (*model.Account, error) {
	acct, err := q.GetAccountByName(ctx, userID, name)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return register(ctx, q, userID, name, typ, description)
}

// Get returns one of the user's accounts.
func (r *Registry) Get(ctx context.Context, userID, id string) (*model.Account, error) {
	return r.store.GetAccount(ctx, userID, id)
}

// FindByName returns the user's account with the given name.
func (r *Registry) FindByName(ctx context.Context, userID, name string) (*model.Account, error) {
	return r.store.GetAccountByName(ctx, userID, strings.TrimSpace(name))
}

// ListByType returns the user's accounts ordered by type, then name.
func (r *Registry) ListByType(ctx context.Context, userID string) ([]model.Account, error) {
	accts, err := r.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortByType(accts)
	return accts, nil
}

// SortByType orders accounts ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE and
// by name within a type. Names compare bytewise.
func SortByType(accts []model.Account) {
	sort.SliceStable(accts, func(i, j int) bool {
		ri, rj := accts[i].Type.Rank(), accts[j].Type.Rank()
		if ri != rj {
			return ri < rj
		}
		return accts[i].Name < accts[j].Name
	})
}

// EnsureDefaults provisions DefaultChart for a user with no accounts and
// returns the number of accounts created.
func (r *Registry) EnsureDefaults(ctx context.Context, userID string) (int, error) {
	created := 0
	err := r.store.InTx(ctx, func(q service.Queries) error {
		n, err := q.CountAccounts(ctx, userID)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, a := range DefaultChart() {
			if _, err := register(ctx, q, userID, a.Name, a.Type, a.Description); err != nil {
				return fmt.Errorf("provisioning %s: %w", a.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		r.log.WithFields(logrus.Fields{"user_id": userID, "accounts": created}).Info("provisioned default chart")
	}
	return created, nil
}

// Index maps account IDs to accounts.
type Index map[string]model.Account

// NewIndex builds an Index over accts.
func NewIndex(accts []model.Account) Index {
	idx := make(Index, len(accts))
	for _, a := range accts {
		idx[a.ID] = a
	}
	return idx
}

// Exists reports whether an account ID is in the index.
func (idx Index) Exists(id string) bool {
	_, ok := idx[id]
	return ok
}
