package accounts

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
)

const (
	numFields = 3
	colName   = 0
	colType   = 1
	colDesc   = 2
)

// Header is the header row of a chart-of-accounts CSV.
var Header = []string{"name", "type", "description"}

// ReadAccounts reads a chart-of-accounts CSV.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes a chart-of-accounts CSV.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	name := strings.TrimSpace(record[colName])
	if name == "" {
		return model.Account{}, fmt.Errorf("%w: empty account name", common.ErrValidation)
	}

	typ, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing type of %q: %w", name, err)
	}

	return model.Account{
		Name:        name,
		Type:        typ,
		Description: strings.TrimSpace(record[colDesc]),
	}, nil
}

// ImportCSV registers every account in the CSV that the user does not have
// yet. An existing account with the same name must have the same type. The
// import is all or nothing; it returns the number of accounts created.
func (r *Registry) ImportCSV(ctx context.Context, userID string, src io.Reader) (int, error) {
	accts, err := ReadAccounts(src)
	if err != nil {
		return 0, err
	}

	created := 0
	err = r.store.InTx(ctx, func(q service.Queries) error {
		for _, a := range accts {
			existing, err := q.GetAccountByName(ctx, userID, a.Name)
			if err == nil {
				if existing.Type != a.Type {
					return fmt.Errorf("%w: account %q exists as %s, not %s", common.ErrConflict, a.Name, existing.Type, a.Type)
				}
				continue
			}
			if !errors.Is(err, common.ErrNotFound) {
				return err
			}
			if _, err := register(ctx, q, userID, a.Name, a.Type, a.Description); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.WithFields(logrus.Fields{"user_id": userID, "created": created, "rows": len(accts)}).Info("imported accounts")
	return created, nil
}

// ExportCSV writes the user's chart of accounts in registry order.
func (r *Registry) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	accts, err := r.ListByType(ctx, userID)
	if err != nil {
		return err
	}
	return WriteAccounts(w, accts)
}
