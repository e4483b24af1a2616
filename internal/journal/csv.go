package journal

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aoiro-dev/aoiro/internal/common"
	"github.com/aoiro-dev/aoiro/internal/model"
	"github.com/aoiro-dev/aoiro/internal/service"
)

// Header is the CSV header for journal import and export.
const Header = "transaction,date,description,account,debit,credit"

const (
	numFields  = 6
	colTxn     = 0
	colDate    = 1
	colDesc    = 2
	colAccount = 3
	colDebit   = 4
	colCredit  = 5
)

// Line is one posting row of a journal CSV. Rows sharing Transaction form
// one journal entry.
type Line struct {
	Transaction string
	Date        string
	Description string
	Account     string // account name
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// ReadLines reads every row of a journal CSV.
func ReadLines(r io.Reader) ([]Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var lines []Line
	for i, rec := range records[1:] {
		line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines writes lines to w, including the header.
func WriteLines(w io.Writer, lines []Line) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, line := range lines {
		if err := cw.Write(MarshalLine(line)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts a Line to a CSV row.
func MarshalLine(line Line) []string {
	row := make([]string, numFields)
	row[colTxn] = line.Transaction
	row[colDate] = line.Date
	row[colDesc] = line.Description
	row[colAccount] = line.Account
	if !line.Debit.IsZero() {
		row[colDebit] = line.Debit.String()
	}
	if !line.Credit.IsZero() {
		row[colCredit] = line.Credit.String()
	}
	return row
}

// UnmarshalLine converts a CSV row to a Line.
func UnmarshalLine(record []string) (Line, error) {
	if len(record) != numFields {
		return Line{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	debit, err := parseAmount(record[colDebit])
	if err != nil {
		return Line{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
	}
	credit, err := parseAmount(record[colCredit])
	if err != nil {
		return Line{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
	}

	return Line{
		Transaction: strings.TrimSpace(record[colTxn]),
		Date:        strings.TrimSpace(record[colDate]),
		Description: record[colDesc],
		Account:     strings.TrimSpace(record[colAccount]),
		Debit:       debit,
		Credit:      credit,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

var maxYen = decimal.NewFromInt(1 << 53)

// yen converts a parsed amount to whole yen, rejecting fractions and
// negative values.
func yen(d decimal.Decimal) (int64, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %s", common.ErrValidation, d)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: fractional yen %s", common.ErrValidation, d)
	}
	if d.GreaterThan(maxYen) {
		return 0, fmt.Errorf("%w: amount %s out of range", common.ErrValidation, d)
	}
	return d.IntPart(), nil
}

// Drafts groups lines into drafts by their transaction key, in order of
// first appearance. Account names are resolved through byName.
func Drafts(lines []Line, byName map[string]string) ([]Draft, error) {
	var order []string
	groups := make(map[string][]int)
	for i, line := range lines {
		key := line.Transaction
		if key == "" {
			return nil, fmt.Errorf("row %d: %w: transaction key is required", i+2, common.ErrValidation)
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	drafts := make([]Draft, 0, len(order))
	for _, key := range order {
		var d Draft
		for _, i := range groups[key] {
			line := lines[i]
			row := i + 2

			if d.Date.IsZero() {
				date, err := model.ParseDate(line.Date)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w: invalid date %q", row, common.ErrValidation, line.Date)
				}
				d.Date = date
			} else if line.Date != "" && line.Date != d.Date.Format(model.DateLayout) {
				return nil, fmt.Errorf("row %d: %w: transaction %s has more than one date", row, common.ErrValidation, key)
			}
			if d.Description == "" {
				d.Description = strings.TrimSpace(line.Description)
			}

			accountID, ok := byName[line.Account]
			if !ok {
				return nil, fmt.Errorf("row %d: %w: unknown account %q", row, common.ErrValidation, line.Account)
			}

			hasDebit, hasCredit := !line.Debit.IsZero(), !line.Credit.IsZero()
			if hasDebit == hasCredit {
				return nil, fmt.Errorf("row %d: %w: row must have exactly one of debit or credit", row, common.ErrValidation)
			}
			amount, isDebit := line.Credit, false
			if hasDebit {
				amount, isDebit = line.Debit, true
			}
			n, err := yen(amount)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			d.Postings = append(d.Postings, DraftPosting{AccountID: accountID, Amount: n, IsDebit: isDebit})
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// ImportCSV creates one transaction per transaction key in the CSV. Either
// every transaction is stored or none is.
func (s *Service) ImportCSV(ctx context.Context, userID string, r io.Reader) (int, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return 0, err
	}

	count := 0
	err = s.store.InTx(ctx, func(q service.Queries) error {
		accts, err := q.ListAccounts(ctx, userID)
		if err != nil {
			return err
		}
		byName := make(map[string]string, len(accts))
		for _, a := range accts {
			byName[a.Name] = a.ID
		}

		drafts, err := Drafts(lines, byName)
		if err != nil {
			return err
		}
		for i, d := range drafts {
			if _, err := create(ctx, q, userID, d); err != nil {
				return fmt.Errorf("transaction %d: %w", i+1, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "transactions": count, "rows": len(lines)}).Info("imported journal")
	return count, nil
}

// ExportCSV writes every transaction of a fiscal year as journal CSV rows.
func (s *Service) ExportCSV(ctx context.Context, userID string, year int, w io.Writer) error {
	txns, err := s.ListYear(ctx, userID, year)
	if err != nil {
		return err
	}
	accts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(accts))
	for _, a := range accts {
		names[a.ID] = a.Name
	}

	var lines []Line
	for _, txn := range txns {
		for _, p := range txn.Postings {
			line := Line{
				Transaction: txn.ID,
				Date:        txn.Date.Format(model.DateLayout),
				Description: txn.Description,
				Account:     names[p.AccountID],
			}
			if p.IsDebit {
				line.Debit = decimal.NewFromInt(p.Amount)
			} else {
				line.Credit = decimal.NewFromInt(p.Amount)
			}
			lines = append(lines, line)
		}
	}
	return WriteLines(w, lines)
}
