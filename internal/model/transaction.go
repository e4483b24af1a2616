package model

import "time"

// SystemKind tags transactions the engine generates itself.
type SystemKind string

const (
	SystemKindNone         SystemKind = ""
	SystemKindDepreciation SystemKind = "depreciation"
)

// Transaction is a dated journal entry made of balanced postings.
type Transaction struct {
	ID          string
	UserID      string
	Date        time.Time
	Description string
	Postings    []Posting

	// SystemKind and SystemYear are set only on generated entries.
	SystemKind SystemKind
	SystemYear int

	CreatedAt time.Time
}

// Posting is one debit or credit line of a transaction.
type Posting struct {
	ID            string
	TransactionID string
	AccountID     string
	Amount        int64 // yen, always positive
	IsDebit       bool
	LineNo        int
}

// Totals returns the debit and credit sums of the transaction.
func (t Transaction) Totals() (debit, credit int64) {
	for _, p := range t.Postings {
		if p.IsDebit {
			debit += p.Amount
		} else {
			credit += p.Amount
		}
	}
	return debit, credit
}

// Touches reports whether any posting references accountID.
func (t Transaction) Touches(accountID string) bool {
	for _, p := range t.Postings {
		if p.AccountID == accountID {
			return true
		}
	}
	return false
}

// IsSystem reports whether the transaction was generated by the engine.
func (t Transaction) IsSystem() bool {
	return t.SystemKind != SystemKindNone
}

// OpeningBalance is the carried-forward position of an account at the start of a year.
type OpeningBalance struct {
	ID        string
	UserID    string
	Year      int
	AccountID string
	Amount    int64 // always >= 0
	IsDebit   bool
}

// DepreciationType names a depreciation method.
type DepreciationType string

// DepreciationStraightLine is the only supported method.
const DepreciationStraightLine DepreciationType = "STRAIGHT_LINE"

// FixedAsset is a depreciable asset held by the business.
type FixedAsset struct {
	ID               string
	UserID           string
	Name             string
	AcquisitionDate  time.Time
	AcquisitionCost  int64
	UsefulLife       int // years
	DepreciationType DepreciationType
	CreatedAt        time.Time
}
