package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/aoiro-dev/aoiro/internal/common"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in presentation order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// NormalBalanceIsDebit reports whether debits increase accounts of this type.
// ASSET and EXPENSE are debit-normal; LIABILITY, EQUITY and REVENUE are credit-normal.
func (t AccountType) NormalBalanceIsDebit() (bool, error) {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return true, nil
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", common.ErrUnknownAccountType, string(t))
	}
}

// Rank returns the position of t in AccountTypes, or len(AccountTypes) if unknown.
func (t AccountType) Rank() int {
	for i, at := range AccountTypes {
		if at == t {
			return i
		}
	}
	return len(AccountTypes)
}

// IsBalanceSheet reports whether the type carries over between fiscal years.
func (t AccountType) IsBalanceSheet() bool {
	return t == AccountTypeAsset || t == AccountTypeLiability || t == AccountTypeEquity
}

// Label returns the Japanese section heading for the type.
func (t AccountType) Label() string {
	switch t {
	case AccountTypeAsset:
		return "資産"
	case AccountTypeLiability:
		return "負債"
	case AccountTypeEquity:
		return "資本"
	case AccountTypeRevenue:
		return "収益"
	case AccountTypeExpense:
		return "費用"
	default:
		return string(t)
	}
}

// ParseAccountType validates a type name, accepting any letter case.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := t.NormalBalanceIsDebit(); err != nil {
		return "", err
	}
	return t, nil
}

// Account is a named bucket in a user's chart of accounts.
type Account struct {
	ID          string
	UserID      string
	Name        string
	Type        AccountType
	Description string
	CreatedAt   time.Time
}
