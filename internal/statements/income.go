package statements

import (
	"fmt"

	"github.com/aoiro-dev/aoiro/internal/ledger"
	"github.com/aoiro-dev/aoiro/internal/model"
)

// IncomeLine is one evaluated slot of the income statement.
type IncomeLine struct {
	No     int
	Label  string
	Amount int64
}

// IncomeStatement is a template evaluated against one year's balances.
type IncomeStatement struct {
	Lines []IncomeLine

	byNo map[int]int64
}

// Amount returns the value of slot no, or 0 if the template has no such slot.
func (s *IncomeStatement) Amount(no int) int64 {
	return s.byNo[no]
}

// Income is the final taxable income line.
func (s *IncomeStatement) Income() int64 {
	return s.Amount(SlotIncome)
}

// ComposeIncomeStatement evaluates tmpl slot by slot. Lookup slots sum the
// balances of the accounts with the listed names; names missing from accts
// contribute 0.
func ComposeIncomeStatement(tmpl Template, accts []model.Account, balances ledger.Balances) (*IncomeStatement, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid statement template: %w", err)
	}

	byName := make(map[string]int64, len(accts))
	for _, a := range accts {
		byName[a.Name] += balances[a.ID]
	}

	st := &IncomeStatement{
		Lines: make([]IncomeLine, 0, len(tmpl)),
		byNo:  make(map[int]int64, len(tmpl)),
	}
	for _, slot := range tmpl {
		var amount int64
		switch slot.Kind {
		case SlotLookup:
			for _, name := range slot.Accounts {
				amount += byName[name]
			}
		case SlotSum:
			for _, term := range slot.Terms {
				amount += int64(term.Sign) * st.byNo[term.Slot]
			}
		case SlotConstant:
			amount = slot.Value
		}
		st.byNo[slot.No] = amount
		st.Lines = append(st.Lines, IncomeLine{No: slot.No, Label: slot.Label, Amount: amount})
	}
	return st, nil
}
