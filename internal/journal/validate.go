package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/aoiro-dev/aoiro/internal/common"
)

// Rule names a journal validation rule.
type Rule string

const (
	RuleDate        Rule = "date"
	RuleDescription Rule = "description"
	RulePostings    Rule = "postings"
	RuleAmount      Rule = "amount"
	RuleAccount     Rule = "account"
	RuleBalanced    Rule = "balanced"
)

// ValidationError describes a single rule violation. Line is the posting
// index, or -1 when the whole entry is at fault.
type ValidationError struct {
	Rule        Rule
	Line        int
	Description string
}

func (e ValidationError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("%s: %s", e.Rule, e.Description)
	}
	return fmt.Sprintf("%s [line %d]: %s", e.Rule, e.Line+1, e.Description)
}

// AccountChecker tests whether an account ID exists in the user's chart.
type AccountChecker interface {
	Exists(id string) bool
}

// Draft is a journal entry before it is persisted.
type Draft struct {
	Date        time.Time
	Description string
	Postings    []DraftPosting
}

// DraftPosting is one side of a Draft.
type DraftPosting struct {
	AccountID string
	Amount    int64
	IsDebit   bool
}

// Simple builds a two-posting draft moving amount from credit to debit.
func Simple(date time.Time, description, debitAccount, creditAccount string, amount int64) Draft {
	return Draft{
		Date:        date,
		Description: description,
		Postings: []DraftPosting{
			{AccountID: debitAccount, Amount: amount, IsDebit: true},
			{AccountID: creditAccount, Amount: amount},
		},
	}
}

// Totals returns the debit and credit sums of the draft.
func (d Draft) Totals() (debit, credit int64) {
	for _, p := range d.Postings {
		if p.IsDebit {
			debit += p.Amount
		} else {
			credit += p.Amount
		}
	}
	return debit, credit
}

// Validate checks a draft before any write. It returns every violation
// found rather than stopping at the first.
func Validate(d Draft, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	if d.Date.IsZero() {
		errs = append(errs, ValidationError{Rule: RuleDate, Line: -1, Description: "date is required"})
	}
	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, ValidationError{Rule: RuleDescription, Line: -1, Description: "description is required"})
	}
	if len(d.Postings) < 2 {
		errs = append(errs, ValidationError{
			Rule:        RulePostings,
			Line:        -1,
			Description: fmt.Sprintf("need at least two postings, got %d", len(d.Postings)),
		})
	}

	for i, p := range d.Postings {
		if p.Amount <= 0 {
			errs = append(errs, ValidationError{
				Rule:        RuleAmount,
				Line:        i,
				Description: fmt.Sprintf("amount must be positive, got %d", p.Amount),
			})
		}
		if !accounts.Exists(p.AccountID) {
			errs = append(errs, ValidationError{
				Rule:        RuleAccount,
				Line:        i,
				Description: fmt.Sprintf("unknown account %q", p.AccountID),
			})
		}
	}

	debit, credit := d.Totals()
	if debit != credit {
		errs = append(errs, ValidationError{
			Rule:        RuleBalanced,
			Line:        -1,
			Description: fmt.Sprintf("debits (%d) != credits (%d)", debit, credit),
		})
	}

	return errs
}

// asError folds violations into one error. A draft whose only problem is
// an imbalance wraps common.ErrUnbalanced; anything else wraps
// common.ErrValidation.
func asError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	onlyBalance := true
	for i, ve := range errs {
		msgs[i] = ve.Error()
		if ve.Rule != RuleBalanced {
			onlyBalance = false
		}
	}

	sentinel := common.ErrValidation
	userMsg := "仕訳の内容に誤りがあります"
	if onlyBalance {
		sentinel = common.ErrUnbalanced
		userMsg = "借方と貸方の合計が一致しません"
	}
	return common.NewUserError(fmt.Errorf("%w: %s", sentinel, strings.Join(msgs, "; ")), userMsg)
}
