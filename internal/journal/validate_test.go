package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoiro-dev/aoiro/internal/common"
)

// mockAccounts implements AccountChecker for testing.
type mockAccounts struct {
	ids map[string]bool
}

func (m *mockAccounts) Exists(id string) bool {
	return m.ids[id]
}

func newMockAccounts(ids ...string) *mockAccounts {
	m := &mockAccounts{ids: make(map[string]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

var defaultAccounts = newMockAccounts("cash", "bank", "sales", "rent")

func rules(errs []ValidationError) []Rule {
	var out []Rule
	for _, e := range errs {
		out = append(out, e.Rule)
	}
	return out
}

func TestValidate_Balanced(t *testing.T) {
	d := Simple(date(2024, 1, 15), "売上", "cash", "sales", 30000)
	assert.Empty(t, Validate(d, defaultAccounts))
}

func TestValidate_SplitEntry(t *testing.T) {
	d := Draft{
		Date:        date(2024, 1, 15),
		Description: "家賃と手数料",
		Postings: []DraftPosting{
			{AccountID: "rent", Amount: 80000, IsDebit: true},
			{AccountID: "rent", Amount: 440, IsDebit: true},
			{AccountID: "bank", Amount: 80440},
		},
	}
	assert.Empty(t, Validate(d, defaultAccounts))
}

func TestValidate_Unbalanced(t *testing.T) {
	d := Draft{
		Date:        date(2024, 1, 15),
		Description: "ずれ",
		Postings: []DraftPosting{
			{AccountID: "cash", Amount: 100, IsDebit: true},
			{AccountID: "sales", Amount: 99},
		},
	}
	errs := Validate(d, defaultAccounts)
	require.Len(t, errs, 1)
	assert.Equal(t, RuleBalanced, errs[0].Rule)
	assert.Contains(t, errs[0].Error(), "debits (100) != credits (99)")

	err := asError(errs)
	assert.ErrorIs(t, err, common.ErrUnbalanced)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "借方と貸方の合計が一致しません", common.UserMessage(err))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  []Rule
	}{
		{
			name:  "missing date",
			draft: Simple(time.Time{}, "x", "cash", "sales", 1),
			want:  []Rule{RuleDate},
		},
		{
			name:  "blank description",
			draft: Simple(date(2024, 1, 1), "   ", "cash", "sales", 1),
			want:  []Rule{RuleDescription},
		},
		{
			name: "single posting",
			draft: Draft{Date: date(2024, 1, 1), Description: "x", Postings: []DraftPosting{
				{AccountID: "cash", Amount: 0, IsDebit: true},
			}},
			want: []Rule{RulePostings, RuleAmount},
		},
		{
			name:  "no postings",
			draft: Draft{Date: date(2024, 1, 1), Description: "x"},
			want:  []Rule{RulePostings},
		},
		{
			name:  "zero amount",
			draft: Simple(date(2024, 1, 1), "x", "cash", "sales", 0),
			want:  []Rule{RuleAmount, RuleAmount},
		},
		{
			name:  "unknown account",
			draft: Simple(date(2024, 1, 1), "x", "cash", "ghost", 10),
			want:  []Rule{RuleAccount},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.draft, defaultAccounts)
			assert.Equal(t, tt.want, rules(errs))

			err := asError(errs)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.NotErrorIs(t, err, common.ErrUnbalanced)
		})
	}
}

func TestValidationError_Format(t *testing.T) {
	assert.Equal(t, "date: date is required", ValidationError{Rule: RuleDate, Line: -1, Description: "date is required"}.Error())
	assert.Equal(t, "amount [line 2]: bad", ValidationError{Rule: RuleAmount, Line: 1, Description: "bad"}.Error())
}

func TestAsError_None(t *testing.T) {
	assert.NoError(t, asError(nil))
}
