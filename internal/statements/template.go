// Package statements composes the blue-return income statement and balance sheet.
package statements

import (
	"fmt"
)

// SlotKind says how a slot's amount is produced.
type SlotKind int

const (
	// SlotLookup sums the balances of named accounts. Missing accounts count as zero.
	SlotLookup SlotKind = iota
	// SlotSum adds or subtracts earlier slots.
	SlotSum
	// SlotConstant is a fixed amount.
	SlotConstant
)

// Term references an earlier slot with a sign of +1 or -1.
type Term struct {
	Slot int
	Sign int
}

// Plus adds an earlier slot.
func Plus(slot int) Term { return Term{Slot: slot, Sign: 1} }

// Minus subtracts an earlier slot.
func Minus(slot int) Term { return Term{Slot: slot, Sign: -1} }

// Slot is one numbered line of a statement template.
type Slot struct {
	No       int
	Label    string
	Kind     SlotKind
	Accounts []string // SlotLookup
	Terms    []Term   // SlotSum
	Value    int64    // SlotConstant
}

// Template is an ordered list of slots. A SlotSum may only reference slots
// listed before it.
type Template []Slot

// Validate checks slot numbers are unique and every sum refers backwards.
func (t Template) Validate() error {
	seen := make(map[int]bool, len(t))
	for _, s := range t {
		if s.No <= 0 {
			return fmt.Errorf("slot %q has invalid number %d", s.Label, s.No)
		}
		if seen[s.No] {
			return fmt.Errorf("duplicate slot %d", s.No)
		}
		switch s.Kind {
		case SlotLookup, SlotConstant:
		case SlotSum:
			for _, term := range s.Terms {
				if !seen[term.Slot] {
					return fmt.Errorf("slot %d refers to slot %d before it is defined", s.No, term.Slot)
				}
				if term.Sign != 1 && term.Sign != -1 {
					return fmt.Errorf("slot %d has invalid sign %d", s.No, term.Sign)
				}
			}
		default:
			return fmt.Errorf("slot %d has unknown kind %d", s.No, s.Kind)
		}
		seen[s.No] = true
	}
	return nil
}

// SpecialDeduction is the blue-return special deduction.
const SpecialDeduction int64 = 650000

// Income statement slot numbers referenced outside the template.
const (
	SlotRevenue         = 1
	SlotGrossProfit     = 7
	SlotExpenseTotal    = 32
	SlotOperatingIncome = 33
	SlotPreDeduction    = 43
	SlotDeduction       = 44
	SlotIncome          = 45
)

// expenseCategories are slots ⑧ to ㉔ in order.
var expenseCategories = []string{
	"租税公課",
	"荷造運賃",
	"水道光熱費",
	"旅費交通費",
	"通信費",
	"広告宣伝費",
	"接待交際費",
	"損害保険料",
	"修繕費",
	"消耗品費",
	"減価償却費",
	"福利厚生費",
	"給料賃金",
	"外注工賃",
	"利子割引料",
	"地代家賃",
	"貸倒金",
}

// BlueReturnTemplate returns the income statement layout of the blue-return
// filing. Slots ㉖ to ㉚ and ㉟, ㊱, ㊵, ㊶ are left unbound.
func BlueReturnTemplate() Template {
	t := Template{
		{No: 1, Label: "売上(収入)金額", Kind: SlotLookup, Accounts: []string{"売上高", "雑収入"}},
		{No: 2, Label: "期首商品棚卸高", Kind: SlotConstant},
		{No: 3, Label: "仕入金額", Kind: SlotLookup, Accounts: []string{"仕入高"}},
		{No: 4, Label: "小計", Kind: SlotSum, Terms: []Term{Plus(2), Plus(3)}},
		{No: 5, Label: "期末商品棚卸高", Kind: SlotConstant},
		{No: 6, Label: "差引原価", Kind: SlotSum, Terms: []Term{Plus(4), Minus(5)}},
		{No: 7, Label: "差引金額", Kind: SlotSum, Terms: []Term{Plus(1), Minus(6)}},
	}

	expenseTerms := make([]Term, 0, len(expenseCategories)+2)
	for i, name := range expenseCategories {
		no := 8 + i
		t = append(t, Slot{No: no, Label: name, Kind: SlotLookup, Accounts: []string{name}})
		expenseTerms = append(expenseTerms, Plus(no))
	}
	t = append(t,
		Slot{No: 25, Label: "支払手数料", Kind: SlotLookup, Accounts: []string{"支払手数料"}},
		Slot{No: 31, Label: "雑費", Kind: SlotLookup, Accounts: []string{"雑費"}},
	)
	expenseTerms = append(expenseTerms, Plus(25), Plus(31))

	t = append(t,
		Slot{No: 32, Label: "経費計", Kind: SlotSum, Terms: expenseTerms},
		Slot{No: 33, Label: "差引金額", Kind: SlotSum, Terms: []Term{Plus(7), Minus(32)}},
		Slot{No: 34, Label: "貸倒引当金(繰戻額)", Kind: SlotConstant},
		Slot{No: 37, Label: "繰戻額等 計", Kind: SlotSum, Terms: []Term{Plus(34)}},
		Slot{No: 38, Label: "専従者給与", Kind: SlotLookup, Accounts: []string{"専従者給与"}},
		Slot{No: 39, Label: "貸倒引当金(繰入額)", Kind: SlotConstant},
		Slot{No: 42, Label: "繰入額等 計", Kind: SlotSum, Terms: []Term{Plus(38), Plus(39)}},
		Slot{No: 43, Label: "青色申告特別控除前の所得金額", Kind: SlotSum, Terms: []Term{Plus(33), Plus(37), Minus(42)}},
		Slot{No: 44, Label: "青色申告特別控除額", Kind: SlotConstant, Value: SpecialDeduction},
		Slot{No: 45, Label: "所得金額", Kind: SlotSum, Terms: []Term{Plus(43), Minus(44)}},
	)
	return t
}

// Circled returns the circled numeral used on the filing form for slot no,
// or the plain number outside 1..50.
func Circled(no int) string {
	switch {
	case no >= 1 && no <= 20:
		return string(rune(0x2460 + no - 1))
	case no >= 21 && no <= 35:
		return string(rune(0x3251 + no - 21))
	case no >= 36 && no <= 50:
		return string(rune(0x32B1 + no - 36))
	default:
		return fmt.Sprintf("(%d)", no)
	}
}
