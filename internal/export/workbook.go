// Package export writes a year's statements to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aoiro-dev/aoiro/internal/reports"
	"github.com/aoiro-dev/aoiro/internal/statements"
)

// Sheet names in the generated workbook.
const (
	SheetIncome       = "損益計算書"
	SheetBalanceSheet = "貸借対照表"
	SheetMonthly      = "月別"
)

// numFmtYen is the built-in "#,##0" format.
const numFmtYen = 3

type sheetWriter struct {
	f      *excelize.File
	name   string
	row    int
	header int
	amount int
}

func newSheetWriter(f *excelize.File, name string, headers ...string) (*sheetWriter, error) {
	if _, err := f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("creating sheet %s: %w", name, err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtYen})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, name: name, header: headerStyle, amount: amountStyle}
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := w.writeRow(headerRow...); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
		return nil, err
	}
	return w, nil
}

// writeRow appends one row. int64 values get the yen number format.
func (w *sheetWriter) writeRow(values ...any) error {
	w.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(w.name, cell, v); err != nil {
			return err
		}
		if _, ok := v.(int64); ok {
			if err := w.f.SetCellStyle(w.name, cell, cell, w.amount); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *sheetWriter) widths(widths ...float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// Workbook builds a workbook with the income statement, the balance sheet
// and, when monthly is not nil, the monthly table.
func Workbook(st *statements.Statements, monthly *reports.Monthly) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeIncome(f, st.Income); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeBalanceSheet(f, st.BalanceSheet); err != nil {
		f.Close()
		return nil, err
	}
	if monthly != nil {
		if err := writeMonthly(f, monthly); err != nil {
			f.Close()
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex(SheetIncome)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write builds the workbook and writes it to w as .xlsx.
func Write(w io.Writer, st *statements.Statements, monthly *reports.Monthly) error {
	f, err := Workbook(st, monthly)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeIncome(f *excelize.File, income *statements.IncomeStatement) error {
	w, err := newSheetWriter(f, SheetIncome, "番号", "科目", "金額")
	if err != nil {
		return err
	}
	for _, line := range income.Lines {
		if err := w.writeRow(statements.Circled(line.No), line.Label, line.Amount); err != nil {
			return err
		}
	}
	return w.widths(8, 36, 16)
}

func writeBalanceSheet(f *excelize.File, bs *statements.BalanceSheet) error {
	w, err := newSheetWriter(f, SheetBalanceSheet, "区分", "科目", "金額")
	if err != nil {
		return err
	}
	for _, sec := range []statements.Section{bs.Assets, bs.Liabilities, bs.Equity} {
		label := sec.Type.Label()
		for _, line := range sec.Lines {
			if err := w.writeRow(label, line.Name, line.Amount); err != nil {
				return err
			}
		}
		if err := w.writeRow(label, label+"合計", sec.Total); err != nil {
			return err
		}
	}
	if !bs.Balanced {
		if err := w.writeRow(statements.MismatchWarning, "差額", bs.Mismatch); err != nil {
			return err
		}
	}
	return w.widths(10, 24, 16)
}

func writeMonthly(f *excelize.File, m *reports.Monthly) error {
	w, err := newSheetWriter(f, SheetMonthly, "月", "売上(収入)金額", "経費", "差引")
	if err != nil {
		return err
	}
	for _, row := range m.Months {
		if err := w.writeRow(fmt.Sprintf("%d月", row.Month), row.Revenue, row.Expense, row.Profit()); err != nil {
			return err
		}
	}
	if err := w.writeRow("合計", m.Revenue, m.Expense, m.Profit()); err != nil {
		return err
	}
	return w.widths(8, 18, 18, 18)
}
