/*
Package export renders evaluation results as the liquidation workbook.

PURPOSE:
  The downstream system imports a three-column sheet: LEGAJO, CODIGO
  VARIABLE, VALOR. This package writes it with the formatting the
  liquidation team expects: styled header, comma decimal separator,
  trailing zeros trimmed.

SEE ALSO:
  - payroll/types.go: VariableResult and the numeric/text value union
*/
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/clinsuite/payroll-engine/payroll"
)

const (
	sheetName   = "Variables"
	headerFill  = "CCE5FF"
	maxDecimals = 5
)

var header = []interface{}{"LEGAJO", "CODIGO VARIABLE", "VALOR"}

// Writer renders result sets into workbooks.
type Writer struct {
	log *zap.Logger
}

// NewWriter returns a Writer. A nil logger disables logging.
func NewWriter(log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{log: log}
}

// Workbook builds the in-memory workbook for the given results,
// preserving their order.
func (w *Writer) Workbook(results []payroll.VariableResult) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if defaultSheet != sheetName {
		f.DeleteSheet(defaultSheet)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.styleHeader(f); err != nil {
		return nil, err
	}

	for i, r := range results {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []interface{}{r.Legajo, r.Code, FormatValue(r.Value)}
		if err := f.SetSheetRow(sheetName, cellRef, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	w.log.Info("results workbook built", zap.Int("rows", len(results)))
	return f, nil
}

// WriteTo streams the workbook (the API download path).
func (w *Writer) WriteTo(dst io.Writer, results []payroll.VariableResult) error {
	f, err := w.Workbook(results)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(dst); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook to disk (the CLI path).
func (w *Writer) WriteFile(path string, results []payroll.VariableResult) error {
	f, err := w.Workbook(results)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Writer) styleHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center", Vertical: "center",
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", "B", 18); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	return f.SetColWidth(sheetName, "C", "C", 42)
}

// FormatValue renders a value the way the liquidation import expects:
// text passes through, numbers use a comma decimal separator with up to
// five decimals and no trailing zeros.
func FormatValue(v payroll.VariableValue) string {
	if v.IsText {
		return v.Text
	}
	s := v.Number.StringFixed(maxDecimals)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return strings.ReplaceAll(s, ".", ",")
}
