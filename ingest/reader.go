/*
Package ingest reads personnel workbooks into employee records.

PURPOSE:
  The liquidation team receives one spreadsheet per cycle with a row per
  employee. This package locates the expected columns (tolerant of
  header spelling), normalizes the hand-typed fields and validates each
  row before it reaches the rule engine. Invalid rows are reported, not
  silently dropped.

ROW VALIDATION:
  - legajo must be a positive integer
  - sector and categoria must be present; categoria must resolve to a
    known code
  - fecha ingreso must parse
  - horario must contain at least one day token and a time range, and
    must not be an ambiguity marker ("variable", "a convenir")

SEE ALSO:
  - normalize.go: field canonicalization and value parsers
  - payroll/errors.go: the error types reported per row
*/
package ingest

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/schedule"
)

// Canonical column keys. Headers are folded before lookup, so these are
// the folded spellings.
const (
	colLegajo    = "legajo"
	colName      = "nombre completo"
	colSector    = "sector"
	colSubsector = "subsector"
	colRole      = "puesto"
	colSite      = "sede"
	colCategory  = "categoria"
	colModality  = "modalidad contratacion"
	colStart     = "fecha ingreso"
	colEnd       = "fecha de fin"
	colSchedule  = "horario completo"
	colSalary    = "sueldo bruto pactado"
	colExtras    = "adicionales"
)

// headerAliases folds alternate header spellings onto canonical keys.
var headerAliases = map[string]string{
	"nombre":            colName,
	"nombre y apellido": colName,
	"modalidad":         colModality,
	"fecha de ingreso":  colStart,
	"fecha fin":         colEnd,
	"horario":           colSchedule,
	"sueldo":            colSalary,
	"sueldo pactado":    colSalary,
}

var requiredColumns = []string{
	colLegajo, colSector, colCategory, colStart, colSchedule,
}

// Reader parses workbooks into employee records. The parser is only
// used to normalize schedule text for pre-validation; actual block
// extraction happens in the pipeline.
type Reader struct {
	parser *schedule.Parser
	log    *zap.Logger
}

// NewReader returns a Reader. A nil parser falls back to the built-in
// grammar; a nil logger disables logging.
func NewReader(parser *schedule.Parser, log *zap.Logger) *Reader {
	if parser == nil {
		parser = schedule.DefaultParser()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{parser: parser, log: log}
}

// ReadFile opens and parses a workbook from disk.
func (r *Reader) ReadFile(path string) ([]*payroll.EmployeeRecord, []*payroll.RecordValidationError, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return r.read(f)
}

// Read parses a workbook from a stream (the API upload path).
func (r *Reader) Read(src io.Reader) ([]*payroll.EmployeeRecord, []*payroll.RecordValidationError, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return r.read(f)
}

func (r *Reader) read(f *excelize.File) ([]*payroll.EmployeeRecord, []*payroll.RecordValidationError, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, payroll.ErrEmptyWorkbook
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var (
		records []*payroll.EmployeeRecord
		invalid []*payroll.RecordValidationError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		if emptyRow(row) {
			continue
		}
		rec, issues := r.parseRow(row, cols)
		if len(issues) > 0 {
			invalid = append(invalid, &payroll.RecordValidationError{
				Row: rowNum, Legajo: rec.Legajo, Issues: issues,
			})
			continue
		}
		records = append(records, rec)
	}

	r.log.Info("workbook ingested",
		zap.String("sheet", sheet),
		zap.Int("records", len(records)),
		zap.Int("invalid_rows", len(invalid)))
	return records, invalid, nil
}

// mapColumns resolves the header row into column indexes and checks the
// required set is present.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := schedule.Fold(h)
		if canonical, ok := headerAliases[key]; ok {
			key = canonical
		}
		if _, dup := cols[key]; !dup && key != "" {
			cols[key] = i
		}
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, &payroll.MissingColumnError{Column: required}
		}
	}
	return cols, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, cols map[string]int, key string) string {
	idx, ok := cols[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (r *Reader) parseRow(row []string, cols map[string]int) (*payroll.EmployeeRecord, []string) {
	var issues []string

	legajo, ok := parseLegajo(cell(row, cols, colLegajo))
	if !ok {
		issues = append(issues, "legajo invalido")
	}

	sector := cell(row, cols, colSector)
	if sector == "" {
		issues = append(issues, "sector vacio")
	}

	rawCategory := cell(row, cols, colCategory)
	category := NormalizeCategory(rawCategory)
	if category == "" {
		issues = append(issues, fmt.Sprintf("categoria no reconocida: %q", rawCategory))
	}

	start, ok := ParseDate(cell(row, cols, colStart))
	if !ok {
		issues = append(issues, "fecha de ingreso invalida")
	}
	end, _ := ParseDate(cell(row, cols, colEnd))

	scheduleText := cell(row, cols, colSchedule)
	issues = append(issues, validateScheduleText(r.parser.Normalize(scheduleText))...)

	var salary *float64
	if raw := cell(row, cols, colSalary); raw != "" {
		if v, ok := ParseSalary(raw); ok {
			salary = &v
		} else {
			r.log.Warn("unparseable salary, treated as absent",
				zap.Int("legajo", legajo), zap.String("sueldo", raw))
		}
	}

	rec := &payroll.EmployeeRecord{
		Legajo: legajo,
		Personal: payroll.PersonalData{
			Name: cell(row, cols, colName),
			Site: NormalizeSite(cell(row, cols, colSite)),
			Role: cell(row, cols, colRole),
			Sector: payroll.Sector{
				Principal: sector,
				Subsector: cell(row, cols, colSubsector),
			},
		},
		Contract: payroll.Contract{
			Modality: NormalizeModality(cell(row, cols, colModality)),
			Category: category,
			Dates:    payroll.ContractDates{Start: start, End: end},
		},
		Schedule: payroll.ScheduleInfo{OriginalText: scheduleText},
		Compensation: payroll.Compensation{
			BaseSalary: salary,
			Currency:   "ARS",
			Extras:     SplitExtras(cell(row, cols, colExtras)),
		},
	}
	return rec, issues
}

func parseLegajo(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	// Spreadsheets sometimes render integers as "1234.0".
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}

// =============================================================================
// SCHEDULE TEXT PRE-VALIDATION
// =============================================================================

var timeRangeRE = regexp.MustCompile(`\d{1,2}\s*[:.,]?\s*\d{0,2}\s*(?:a|-)\s*\d{1,2}`)

var ambiguousTerms = []string{"variable", "flexible", "rotativo", "a convenir"}

var scheduleDayTokens = map[string]bool{
	"lunes": true, "martes": true, "miercoles": true, "jueves": true,
	"viernes": true, "sabado": true, "sabados": true, "domingo": true,
	"domingos": true, "feriado": true, "feriados": true,
	"lun": true, "mar": true, "mie": true, "jue": true, "vie": true,
	"sab": true, "dom": true,
	"l": true, "m": true, "x": true, "j": true, "v": true, "s": true, "d": true,
	"sadofe": true, "safe": true, "dofe": true, "sxm": true, "dxm": true,
}

// validateScheduleText rejects rows whose schedule the parser has no
// chance with, so the error reads "fix the source" instead of a silent
// review marker downstream. The argument is the parser-normalized text.
func validateScheduleText(normalized string) []string {
	if normalized == "" {
		return []string{"horario vacio"}
	}
	for _, term := range ambiguousTerms {
		if strings.Contains(normalized, term) {
			return []string{fmt.Sprintf("horario ambiguo (%q)", term)}
		}
	}

	var issues []string
	if !timeRangeRE.MatchString(normalized) {
		issues = append(issues, "horario sin rango horario")
	}
	if !containsDayToken(normalized) {
		issues = append(issues, "horario sin dias reconocibles")
	}
	return issues
}

func containsDayToken(folded string) bool {
	for _, word := range strings.Fields(folded) {
		if scheduleDayTokens[word] {
			return true
		}
		for _, part := range strings.Split(word, "-") {
			if scheduleDayTokens[part] {
				return true
			}
		}
	}
	return false
}
