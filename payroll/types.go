/*
Package payroll evaluates liquidation variables for employee records.

PURPOSE:
  Takes a structured employee record (personal data, contract, parsed
  schedule, compensation extras) and produces the set of payroll
  variables the liquidation system consumes: monthly hours, night-work
  figures, guard flags, reduction percentages and review markers.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeRecord: the full input record, one employee
  - VariableResult: one emitted (legajo, code, value) triple
  - VariableValue: numeric-or-text union; review markers carry text
  - Evaluation is pure: same record + same tables = same results

DESIGN PRINCIPLES:
  1. Rules never mutate the record; all derived figures live in the
     per-record evaluation context
  2. Money and hours are decimal.Decimal internally, rounded only when
     a value is emitted
  3. Text comparisons always go through schedule.Fold so accents and
     casing never change an outcome

SEE ALSO:
  - tables.go: the reference sets rules match against
  - context.go: per-record derived figures (weekly hours, guard flag)
  - rules.go: the individual variable rules
  - engine.go: fixed-order evaluation
*/
package payroll

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/clinsuite/payroll-engine/schedule"
)

// =============================================================================
// INPUT RECORD - wire shape shared with ingest, store and API
// =============================================================================

// EmployeeRecord is one employee as produced by the ingest stage. Field
// names follow the upstream personnel files.
type EmployeeRecord struct {
	Legajo       int          `json:"id_legajo" validate:"required,gt=0"`
	Personal     PersonalData `json:"datos_personales"`
	Contract     Contract     `json:"contratacion"`
	Schedule     ScheduleInfo `json:"horario"`
	Compensation Compensation `json:"remuneracion"`
}

// PersonalData identifies the employee and their placement.
type PersonalData struct {
	Name   string `json:"nombre"`
	Site   string `json:"sede"`
	Role   string `json:"puesto"`
	Sector Sector `json:"sector"`
}

// Sector is the organizational area, optionally with a sub-area.
type Sector struct {
	Principal string `json:"principal" validate:"required"`
	Subsector string `json:"subsector,omitempty"`
}

// Contract carries the hiring modality, category and date bounds.
// Category uses the normalized snake_case codes ("fc_pfc", "dc_1_adm").
type Contract struct {
	Modality string        `json:"tipo"`
	Category string        `json:"categoria" validate:"required"`
	Dates    ContractDates `json:"fechas"`
}

// ContractDates are ISO "2006-01-02" strings; End is empty for
// open-ended contracts.
type ContractDates struct {
	Start string `json:"ingreso"`
	End   string `json:"fin,omitempty"`
}

// ScheduleInfo keeps the original text next to its parsed form so audit
// output can always show what a block was derived from.
type ScheduleInfo struct {
	OriginalText string            `json:"texto_original"`
	Blocks       []schedule.Block  `json:"bloques"`
	Summary      *schedule.Summary `json:"resumen,omitempty"`
}

// Compensation holds the agreed gross salary (nil when not informed)
// and the free-text extras list the review rules scan.
type Compensation struct {
	BaseSalary *float64 `json:"sueldo_base"`
	Currency   string   `json:"moneda"`
	Extras     []string `json:"adicionables"`
}

// =============================================================================
// OUTPUT - emitted variables
// =============================================================================

// VariableResult is one emitted variable for one employee.
type VariableResult struct {
	Legajo int           `json:"id_legajo"`
	Code   int           `json:"codigo"`
	Value  VariableValue `json:"valor"`
}

// VariableValue is either a number or a review text, never both. Review
// markers (codes 7000+) and table mismatches carry text; everything else
// is numeric.
type VariableValue struct {
	Number decimal.Decimal
	Text   string
	IsText bool
}

// NumberValue wraps a decimal into a numeric VariableValue.
func NumberValue(d decimal.Decimal) VariableValue {
	return VariableValue{Number: d}
}

// IntValue wraps an integer into a numeric VariableValue.
func IntValue(n int64) VariableValue {
	return VariableValue{Number: decimal.NewFromInt(n)}
}

// TextValue wraps a review message into a textual VariableValue.
func TextValue(s string) VariableValue {
	return VariableValue{Text: s, IsText: true}
}

// String renders the value for logs and spreadsheets: numbers keep up to
// five decimals with trailing zeros trimmed, text passes through.
func (v VariableValue) String() string {
	if v.IsText {
		return v.Text
	}
	return v.Number.Round(5).String()
}

// MarshalJSON emits a JSON number or a JSON string depending on kind.
func (v VariableValue) MarshalJSON() ([]byte, error) {
	if v.IsText {
		return json.Marshal(v.Text)
	}
	return []byte(v.Number.Round(5).String()), nil
}

// UnmarshalJSON accepts both shapes produced by MarshalJSON.
func (v *VariableValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		v.IsText = true
		v.Number = decimal.Zero
		return json.Unmarshal(data, &v.Text)
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("variable value: %w", err)
	}
	*v = VariableValue{Number: d}
	return nil
}
