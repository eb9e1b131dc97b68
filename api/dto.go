/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:
  The JSON shapes the API exchanges with clients, kept separate from the
  domain types so wire changes never force domain changes. Field names
  follow the Spanish vocabulary the liquidation team uses everywhere
  else (legajo, bloques, filas_invalidas).

NAMING CONVENTION:
  - *Request:  payloads the client sends
  - *Response: payloads the server returns
  - *DTO:      embedded sub-shapes shared by several responses

SEE ALSO:
  - handlers.go: where these are populated and decoded
*/
package api

import (
	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/pipeline"
	"github.com/clinsuite/payroll-engine/schedule"
	"github.com/clinsuite/payroll-engine/store/sqlite"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// InvalidRowDTO reports one source row that never reached the engine.
type InvalidRowDTO struct {
	Row    int      `json:"fila"`
	Legajo int      `json:"id_legajo,omitempty"`
	Issues []string `json:"problemas"`
}

// UploadResponse is returned after a workbook is processed and stored.
type UploadResponse struct {
	Run         *sqlite.Run     `json:"run"`
	InvalidRows []InvalidRowDTO `json:"filas_invalidas,omitempty"`
}

// RunListResponse wraps the run history.
type RunListResponse struct {
	Runs []*sqlite.Run `json:"runs"`
}

// VariableDTO is one emitted variable, labeled for review screens.
type VariableDTO struct {
	Legajo      int                   `json:"id_legajo"`
	Code        int                   `json:"codigo"`
	Value       payroll.VariableValue `json:"valor"`
	Description string                `json:"descripcion,omitempty"`
}

// ResultsResponse carries a run's variables in emission order.
type ResultsResponse struct {
	RunID     string        `json:"run_id"`
	Variables []VariableDTO `json:"variables"`
}

// AuditResponse carries a run's per-employee review lines.
type AuditResponse struct {
	RunID string                       `json:"run_id"`
	Audit map[int]pipeline.RecordAudit `json:"auditoria"`
}

// ParseScheduleRequest asks for a single schedule text to be parsed.
type ParseScheduleRequest struct {
	Text string `json:"texto"`
}

// ParseScheduleResponse returns the parsed blocks and their weekly
// summary. Blocks is empty when the text could not be interpreted.
type ParseScheduleResponse struct {
	Blocks  []schedule.Block  `json:"bloques"`
	Summary *schedule.Summary `json:"resumen"`
}

// CatalogResponse lists every variable code the engine can emit.
type CatalogResponse struct {
	Variables []payroll.CatalogEntry `json:"variables"`
}

func invalidRowDTOs(invalid []*payroll.RecordValidationError) []InvalidRowDTO {
	if len(invalid) == 0 {
		return nil
	}
	rows := make([]InvalidRowDTO, 0, len(invalid))
	for _, e := range invalid {
		rows = append(rows, InvalidRowDTO{Row: e.Row, Legajo: e.Legajo, Issues: e.Issues})
	}
	return rows
}

func variableDTOs(results []payroll.VariableResult) []VariableDTO {
	dtos := make([]VariableDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, VariableDTO{
			Legajo:      r.Legajo,
			Code:        r.Code,
			Value:       r.Value,
			Description: payroll.Describe(r.Code),
		})
	}
	return dtos
}
