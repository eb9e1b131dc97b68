/*
Package pipeline drives batch evaluation of employee records.

PURPOSE:
  The single entry point the CLI and the API share: take a record batch,
  fill in missing schedule parses, validate, evaluate, and return the
  variables together with run statistics and a per-employee audit trail.

KEY CONCEPTS:
  - Processor: immutable wiring of parser + engine + validator
  - Stats: the run counters the UI and the stored run row expose
  - RecordAudit: one human-readable line per employee for review

DESIGN PRINCIPLES:
  1. One bad record never aborts the batch: panics are contained per
     record and surface as an audit entry
  2. Input records are not mutated; schedule parses computed here live
     on copies
  3. Order in = order out, so results diff cleanly between runs
*/
package pipeline

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/schedule"
)

// Stats are the counters reported for a processing run.
type Stats struct {
	Total            int `json:"total"`
	Processed        int `json:"processed"`
	ParseErrors      int `json:"parse_errors"`
	ValidationErrors int `json:"validation_errors"`
	VariablesEmitted int `json:"variables_emitted"`
}

// RecordAudit is the per-employee review line.
type RecordAudit struct {
	Legajo      int     `json:"id_legajo"`
	Name        string  `json:"nombre"`
	WeeklyHours float64 `json:"horas_semanales"`
	Guard       bool    `json:"es_guardia"`
	Variables   int     `json:"variables"`
	Unparsed    bool    `json:"horario_no_interpretado"`
	Error       string  `json:"error,omitempty"`
}

// Result is the full outcome of one batch run.
type Result struct {
	Variables []payroll.VariableResult `json:"variables"`
	Stats     Stats                    `json:"estadisticas"`
	Audit     map[int]RecordAudit      `json:"auditoria"`
}

// Processor wires the schedule parser and the rule engine into a batch
// driver. Safe for concurrent use.
type Processor struct {
	parser   *schedule.Parser
	engine   *payroll.Engine
	validate *validator.Validate
	log      *zap.Logger
}

// New builds a Processor. A nil logger disables logging.
func New(parser *schedule.Parser, engine *payroll.Engine, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		parser:   parser,
		engine:   engine,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Process evaluates the batch. It returns early only on context
// cancellation; individual record failures are recorded and skipped.
func (p *Processor) Process(ctx context.Context, records []*payroll.EmployeeRecord) (*Result, error) {
	res := &Result{
		Stats: Stats{Total: len(records)},
		Audit: make(map[int]RecordAudit, len(records)),
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch aborted at record %d: %w", i, err)
		}
		p.processOne(res, i, rec)
	}

	p.log.Info("batch processed",
		zap.Int("total", res.Stats.Total),
		zap.Int("processed", res.Stats.Processed),
		zap.Int("parse_errors", res.Stats.ParseErrors),
		zap.Int("validation_errors", res.Stats.ValidationErrors),
		zap.Int("variables", res.Stats.VariablesEmitted))
	return res, nil
}

func (p *Processor) processOne(res *Result, i int, rec *payroll.EmployeeRecord) {
	if rec == nil {
		res.Stats.ValidationErrors++
		p.log.Warn("nil record in batch", zap.Int("index", i))
		return
	}

	audit := RecordAudit{Legajo: rec.Legajo, Name: rec.Personal.Name}

	if err := p.validate.Struct(rec); err != nil {
		res.Stats.ValidationErrors++
		audit.Error = err.Error()
		res.Audit[rec.Legajo] = audit
		p.log.Warn("record failed validation",
			zap.Int("legajo", rec.Legajo), zap.Error(err))
		return
	}

	prepared := p.withSchedule(rec)
	if prepared.Schedule.Summary != nil {
		audit.WeeklyHours = prepared.Schedule.Summary.TotalWeeklyHours
	}

	variables, err := p.evaluateSafe(prepared)
	if err != nil {
		res.Stats.ValidationErrors++
		audit.Error = err.Error()
		res.Audit[rec.Legajo] = audit
		return
	}

	if len(prepared.Schedule.Blocks) == 0 {
		res.Stats.ParseErrors++
		audit.Unparsed = true
	}
	res.Stats.Processed++
	res.Stats.VariablesEmitted += len(variables)
	res.Variables = append(res.Variables, variables...)

	audit.Guard = p.engine.IsGuard(prepared)
	audit.Variables = len(variables)
	res.Audit[rec.Legajo] = audit
}

// withSchedule returns the record with Blocks and Summary populated,
// parsing the original text when the ingest stage left them empty. The
// input record is never mutated.
func (p *Processor) withSchedule(rec *payroll.EmployeeRecord) *payroll.EmployeeRecord {
	if len(rec.Schedule.Blocks) > 0 && rec.Schedule.Summary != nil {
		return rec
	}
	out := *rec
	if len(out.Schedule.Blocks) == 0 {
		out.Schedule.Blocks = p.parser.Parse(out.Schedule.OriginalText)
	}
	out.Schedule.Summary = schedule.Summarize(out.Schedule.Blocks)
	return &out
}

// evaluateSafe contains rule panics so one pathological record cannot
// take down the batch.
func (p *Processor) evaluateSafe(rec *payroll.EmployeeRecord) (vars []payroll.VariableResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("evaluation panicked for legajo %d: %v", rec.Legajo, r)
			p.log.Error("evaluation panic",
				zap.Int("legajo", rec.Legajo), zap.Any("panic", r))
		}
	}()
	return p.engine.Evaluate(rec)
}
