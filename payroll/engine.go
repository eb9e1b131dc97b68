/*
engine.go - Fixed-order variable evaluation

PURPOSE:
  Runs the rule list over one record. The engine owns the two
  cross-cutting behaviors rules must not know about:

  SHORT-CIRCUIT:
    A record whose schedule produced no blocks gets exactly one result,
    the unparseable-schedule review marker, and nothing else. Emitting
    hour figures derived from an uninterpreted schedule would be worse
    than emitting none.

  CLAMP WARNING:
    Weekly hours outside [0, 168] are zeroed in the context; the engine
    logs the anomaly so the source row can be fixed.

Evaluation is deterministic and safe for concurrent use: the engine is
immutable after construction and the context is per-call.
*/
package payroll

import "go.uber.org/zap"

// Engine evaluates the variable rules against employee records.
type Engine struct {
	tables Tables
	log    *zap.Logger
}

// NewEngine returns an engine over the given reference tables. A nil
// logger disables logging.
func NewEngine(tables Tables, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{tables: tables, log: log}
}

// Evaluate returns every variable that applies to the record, in the
// fixed catalog order.
func (e *Engine) Evaluate(rec *EmployeeRecord) ([]VariableResult, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}

	if len(rec.Schedule.Blocks) == 0 {
		e.log.Info("schedule not interpretable, emitting review marker only",
			zap.Int("legajo", rec.Legajo),
			zap.String("horario", rec.Schedule.OriginalText))
		return []VariableResult{{
			Legajo: rec.Legajo,
			Code:   CodeReviewVoluntary,
			Value:  TextValue(msgUnparsableSchedule),
		}}, nil
	}

	ctx := newRuleContext(rec, e.tables)
	if ctx.hoursClamped {
		e.log.Warn("weekly hours outside plausible range, clamped to zero",
			zap.Int("legajo", rec.Legajo),
			zap.Float64("horas", ctx.summary.TotalWeeklyHours))
	}

	var results []VariableResult
	for _, r := range orderedRules {
		results = append(results, r(ctx)...)
	}

	e.log.Debug("record evaluated",
		zap.Int("legajo", rec.Legajo),
		zap.Int("variables", len(results)),
		zap.Bool("guardia", ctx.guard))
	return results, nil
}

// IsGuard reports whether the record qualifies for the full-guard
// regime. Exposed for audit output.
func (e *Engine) IsGuard(rec *EmployeeRecord) bool {
	if rec == nil || len(rec.Schedule.Blocks) == 0 {
		return false
	}
	return newRuleContext(rec, e.tables).guard
}
