/*
Package schedule turns free-text shift descriptions into structured weekly
schedules.

PURPOSE:
  Personnel files describe working hours as informal Spanish prose
  ("lunes a viernes de 9 a 17", "sadofe 8 a 20", "1 sabado al mes de 7 a
  19"). This package normalizes that text, extracts schedule blocks, and
  aggregates them into a weekly summary with night-hour accounting.

PIPELINE:
  raw text -> Normalize -> Parse -> []Block -> Summarize -> Summary

KEY CONCEPTS IN THIS FILE (types.go):
  - Block: one contiguous shift (days, start/end time, periodicity)
  - Periodicity: how often the block recurs relative to a standard week
  - Summary: per-day breakdown plus weekly/night totals
  - Day indices: 0=lunes .. 6=domingo, 7=feriado (holiday)

DESIGN PRINCIPLES:
  1. Best effort: the grammar is informal; unparseable text yields an
     empty block list, never an error or a guess
  2. Determinism: same input, same blocks, same ids
  3. Precision: hour totals computed with decimal.Decimal, rounded to
     two decimals at the boundary

SEE ALSO:
  - normalize.go: text cleanup and the equivalence table
  - parser.go: segment extraction and day-token resolution
  - summary.go: duration and night-window overlap math
*/
package schedule

// Day indices used throughout the system. Index 7 is not a weekday: it
// marks shifts worked on public holidays ("feriado").
const (
	Monday    = 0
	Tuesday   = 1
	Wednesday = 2
	Thursday  = 3
	Friday    = 4
	Saturday  = 5
	Sunday    = 6
	Holiday   = 7
)

// PeriodicityKind describes how often a block recurs. The wire values are
// the Spanish terms used by the upstream personnel system.
type PeriodicityKind string

const (
	Weekly       PeriodicityKind = "semanal"      // every week, factor 1.0
	Biweekly     PeriodicityKind = "quincenal"    // alternate weeks, factor 0.5
	Monthly      PeriodicityKind = "mensual"      // once a month, factor 0.25
	Proportional PeriodicityKind = "proporcional" // N weeks out of 4, factor N/4
)

// Periodicity is the recurrence of a block relative to a standard week.
// Factor is always in (0, 1]: 1.0 weekly, 0.5 biweekly, 0.25 monthly,
// k/4 for proportional markers ("sabados 2" = 2 Saturdays a month).
type Periodicity struct {
	Kind   PeriodicityKind `json:"tipo"`
	Factor float64         `json:"factor"`
}

// Block is one parsed schedule segment: a set of days with a start and
// end time. Times are zero-padded "HH:MM". Overnight is true exactly when
// End <= Start, meaning the shift crosses midnight.
type Block struct {
	ID          string      `json:"id"`
	Days        []int       `json:"dias_semana"`
	Start       string      `json:"hora_inicio"`
	End         string      `json:"hora_fin"`
	Periodicity Periodicity `json:"periodicidad"`
	Overnight   bool        `json:"cruza_dia,omitempty"`
	SourceText  string      `json:"original_text_segment"`
}

// DayBlock is the per-day view of a block inside a Summary. WeeklyHours
// already carries the periodicity factor (duration x factor).
type DayBlock struct {
	Start       string          `json:"inicio"`
	End         string          `json:"fin"`
	Duration    float64         `json:"duracion_total"`
	NightHours  float64         `json:"horas_nocturnas"`
	Periodicity PeriodicityKind `json:"periodicidad"`
	WeeklyHours float64         `json:"horas_semanales"`
}

// Summary aggregates a block list into the weekly figures the payroll
// rules consume.
//
// Invariants:
//   - TotalWeeklyHours equals the sum of WeeklyHours over all PerDay
//     entries, within two-decimal rounding
//   - DaysWorked is exactly the set of keys of PerDay
type Summary struct {
	TotalWeeklyHours float64            `json:"total_horas_semanales"`
	TotalNightHours  float64            `json:"total_horas_nocturnas"`
	DaysWorked       []int              `json:"dias_trabajo"`
	HasNight         bool               `json:"tiene_nocturnidad"`
	HasWeekend       bool               `json:"tiene_fin_semana"`
	PerDay           map[int][]DayBlock `json:"bloques_por_dia"`
}

// WorkedDaySet returns DaysWorked as a set for membership tests.
func (s *Summary) WorkedDaySet() map[int]bool {
	set := make(map[int]bool, len(s.DaysWorked))
	for _, d := range s.DaysWorked {
		set[d] = true
	}
	return set
}
