/*
context.go - Per-record derived figures

PURPOSE:
  Everything a rule needs that is not raw record data is computed once
  here: folded comparison fields, weekly hours (clamped), monthly day
  count, the guard flag, monthly night hours and the full-night
  classification. Rules then stay pure lookups over this context.

GUARD FLAG:
  An employee is a guard when all three hold:
    1. their site admits the full-guard regime
    2. the extras mention "full guardia" (spelling-tolerant)
    3. their periodicity-weighted worked-day count is at most 3
       (an alternate-week day counts 0.5)

FULL-NIGHT CLASSIFICATION:
  A schedule is fully nocturnal when more than 80% of worked days have
  night hours, every worked day is majority-nocturnal, and every block
  starts at 18:00 or later. Fully nocturnal schedules emit only the
  night flag, never the night-hours figure.
*/
package payroll

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clinsuite/payroll-engine/schedule"
)

var (
	fullGuardRE = regexp.MustCompile(`full\s*gu?a?rdia|gu?a?rdia\s*full`)
	pprRE       = regexp.MustCompile(`\bppr\b`)
)

var (
	decWeeksPerMonth = decimal.NewFromFloat(weeksPerMonth)
	decHalf          = decimal.NewFromFloat(0.5)
	maxWeeklyHours   = decimal.NewFromInt(168)
)

// ruleContext carries one record plus every derived figure the rules
// share. Built once per record by the engine.
type ruleContext struct {
	rec    *EmployeeRecord
	tables Tables

	// Folded comparison fields.
	role      string
	sector    string
	subsector string
	site      string
	category  string // folded with underscores restored: "fc_pfc"
	extras    string // all extras folded and joined

	summary      *schedule.Summary
	workedDays   map[int]bool
	weeklyHours  decimal.Decimal
	hoursClamped bool

	monthlyDays  int64
	guard        bool
	nightMonthly decimal.Decimal
	fullNight    bool
}

func newRuleContext(rec *EmployeeRecord, tables Tables) *ruleContext {
	ctx := &ruleContext{
		rec:       rec,
		tables:    tables,
		role:      schedule.Fold(rec.Personal.Role),
		sector:    schedule.Fold(rec.Personal.Sector.Principal),
		subsector: schedule.Fold(rec.Personal.Sector.Subsector),
		site:      schedule.Fold(rec.Personal.Site),
		category:  categoryKey(rec.Contract.Category),
		extras:    foldExtras(rec.Compensation.Extras),
	}

	ctx.summary = rec.Schedule.Summary
	if ctx.summary == nil {
		ctx.summary = schedule.Summarize(rec.Schedule.Blocks)
	}
	ctx.workedDays = ctx.summary.WorkedDaySet()

	ctx.weeklyHours = decimal.NewFromFloat(ctx.summary.TotalWeeklyHours).Round(2)
	if ctx.weeklyHours.IsNegative() || ctx.weeklyHours.GreaterThan(maxWeeklyHours) {
		ctx.weeklyHours = decimal.Zero
		ctx.hoursClamped = true
	}

	ctx.monthlyDays = computeMonthlyDays(ctx.summary)
	ctx.guard = tables.GuardSites[ctx.site] &&
		fullGuardRE.MatchString(ctx.extras) &&
		weightedWorkedDays(ctx.summary).LessThanOrEqual(decimal.NewFromInt(3))

	if !ctx.guard {
		ctx.nightMonthly = decimal.NewFromFloat(ctx.summary.TotalNightHours).
			Mul(decWeeksPerMonth)
	}
	ctx.fullNight = isFullNight(rec.Schedule.Blocks, ctx.summary)

	return ctx
}

// categoryKey folds a category but keeps its snake_case shape, so
// "FC_PFC" and "fc pfc" both resolve to "fc_pfc".
func categoryKey(raw string) string {
	return strings.ReplaceAll(schedule.Fold(raw), " ", "_")
}

func foldExtras(extras []string) string {
	folded := make([]string, 0, len(extras))
	for _, e := range extras {
		if f := schedule.Fold(e); f != "" {
			folded = append(folded, f)
		}
	}
	return strings.Join(folded, " | ")
}

// hasExtra reports whether any extra mentions the (folded) term.
func (c *ruleContext) hasExtra(terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(c.extras, t) {
			return true
		}
	}
	return false
}

// dayWeight is the recurrence weight of a worked day, taken from the
// day's first block: 0.5 for alternate weeks, the proportional share for
// monthly-Saturday style blocks, 1 otherwise.
func dayWeight(blocks []schedule.DayBlock) decimal.Decimal {
	if len(blocks) == 0 {
		return decimal.NewFromInt(1)
	}
	b := blocks[0]
	switch b.Periodicity {
	case schedule.Weekly:
		return decimal.NewFromInt(1)
	case schedule.Biweekly:
		return decHalf
	case schedule.Monthly:
		return decimal.NewFromFloat(0.25)
	case schedule.Proportional:
		if b.Duration > 0 {
			return decimal.NewFromFloat(b.WeeklyHours).
				Div(decimal.NewFromFloat(b.Duration))
		}
		return decimal.NewFromFloat(0.75)
	default:
		return decimal.NewFromInt(1)
	}
}

// computeMonthlyDays converts the weekly worked-day pattern into a
// monthly day count: sum of per-day recurrence weights x 4.33, rounded
// to the nearest whole day.
func computeMonthlyDays(s *schedule.Summary) int64 {
	sum := decimal.Zero
	for _, day := range s.DaysWorked {
		sum = sum.Add(dayWeight(s.PerDay[day]))
	}
	return sum.Mul(decWeeksPerMonth).Round(0).IntPart()
}

// weightedWorkedDays is the guard-eligibility day count: like
// computeMonthlyDays but without the monthly conversion, and alternate
// weeks are the only sub-unit weight that matters in practice.
func weightedWorkedDays(s *schedule.Summary) decimal.Decimal {
	sum := decimal.Zero
	for _, day := range s.DaysWorked {
		sum = sum.Add(dayWeight(s.PerDay[day]))
	}
	return sum
}

// isFullNight applies the three-part fully-nocturnal criterion.
func isFullNight(blocks []schedule.Block, s *schedule.Summary) bool {
	worked := len(s.DaysWorked)
	if worked == 0 || len(blocks) == 0 {
		return false
	}

	nightDays := 0
	majorityDays := 0
	for _, day := range s.DaysWorked {
		night, total := 0.0, 0.0
		for _, b := range s.PerDay[day] {
			night += b.NightHours
			total += b.Duration
		}
		if night > 0 {
			nightDays++
		}
		if total > 0 && night > total/2 {
			majorityDays++
		}
	}

	for _, b := range blocks {
		if b.Start < "18:00" {
			return false
		}
	}
	return 10*nightDays > 8*worked && majorityDays == worked
}
