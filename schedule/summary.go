/*
summary.go - Weekly aggregation and night-hour accounting

PURPOSE:
  Folds a block list into the weekly Summary consumed by the payroll
  rules. Two pieces of math live here and nowhere else:

  DURATION:
    overnight  -> (24 - start) + end
    otherwise  -> end - start

  NIGHT OVERLAP:
    The night window is fixed at 22:00-06:00 and spans midnight, as can
    an overnight block. Both are mapped onto a 0..48h axis (a block
    ending "tomorrow" extends past 24) and the window appears three
    times on that axis: [0,6] (tail of the previous night), [22,30] and
    [46,54]. Night hours are the summed interval intersections; a block
    disjoint from the window contributes exactly zero.

WEIGHTING:
  Every figure carries the periodicity factor: a biweekly 8-hour shift
  contributes 4 weekly hours. Totals are additionally weighted by the
  number of days the block covers.

All arithmetic uses decimal.Decimal and rounds to two decimals only when
writing the Summary.
*/
package schedule

import (
	"sort"

	"github.com/shopspring/decimal"
)

// nightWindows is the 22:00-06:00 window unrolled onto the 0..48h axis,
// in minutes.
var nightWindows = [3][2]int{
	{0, 6 * 60},
	{22 * 60, 30 * 60},
	{46 * 60, 54 * 60},
}

var minutesPerHour = decimal.NewFromInt(60)

// Summarize aggregates blocks into a weekly Summary. An empty block list
// yields a zero summary with an empty (non-nil) PerDay map.
func Summarize(blocks []Block) *Summary {
	totalWeekly := decimal.Zero
	totalNight := decimal.Zero
	perDay := make(map[int][]DayBlock)
	hasNight := false

	for _, b := range blocks {
		start := minutesOf(b.Start)
		end := minutesOf(b.End)
		if b.Overnight {
			end += 24 * 60
		}

		duration := decimal.NewFromInt(int64(end - start)).Div(minutesPerHour)
		night := nightOverlap(start, end)
		factor := decimal.NewFromFloat(b.Periodicity.Factor)
		dayCount := decimal.NewFromInt(int64(len(b.Days)))

		for _, day := range b.Days {
			perDay[day] = append(perDay[day], DayBlock{
				Start:       b.Start,
				End:         b.End,
				Duration:    duration.Round(2).InexactFloat64(),
				NightHours:  night.Round(2).InexactFloat64(),
				Periodicity: b.Periodicity.Kind,
				WeeklyHours: duration.Mul(factor).Round(2).InexactFloat64(),
			})
		}

		totalWeekly = totalWeekly.Add(duration.Mul(dayCount).Mul(factor))
		totalNight = totalNight.Add(night.Mul(dayCount).Mul(factor))
		if night.IsPositive() {
			hasNight = true
		}
	}

	days := make([]int, 0, len(perDay))
	for d := range perDay {
		days = append(days, d)
	}
	sort.Ints(days)

	return &Summary{
		TotalWeeklyHours: totalWeekly.Round(2).InexactFloat64(),
		TotalNightHours:  totalNight.Round(2).InexactFloat64(),
		DaysWorked:       days,
		HasNight:         hasNight,
		HasWeekend:       perDay[Saturday] != nil || perDay[Sunday] != nil,
		PerDay:           perDay,
	}
}

// nightOverlap returns the hours of [start,end) minutes (0..48h axis)
// that fall inside the 22:00-06:00 window.
func nightOverlap(start, end int) decimal.Decimal {
	overlap := 0
	for _, w := range nightWindows {
		lo, hi := start, end
		if w[0] > lo {
			lo = w[0]
		}
		if w[1] < hi {
			hi = w[1]
		}
		if hi > lo {
			overlap += hi - lo
		}
	}
	return decimal.NewFromInt(int64(overlap)).Div(minutesPerHour)
}
