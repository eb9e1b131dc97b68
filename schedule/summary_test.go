package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsuite/payroll-engine/schedule"
)

func weeklyBlock(days []int, start, end string) schedule.Block {
	return schedule.Block{
		Days:        days,
		Start:       start,
		End:         end,
		Periodicity: schedule.Periodicity{Kind: schedule.Weekly, Factor: 1.0},
		Overnight:   end <= start,
	}
}

func TestSummarize_StandardWeek(t *testing.T) {
	// GIVEN: Monday-Friday 09:00-17:00
	// WHEN: summarizing
	// THEN: 40 weekly hours, no night or weekend work
	s := schedule.Summarize([]schedule.Block{
		weeklyBlock([]int{0, 1, 2, 3, 4}, "09:00", "17:00"),
	})

	assert.Equal(t, 40.0, s.TotalWeeklyHours)
	assert.Equal(t, 0.0, s.TotalNightHours)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.DaysWorked)
	assert.False(t, s.HasNight)
	assert.False(t, s.HasWeekend)
	require.Len(t, s.PerDay[0], 1)
	assert.Equal(t, 8.0, s.PerDay[0][0].Duration)
	assert.Equal(t, 8.0, s.PerDay[0][0].WeeklyHours)
}

func TestSummarize_FullyNocturnalShift(t *testing.T) {
	// GIVEN: Monday-Friday 22:00-06:00, entirely inside the night window
	// WHEN: summarizing
	// THEN: all 40 hours are night hours
	s := schedule.Summarize([]schedule.Block{
		weeklyBlock([]int{0, 1, 2, 3, 4}, "22:00", "06:00"),
	})

	assert.Equal(t, 40.0, s.TotalWeeklyHours)
	assert.Equal(t, 40.0, s.TotalNightHours)
	assert.True(t, s.HasNight)
	require.Len(t, s.PerDay[2], 1)
	assert.Equal(t, 8.0, s.PerDay[2][0].NightHours)
}

func TestSummarize_PartialNightOverlap(t *testing.T) {
	// GIVEN: an 18:00-02:00 shift (8h, of which 22:00-02:00 is night)
	// WHEN: summarizing a single day
	// THEN: 4 of the 8 hours count as night
	s := schedule.Summarize([]schedule.Block{
		weeklyBlock([]int{4}, "18:00", "02:00"),
	})

	assert.Equal(t, 8.0, s.TotalWeeklyHours)
	assert.Equal(t, 4.0, s.TotalNightHours)
	assert.True(t, s.HasNight)
}

func TestSummarize_MorningTailOfNightWindow(t *testing.T) {
	// GIVEN: a 05:00-09:00 shift touching the tail of the night window
	// WHEN: summarizing
	// THEN: exactly one hour (05:00-06:00) is nocturnal
	s := schedule.Summarize([]schedule.Block{
		weeklyBlock([]int{0}, "05:00", "09:00"),
	})

	assert.Equal(t, 4.0, s.TotalWeeklyHours)
	assert.Equal(t, 1.0, s.TotalNightHours)
}

func TestSummarize_DayShiftHasNoNightHours(t *testing.T) {
	// GIVEN: a shift disjoint from the 22:00-06:00 window
	// WHEN: summarizing
	// THEN: zero night hours and HasNight stays false
	s := schedule.Summarize([]schedule.Block{
		weeklyBlock([]int{0}, "09:00", "17:00"),
	})

	assert.Equal(t, 0.0, s.TotalNightHours)
	assert.False(t, s.HasNight)
}

func TestSummarize_PeriodicityWeighting(t *testing.T) {
	// GIVEN: a 12-hour Saturday worked once a month (factor 0.25)
	// WHEN: summarizing
	// THEN: it contributes 3 weekly hours but the day entry keeps the full
	// 12-hour duration
	s := schedule.Summarize([]schedule.Block{
		{
			Days:        []int{5},
			Start:       "07:00",
			End:         "19:00",
			Periodicity: schedule.Periodicity{Kind: schedule.Proportional, Factor: 0.25},
		},
	})

	assert.Equal(t, 3.0, s.TotalWeeklyHours)
	assert.True(t, s.HasWeekend)
	require.Len(t, s.PerDay[5], 1)
	assert.Equal(t, 12.0, s.PerDay[5][0].Duration)
	assert.Equal(t, 3.0, s.PerDay[5][0].WeeklyHours)
}

func TestSummarize_EndToEnd(t *testing.T) {
	p := schedule.DefaultParser()

	// GIVEN: the combined weekday-plus-monthly-Saturday schedule
	// WHEN: parsing and summarizing
	// THEN: 5x8 + 12x0.25 = 43 weekly hours across six worked days
	s := schedule.Summarize(p.Parse("lunes a viernes de 12 a 20 y 1 sabado al mes de 7 a 19"))

	assert.Equal(t, 43.0, s.TotalWeeklyHours)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, s.DaysWorked)
	assert.True(t, s.HasWeekend)
	assert.False(t, s.HasNight)
}

func TestSummarize_Empty(t *testing.T) {
	// GIVEN: no blocks (unparseable schedule)
	// WHEN: summarizing
	// THEN: a zero summary with a non-nil, empty per-day map
	s := schedule.Summarize(nil)

	assert.Equal(t, 0.0, s.TotalWeeklyHours)
	assert.Empty(t, s.DaysWorked)
	assert.NotNil(t, s.PerDay)
	assert.Empty(t, s.PerDay)
}
