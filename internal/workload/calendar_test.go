package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-14 是周三
var wednesday = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

func TestBuildWeek_CurrentWeek(t *testing.T) {
	days := BuildWeek(wednesday, 0)
	require.Len(t, days, 7)

	assert.Equal(t, "2026-10-12", days[0].Key)
	assert.Equal(t, time.Monday, days[0].Date.Weekday())
	assert.Equal(t, "2026-10-18", days[6].Key)

	for i := 1; i < len(days); i++ {
		assert.Equal(t, 1, daysBetween(days[i-1].Date, days[i].Date))
	}

	todays := 0
	for i, day := range days {
		if day.IsToday {
			todays++
			assert.Equal(t, 2, i)
		}
		assert.Equal(t, i >= 5, day.IsWeekend)
	}
	assert.Equal(t, 1, todays)

	assert.Equal(t, "Wed", days[2].DayName)
	assert.Equal(t, "14", days[2].DateLabel)
}

func TestBuildWeek_Offsets(t *testing.T) {
	for _, offset := range []int{-53, -2, -1, 1, 2, 26} {
		days := BuildWeek(wednesday, offset)
		require.Len(t, days, 7)
		assert.Equal(t, time.Monday, days[0].Date.Weekday(), "offset %d", offset)
		assert.Equal(t, offset*7, daysBetween(BuildWeek(wednesday, 0)[0].Date, days[0].Date))
		for _, day := range days {
			assert.False(t, day.IsToday, "offset %d", offset)
		}
	}
}

func TestBuildWeek_SundayBelongsToPreviousMonday(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	days := BuildWeek(sunday, 0)

	assert.Equal(t, "2026-10-12", days[0].Key)
	assert.True(t, days[6].IsToday)
}

func TestBuildWeek_Idempotent(t *testing.T) {
	assert.Equal(t, BuildWeek(wednesday, 3), BuildWeek(wednesday, 3))
}

func TestBuildWeek_DaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("缺少时区数据")
	}

	// 2026-11-01 夏令时结束
	days := BuildWeek(time.Date(2026, 11, 4, 12, 0, 0, 0, loc), -1)
	for i, day := range days {
		assert.Equal(t, 0, day.Date.Hour(), "day %d", i)
	}
	assert.Equal(t, "2026-10-26", days[0].Key)
	assert.Equal(t, "2026-11-01", days[6].Key)
}

func TestWeekRangeLabel(t *testing.T) {
	assert.Equal(t, "Oct 12 - Oct 18, 2026", WeekRangeLabel(BuildWeek(wednesday, 0)))

	newYear := time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Dec 28, 2026 - Jan 3, 2027", WeekRangeLabel(BuildWeek(newYear, 0)))

	assert.Equal(t, "", WeekRangeLabel(nil))
}

func TestCapacity(t *testing.T) {
	c := Capacity{HoursPerDay: DefaultHoursPerDay}
	days := BuildWeek(wednesday, 0)

	assert.Equal(t, 7.0, c.ForDay(days[0]))
	assert.Equal(t, 0.0, c.ForDay(days[5]))
	assert.Equal(t, 0.0, c.ForDay(days[6]))
	assert.Equal(t, 35.0, c.Weekly(days))
}
