package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDue(t *testing.T) {
	ref := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		kind DueKind
		days int
	}{
		{"today", DueToday, 0},
		{"  Tomorrow ", DueTomorrow, 1},
		{"YESTERDAY", DueYesterday, -1},
		{"in 3 days", DueRelative, 3},
		{"in 1 day", DueRelative, 1},
		{"In 12   days", DueRelative, 12},
		{"2026-10-20", DueAbsolute, 6},
		{"2026-10-10", DueAbsolute, -4},
		{"2026-10-15T00:00:00Z", DueAbsolute, 1},
		{"10/16/2026", DueAbsolute, 2},
		{"Oct 21, 2026", DueAbsolute, 7},
		{"", DueFallback, 0},
		{"next sprint", DueFallback, 0},
		{"in -2 days", DueFallback, 0},
		{"in 99999999999999999999 days", DueFallback, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res := ParseDue(tt.raw, ref)
			assert.Equal(t, tt.kind, res.Kind)
			if tt.kind != DueFallback {
				assert.Equal(t, tt.days, res.Days)
			}
		})
	}
}

func TestParseDue_RoundsPartialDays(t *testing.T) {
	ref := time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)

	// 相差 28 小时，四舍五入为 1 天
	assert.Equal(t, 1, ParseDue("2026-10-16", ref).Days)
}

func TestDueLabel(t *testing.T) {
	assert.Equal(t, "Due today", DueLabel(0))
	assert.Equal(t, "Due tomorrow", DueLabel(1))
	assert.Equal(t, "Due in 5 days", DueLabel(5))
	assert.Equal(t, "Overdue by 1 day", DueLabel(-1))
	assert.Equal(t, "Overdue by 3 days", DueLabel(-3))
}
