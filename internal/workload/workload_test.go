package workload

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBaseline() Baseline {
	return Baseline{
		Technicians: []TechnicianSeed{
			{
				Name: "Sarah Johnson", Team: "Mechanical", Avatar: "SJ",
				Tasks: []SeedTask{
					{ID: "seed-1", Title: "Boiler inspection", EstimatedHours: 3, Priority: domain.PriorityHigh, Status: domain.StatusOpen, DayOffset: 0},
					{ID: "seed-2", Title: "Filter change", EstimatedHours: 1.5, Priority: domain.PriorityLow, Status: domain.StatusOpen, DayOffset: 0},
				},
			},
			{
				Name: "Mike Chen", Team: "Electrical",
				Tasks: []SeedTask{
					{ID: "seed-3", Title: "Panel audit", EstimatedHours: 8, Priority: domain.PriorityMedium, Status: domain.StatusInProgress, DayOffset: 4},
				},
			},
		},
		FallbackQueue: []UnscheduledOrderCard{
			{ID: "fb-1", Title: "Roof drain", Priority: domain.PriorityLow, Status: domain.StatusOpen, DaysUntil: 9, EstimatedHours: 2},
			{ID: "fb-2", Title: "Chiller leak", Priority: domain.PriorityHigh, Status: domain.StatusOpen, DaysUntil: -2, EstimatedHours: 4},
		},
	}
}

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	p, err := New(Options{Baseline: testBaseline()})
	require.NoError(t, err)
	return p
}

func findRow(t *testing.T, proj *Projection, name string) UserCapacityRow {
	t.Helper()
	for _, row := range proj.UserRows {
		if row.Name == name {
			return row
		}
	}
	require.FailNow(t, "row not found", name)
	return UserCapacityRow{}
}

func TestCompute_SingleUnassignedOrder(t *testing.T) {
	orders := []*domain.WorkOrder{
		{ID: "wo1", Title: "Fix pump", Priority: domain.PriorityHigh, Status: domain.StatusOpen, DueDate: "tomorrow"},
	}

	proj, err := Compute(orders, 0, wednesday)
	require.NoError(t, err)

	require.Len(t, proj.UnscheduledOrders, 1)
	card := proj.UnscheduledOrders[0]
	assert.Equal(t, "Due tomorrow", card.DueLabel)
	assert.Equal(t, 1, card.DaysUntil)
	assert.Contains(t, []float64{4.5, 5.0, 5.5}, card.EstimatedHours)

	require.Len(t, proj.UserRows, 1)
	row := proj.UserRows[0]
	assert.Equal(t, domain.UnassignedName, row.Name)

	thursday := row.Days[3]
	require.Len(t, thursday.Tasks, 1)
	assert.Equal(t, "wo1", thursday.Tasks[0].ID)
	assert.True(t, thursday.Tasks[0].IsFromWorkOrder)
	assert.True(t, thursday.Tasks[0].Locked)
	assert.Equal(t, card.EstimatedHours, thursday.AssignedHours)

	assert.Equal(t, SummaryCounts{DueSoon: 1, Open: 1, TotalUnscheduled: 1}, proj.SummaryCounts)
}

func TestCompute_OverbookedTechnician(t *testing.T) {
	weekdays := []string{"2026-10-12", "2026-10-13", "2026-10-14", "2026-10-15", "2026-10-16"}

	orders := make([]*domain.WorkOrder, 0, 100)
	for i := 0; i < 100; i++ {
		orders = append(orders, &domain.WorkOrder{
			ID:             fmt.Sprintf("wo-%d", i),
			Title:          "Overtime",
			Priority:       domain.PriorityMedium,
			Status:         domain.StatusOpen,
			DueDate:        weekdays[i%len(weekdays)],
			EstimatedHours: hours(10),
			AssignedTo:     &domain.Assignee{Name: "Alice"},
		})
	}

	proj, err := Compute(orders, 0, wednesday)
	require.NoError(t, err)

	row := findRow(t, proj, "Alice")
	assert.Equal(t, 1000.0, row.AssignedHours)
	assert.Equal(t, 35.0, row.WeeklyCapacity)
	assert.Equal(t, 100, row.Utilization)

	for i := 0; i < 5; i++ {
		day := row.Days[i]
		assert.Equal(t, 200.0, day.AssignedHours)
		assert.Equal(t, -193.0, day.HoursLeft)
		assert.Equal(t, 100, day.Utilization)
		assert.Len(t, day.Tasks, 20)
	}

	// 每日汇总不封顶
	assert.Greater(t, proj.DailyTotals[0].Utilization, 100)
	assert.Equal(t, 100, proj.AverageUtilization)
}

func TestCompute_EmptyOrdersWithBaseline(t *testing.T) {
	p := newTestPlanner(t)

	proj, err := p.Compute(nil, 0, wednesday)
	require.NoError(t, err)

	require.Len(t, proj.UserRows, 2)
	assert.Equal(t, "Sarah Johnson", proj.UserRows[0].Name)
	assert.Equal(t, "Mike Chen", proj.UserRows[1].Name)

	sarah := proj.UserRows[0]
	assert.Len(t, sarah.Days[0].Tasks, 2)
	assert.Equal(t, 4.5, sarah.Days[0].AssignedHours)
	assert.False(t, sarah.Days[0].Tasks[0].IsFromWorkOrder)
	assert.True(t, sarah.Days[0].Tasks[0].Locked)

	mike := proj.UserRows[1]
	assert.Equal(t, 8.0, mike.Days[4].AssignedHours)
	assert.Equal(t, -1.0, mike.Days[4].HoursLeft)
	assert.Equal(t, 100, mike.Days[4].Utilization)

	assert.Equal(t, []string{"fb-2", "fb-1"}, cardIDs(proj.UnscheduledOrders))
	assert.Equal(t, "Overdue by 2 days", proj.UnscheduledOrders[0].DueLabel)
	assert.Equal(t, "Due in 9 days", proj.UnscheduledOrders[1].DueLabel)

	assert.Equal(t, SummaryCounts{Overdue: 1, TotalUnscheduled: 2}, proj.SummaryCounts)
	assert.Equal(t, 70.0, proj.TotalCapacity)
	assert.Equal(t, 12.5, proj.TotalAssigned)
	assert.Equal(t, int(math.Round(12.5/70*100)), proj.AverageUtilization)
}

func TestCompute_EmptyEverything(t *testing.T) {
	proj, err := Compute([]*domain.WorkOrder{}, 0, wednesday)
	require.NoError(t, err)

	assert.Empty(t, proj.UserRows)
	assert.NotNil(t, proj.UnscheduledOrders)
	assert.Empty(t, proj.UnscheduledOrders)
	assert.Zero(t, proj.TotalCapacity)
	assert.Zero(t, proj.AverageUtilization)
	assert.Len(t, proj.DailyTotals, 7)
	assert.Len(t, proj.WeekDays, 7)
	assert.Equal(t, "Oct 12 - Oct 18, 2026", proj.WeekRangeLabel)
}

func TestCompute_MergesIntoBaselineRows(t *testing.T) {
	p := newTestPlanner(t)
	orders := []*domain.WorkOrder{
		{ID: "wo-a", Title: "Pump", DueDate: "2026-10-13", EstimatedHours: hours(2), AssignedTo: &domain.Assignee{Name: "Mike Chen", Avatar: "MC"}},
		{ID: "wo-b", Title: "Door", DueDate: "2026-10-13", EstimatedHours: hours(1), AssignedTo: &domain.Assignee{Name: "Zed", Team: "Facilities"}},
		{ID: "wo-c", Title: "Light", DueDate: "2026-10-14", EstimatedHours: hours(1)},
	}

	proj, err := p.Compute(orders, 0, wednesday)
	require.NoError(t, err)

	names := make([]string, len(proj.UserRows))
	for i, row := range proj.UserRows {
		names[i] = row.Name
	}
	assert.Equal(t, []string{"Sarah Johnson", "Mike Chen", "Zed", domain.UnassignedName}, names)

	mike := findRow(t, proj, "Mike Chen")
	assert.Equal(t, "Electrical", mike.Team)
	assert.Equal(t, "MC", mike.Avatar)
	assert.Equal(t, 2.0, mike.Days[1].AssignedHours)

	zed := findRow(t, proj, "Zed")
	assert.Equal(t, "Facilities", zed.Team)
}

func TestCompute_CompletedAndDeleted(t *testing.T) {
	orders := []*domain.WorkOrder{
		{ID: "done", DueDate: "today", Status: domain.StatusCompleted, IsCompleted: true, EstimatedHours: hours(2), AssignedTo: &domain.Assignee{Name: "Alice"}},
		{ID: "gone", DueDate: "today", Status: domain.StatusOpen, WasDeleted: true, EstimatedHours: hours(1), AssignedTo: &domain.Assignee{Name: "Alice"}},
		{ID: "gone-2", DueDate: "today", Status: domain.StatusOnHold, WasDeleted: true, EstimatedHours: hours(1), AssignedTo: &domain.Assignee{Name: "Alice"}},
	}

	proj, err := Compute(orders, 0, wednesday)
	require.NoError(t, err)

	alice := findRow(t, proj, "Alice")
	assert.Equal(t, 2, alice.PendingReschedules)
	// 已完成的工单仍然占用网格
	assert.Equal(t, 4.0, alice.Days[2].AssignedHours)

	assert.Equal(t, []string{"gone", "gone-2"}, cardIDs(proj.UnscheduledOrders))
	assert.Equal(t, 1, proj.SummaryCounts.Open)
	assert.Equal(t, 1, proj.SummaryCounts.OnHold)
	assert.Equal(t, 2, proj.SummaryCounts.TotalUnscheduled)
}

func TestCompute_CapacityInvariants(t *testing.T) {
	p := newTestPlanner(t)
	orders := []*domain.WorkOrder{
		{ID: "x1", Priority: domain.PriorityHigh, DueDate: "unknown", AssignedTo: &domain.Assignee{Name: "Sarah Johnson"}},
		{ID: "x2", Priority: domain.PriorityDaily, DueDate: "in 6 days", AssignedTo: &domain.Assignee{Name: "Sarah Johnson"}},
		{ID: "x3", Priority: domain.PriorityLow, DueDate: "2026-10-18"},
	}

	for _, offset := range []int{-3, 0, 2} {
		proj, err := p.Compute(orders, offset, wednesday)
		require.NoError(t, err)

		for _, row := range proj.UserRows {
			assert.Equal(t, 35.0, row.WeeklyCapacity)
			assert.GreaterOrEqual(t, row.Utilization, 0)
			assert.LessOrEqual(t, row.Utilization, 100)
			for i, day := range row.Days {
				assert.Equal(t, proj.WeekDays[i].Key, day.Key)
				if i >= 5 {
					assert.Zero(t, day.CapacityHours)
					assert.Equal(t, -day.AssignedHours, day.HoursLeft)
				} else {
					assert.Equal(t, 7.0, day.CapacityHours)
				}
				assert.GreaterOrEqual(t, day.Utilization, 0)
				assert.LessOrEqual(t, day.Utilization, 100)
			}
		}
		assert.Equal(t, 35.0*float64(len(proj.UserRows)), proj.TotalCapacity)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	p := newTestPlanner(t)
	orders := []*domain.WorkOrder{
		{ID: "a", Priority: domain.PriorityHigh, DueDate: "whenever"},
		{ID: "b", Priority: domain.PriorityMedium, DueDate: "in 2 days", AssignedTo: &domain.Assignee{Name: "Bob"}},
		{ID: "c", Priority: domain.PriorityLow, DueDate: "Oct 30, 2026"},
	}

	first, err := p.Compute(orders, 1, wednesday)
	require.NoError(t, err)
	second, err := p.Compute(orders, 1, wednesday)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	wo := &domain.WorkOrder{
		ID: "a", Title: "Pump", Priority: domain.PriorityHigh, DueDate: "tomorrow",
		AssignedTo: &domain.Assignee{Name: "Bob"},
	}
	before := *wo
	beforeAssignee := *wo.AssignedTo

	_, err := Compute([]*domain.WorkOrder{wo}, 0, wednesday)
	require.NoError(t, err)

	assert.Equal(t, before.ID, wo.ID)
	assert.Nil(t, wo.EstimatedHours)
	assert.Equal(t, before.DueDate, wo.DueDate)
	assert.Equal(t, beforeAssignee, *wo.AssignedTo)
}

func TestCompute_ConcurrentUse(t *testing.T) {
	p := newTestPlanner(t)
	orders := []*domain.WorkOrder{
		{ID: "a", Priority: domain.PriorityHigh, DueDate: "today", AssignedTo: &domain.Assignee{Name: "Mike Chen"}},
	}

	want, err := p.Compute(orders, 0, wednesday)
	require.NoError(t, err)

	results := make([]*Projection, 16)
	var wg conc.WaitGroup
	for i := range results {
		wg.Go(func() {
			proj, err := p.Compute(orders, 0, wednesday)
			if err == nil {
				results[i] = proj
			}
		})
	}
	wg.Wait()

	for _, proj := range results {
		assert.Equal(t, want, proj)
	}
}

func TestCompute_Errors(t *testing.T) {
	_, err := Compute([]*domain.WorkOrder{{ID: "a"}, nil}, 0, wednesday)
	assert.ErrorIs(t, err, ErrNilWorkOrder)

	_, err = Compute(nil, 0, time.Time{})
	assert.ErrorIs(t, err, ErrZeroReferenceDate)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{HoursPerDay: -1})
	assert.ErrorIs(t, err, ErrInvalidHoursPerDay)

	_, err = New(Options{HoursPerDay: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidHoursPerDay)

	_, err = New(Options{Baseline: Baseline{Technicians: []TechnicianSeed{{Name: ""}}}})
	assert.ErrorIs(t, err, ErrSeedName)

	_, err = New(Options{Baseline: Baseline{Technicians: []TechnicianSeed{
		{Name: "Bob", Tasks: []SeedTask{{ID: "s", DayOffset: 7}}},
	}}})
	assert.ErrorIs(t, err, ErrSeedDayOffset)
}

func TestNew_CustomHoursPerDay(t *testing.T) {
	p, err := New(Options{HoursPerDay: 8})
	require.NoError(t, err)

	proj, err := p.Compute([]*domain.WorkOrder{{ID: "a", DueDate: "today", EstimatedHours: hours(4)}}, 0, wednesday)
	require.NoError(t, err)

	row := proj.UserRows[0]
	assert.Equal(t, 40.0, row.WeeklyCapacity)
	assert.Equal(t, 50, row.Days[2].Utilization)
	assert.Equal(t, 10, row.Utilization)
}

func TestNew_CopiesBaseline(t *testing.T) {
	baseline := testBaseline()
	p, err := New(Options{Baseline: baseline})
	require.NoError(t, err)

	baseline.Technicians[0].Tasks[0].EstimatedHours = 100
	baseline.FallbackQueue[0].Title = "changed"

	proj, err := p.Compute(nil, 0, wednesday)
	require.NoError(t, err)
	assert.Equal(t, 4.5, proj.UserRows[0].Days[0].AssignedHours)
	assert.Equal(t, "Roof drain", proj.UnscheduledOrders[1].Title)
}
