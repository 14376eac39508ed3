package workload

import (
	"testing"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardIDs(cards []UnscheduledOrderCard) []string {
	ids := make([]string, len(cards))
	for i, card := range cards {
		ids[i] = card.ID
	}
	return ids
}

func TestBuildQueue_ExcludesCompleted(t *testing.T) {
	orders := []*domain.WorkOrder{
		{ID: "open", Title: "Open", DueDate: "today"},
		{ID: "done", Title: "Done", DueDate: "today", IsCompleted: true},
	}

	queue := buildQueue(orders, nil, wednesday, StringHash, LegacyPriorityOrder)
	assert.Equal(t, []string{"open"}, cardIDs(queue))
}

func TestBuildQueue_FallbackLosesOnCollision(t *testing.T) {
	orders := []*domain.WorkOrder{
		{ID: "wo-1", Title: "Live", Priority: domain.PriorityHigh, DueDate: "in 2 days"},
	}
	fallback := []UnscheduledOrderCard{
		{ID: "wo-1", Title: "Stale", Priority: domain.PriorityLow, DaysUntil: 9, DueLabel: DueLabel(9)},
		{ID: "fb-1", Title: "Fallback", Priority: domain.PriorityLow, DaysUntil: 4, DueLabel: DueLabel(4)},
	}

	queue := buildQueue(orders, fallback, wednesday, StringHash, LegacyPriorityOrder)
	require.Len(t, queue, 2)
	assert.Equal(t, "Live", queue[0].Title)
	assert.Equal(t, "fb-1", queue[1].ID)
}

func TestBuildQueue_DueLabels(t *testing.T) {
	orders := []*domain.WorkOrder{
		{ID: "a", DueDate: "tomorrow"},
		{ID: "b", DueDate: "yesterday"},
		{ID: "c", DueDate: "in 4 days"},
		{ID: "d", DueDate: "2026-10-09"},
		{ID: "e", DueDate: "someday"},
	}

	queue := buildQueue(orders, nil, wednesday, constHash(25), LegacyPriorityOrder)
	byID := make(map[string]UnscheduledOrderCard)
	for _, card := range queue {
		byID[card.ID] = card
	}

	assert.Equal(t, 1, byID["a"].DaysUntil)
	assert.Equal(t, "Due tomorrow", byID["a"].DueLabel)
	assert.Equal(t, -1, byID["b"].DaysUntil)
	assert.Equal(t, "Overdue by 1 day", byID["b"].DueLabel)
	assert.Equal(t, "Due in 4 days", byID["c"].DueLabel)
	// 2026-10-09 零点距离 2026-10-14 15:30 约 -5.6 天
	assert.Equal(t, -6, byID["d"].DaysUntil)
	assert.Equal(t, 25%20-2, byID["e"].DaysUntil)
}

func TestBuildQueue_FallbackDaysRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		wo := &domain.WorkOrder{ID: string(rune('a'+i%26)) + string(rune('a'+i/26))}
		days := DaysUntilDue(wo, wednesday, StringHash)
		assert.GreaterOrEqual(t, days, -2)
		assert.LessOrEqual(t, days, 17)
	}
}

func TestLegacyPriorityOrder(t *testing.T) {
	cards := []UnscheduledOrderCard{
		{ID: "low-5", Priority: domain.PriorityLow, DaysUntil: 5},
		{ID: "high-5", Priority: domain.PriorityHigh, DaysUntil: 5},
		{ID: "low-overdue", Priority: domain.PriorityLow, DaysUntil: -2},
		{ID: "medium-1", Priority: domain.PriorityMedium, DaysUntil: 1},
		{ID: "high-2", Priority: domain.PriorityHigh, DaysUntil: 2},
		{ID: "daily-0", Priority: domain.PriorityDaily, DaysUntil: 0},
		{ID: "high-overdue", Priority: domain.PriorityHigh, DaysUntil: -1},
	}

	queue := buildQueue(nil, cards, wednesday, StringHash, LegacyPriorityOrder)

	assert.Equal(t, []string{
		"high-overdue",
		"low-overdue",
		"high-2",
		"high-5",
		// 非 High 的优先级按字典序：Daily < Low < Medium
		"daily-0",
		"low-5",
		"medium-1",
	}, cardIDs(queue))
}

func TestRankedPriorityOrder(t *testing.T) {
	cards := []UnscheduledOrderCard{
		{ID: "daily-0", Priority: domain.PriorityDaily, DaysUntil: 0},
		{ID: "low-5", Priority: domain.PriorityLow, DaysUntil: 5},
		{ID: "other-1", Priority: domain.Priority("Urgent"), DaysUntil: 1},
		{ID: "medium-1", Priority: domain.PriorityMedium, DaysUntil: 1},
		{ID: "low-overdue", Priority: domain.PriorityLow, DaysUntil: -2},
		{ID: "high-5", Priority: domain.PriorityHigh, DaysUntil: 5},
	}

	queue := buildQueue(nil, cards, wednesday, StringHash, RankedPriorityOrder)

	assert.Equal(t, []string{"low-overdue", "high-5", "medium-1", "low-5", "daily-0", "other-1"}, cardIDs(queue))
}

func TestOverdueAlwaysFirst(t *testing.T) {
	overdue := UnscheduledOrderCard{ID: "a", Priority: domain.PriorityLow, DaysUntil: -2}
	later := UnscheduledOrderCard{ID: "b", Priority: domain.PriorityHigh, DaysUntil: 5}

	for _, order := range []QueueOrder{LegacyPriorityOrder, RankedPriorityOrder} {
		assert.Negative(t, order(overdue, later))
		assert.Positive(t, order(later, overdue))
	}
}

func TestQueueOrderByName(t *testing.T) {
	for _, name := range []string{"", "legacy", "ranked"} {
		order, err := QueueOrderByName(name)
		require.NoError(t, err)
		assert.NotNil(t, order)
	}

	_, err := QueueOrderByName("alphabetical")
	assert.Error(t, err)
}
