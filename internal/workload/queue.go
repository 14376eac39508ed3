package workload

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
)

type UnscheduledOrderCard struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	Priority       domain.Priority `json:"priority" yaml:"priority"`
	Status         domain.Status   `json:"status" yaml:"status"`
	DueLabel       string          `json:"dueLabel" yaml:"dueLabel,omitempty"`
	DaysUntil      int             `json:"daysUntil" yaml:"daysUntil"` // 负数表示已过期
	EstimatedHours float64         `json:"estimatedHours" yaml:"estimatedHours"`
	Asset          string          `json:"asset,omitempty" yaml:"asset,omitempty"`
	Location       string          `json:"location,omitempty" yaml:"location,omitempty"`
}

// QueueOrder 是待排工单的排序策略，返回值含义和 cmp.Compare 一致
type QueueOrder func(a, b UnscheduledOrderCard) int

// LegacyPriorityOrder 已过期的排在最前；同优先级按剩余天数升序；
// 不同优先级时 High 优先，其余按优先级名字的字典序比较
func LegacyPriorityOrder(a, b UnscheduledOrderCard) int {
	if c := compareOverdue(a, b); c != 0 {
		return c
	}

	if a.Priority == b.Priority {
		return cmp.Compare(a.DaysUntil, b.DaysUntil)
	}
	if a.Priority == domain.PriorityHigh {
		return -1
	}
	if b.Priority == domain.PriorityHigh {
		return 1
	}
	return strings.Compare(string(a.Priority), string(b.Priority))
}

var priorityRank = map[domain.Priority]int{
	domain.PriorityHigh:   0,
	domain.PriorityMedium: 1,
	domain.PriorityLow:    2,
	domain.PriorityDaily:  3,
}

// RankedPriorityOrder 给每个优先级一个明确的名次：High > Medium > Low > Daily > 其他
func RankedPriorityOrder(a, b UnscheduledOrderCard) int {
	if c := compareOverdue(a, b); c != 0 {
		return c
	}

	if c := cmp.Compare(rankOf(a.Priority), rankOf(b.Priority)); c != 0 {
		return c
	}
	return cmp.Compare(a.DaysUntil, b.DaysUntil)
}

// QueueOrderByName 用于从配置中选择排序策略
func QueueOrderByName(name string) (QueueOrder, error) {
	switch name {
	case "", "legacy":
		return LegacyPriorityOrder, nil
	case "ranked":
		return RankedPriorityOrder, nil
	}
	return nil, fmt.Errorf("未知的排序策略 %q", name)
}

func rankOf(p domain.Priority) int {
	if rank, ok := priorityRank[p]; ok {
		return rank
	}
	return len(priorityRank)
}

func compareOverdue(a, b UnscheduledOrderCard) int {
	aOverdue, bOverdue := a.DaysUntil < 0, b.DaysUntil < 0
	switch {
	case aOverdue && !bOverdue:
		return -1
	case !aOverdue && bOverdue:
		return 1
	}
	return 0
}

// DaysUntilDue 返回距离截止的天数，无法解析时落在 [-2, 17] 之间的确定值
func DaysUntilDue(wo *domain.WorkOrder, ref time.Time, hash Hasher) int {
	due := ParseDue(wo.DueDate, ref)
	if due.Kind == DueFallback {
		return int(hash(wo.ID+wo.DueDate)%20) - 2
	}
	return due.Days
}

func buildQueue(orders []*domain.WorkOrder, fallback []UnscheduledOrderCard, ref time.Time, hash Hasher, order QueueOrder) []UnscheduledOrderCard {
	queue := make([]UnscheduledOrderCard, 0, len(orders)+len(fallback))
	seen := make(map[string]bool)

	for i, wo := range orders {
		if wo.IsCompleted || seen[wo.ID] {
			continue
		}
		seen[wo.ID] = true

		days := DaysUntilDue(wo, ref, hash)
		queue = append(queue, UnscheduledOrderCard{
			ID:             wo.ID,
			Title:          wo.Title,
			Priority:       wo.Priority,
			Status:         wo.Status,
			DueLabel:       DueLabel(days),
			DaysUntil:      days,
			EstimatedHours: EstimateHours(wo, i, hash),
			Asset:          wo.Asset,
			Location:       wo.Location,
		})
	}

	// 固定的兜底卡片和真实工单 id 冲突时，以真实工单为准
	for _, card := range fallback {
		if seen[card.ID] {
			continue
		}
		seen[card.ID] = true
		queue = append(queue, card)
	}

	slices.SortStableFunc(queue, order)

	return queue
}
