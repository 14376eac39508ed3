package workload

import "github.com/WeBuildTech-AI/maintenance/backend/internal/domain"

type DayTotal struct {
	Key           string  `json:"key"`
	CapacityHours float64 `json:"capacityHours"`
	AssignedHours float64 `json:"assignedHours"`
	HoursLeft     float64 `json:"hoursLeft"`
	Utilization   int     `json:"utilization"`
}

type SummaryCounts struct {
	Overdue          int `json:"overdue"`
	DueSoon          int `json:"dueSoon"`
	Open             int `json:"open"`
	OnHold           int `json:"onHold"`
	InProgress       int `json:"inProgress"`
	TotalUnscheduled int `json:"totalUnscheduled"`
}

// dailyTotals 汇总所有技术员在每一天的容量和已分配工时
// 这里的利用率不封顶，超载会直接体现为超过 100
func dailyTotals(rows []UserCapacityRow, days []WeekDay) []DayTotal {
	totals := make([]DayTotal, len(days))

	for i, day := range days {
		capacityHours, assigned := 0.0, 0.0
		for _, row := range rows {
			capacityHours += row.Days[i].CapacityHours
			assigned += row.Days[i].AssignedHours
		}

		capacityHours = roundHours(capacityHours)
		assigned = roundHours(assigned)
		totals[i] = DayTotal{
			Key:           day.Key,
			CapacityHours: capacityHours,
			AssignedHours: assigned,
			HoursLeft:     roundHours(capacityHours - assigned),
			Utilization:   percent(assigned, capacityHours),
		}
	}

	return totals
}

// summarize 中过期和即将到期只看待排队列，状态计数看完整的工单列表
func summarize(queue []UnscheduledOrderCard, orders []*domain.WorkOrder) SummaryCounts {
	counts := SummaryCounts{TotalUnscheduled: len(queue)}

	for _, card := range queue {
		switch {
		case card.DaysUntil < 0:
			counts.Overdue++
		case card.DaysUntil <= 3:
			counts.DueSoon++
		}
	}

	for _, wo := range orders {
		switch wo.Status {
		case domain.StatusOpen:
			counts.Open++
		case domain.StatusOnHold:
			counts.OnHold++
		case domain.StatusInProgress:
			counts.InProgress++
		}
	}

	return counts
}
