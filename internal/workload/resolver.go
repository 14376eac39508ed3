package workload

import (
	"math"
	"strconv"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
)

var priorityBaseHours = map[domain.Priority]float64{
	domain.PriorityHigh:   4.5,
	domain.PriorityDaily:  2.0,
	domain.PriorityLow:    2.5,
	domain.PriorityMedium: 3.5,
}

const defaultPriorityBaseHours = 3.0

// EstimateHours 优先使用工单自带的工时；没有的话按优先级给一个基础值，
// 再加上由 id 和序号决定的 0 / 0.5 / 1.0 的浮动
func EstimateHours(wo *domain.WorkOrder, index int, hash Hasher) float64 {
	if wo.EstimatedHours != nil {
		return *wo.EstimatedHours
	}

	base, ok := priorityBaseHours[wo.Priority]
	if !ok {
		base = defaultPriorityBaseHours
	}
	variance := float64(hash(wo.ID+strconv.Itoa(index))%3) * 0.5

	return roundHours(base + variance)
}

// ResolveDayIndex 决定工单落在本周的哪一天（0 为周一）
func ResolveDayIndex(wo *domain.WorkOrder, index int, days []WeekDay, ref time.Time, hash Hasher) int {
	last := len(days) - 1
	today := max(todayIndex(days), 0)

	due := ParseDue(wo.DueDate, ref)
	switch due.Kind {
	case DueAbsolute:
		// 不在本周范围内的日期和无法识别的文本一样走回退
		if offset := daysBetween(days[0].Date, due.Date); offset >= 0 && offset <= last {
			return offset
		}
	case DueToday:
		return today
	case DueTomorrow:
		return min(today+1, last)
	case DueYesterday:
		return max(today-1, 0)
	case DueRelative:
		return min(max(due.Days, 0), last)
	}

	return int(hash(wo.DueDate+wo.ID+strconv.Itoa(index)) % uint32(len(days)))
}

func roundHours(h float64) float64 {
	return math.Round(h*10) / 10
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}

// cappedPercent 用于技术员的利用率，超载时利用率停在 100，超出的部分由 hoursLeft 体现
func cappedPercent(part, whole float64) int {
	return min(max(percent(part, whole), 0), 100)
}
