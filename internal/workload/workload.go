package workload

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
)

var (
	ErrInvalidHoursPerDay = errors.New("每日工时必须为正数")
	ErrSeedDayOffset      = errors.New("基线任务的 dayOffset 必须在 0 到 6 之间")
	ErrSeedName           = errors.New("基线技术员必须有名字")
	ErrNilWorkOrder       = errors.New("工单列表中存在空工单")
	ErrZeroReferenceDate  = errors.New("参考日期不能为空")
)

type Options struct {
	HoursPerDay float64    // 为 0 时使用 DefaultHoursPerDay
	Baseline    Baseline   // 为零值时没有基线技术员，也没有兜底卡片
	QueueOrder  QueueOrder // 为 nil 时使用 LegacyPriorityOrder
	Hash        Hasher     // 为 nil 时使用 StringHash
}

type Projection struct {
	WeekDays           []WeekDay              `json:"weekDays"`
	WeekRangeLabel     string                 `json:"weekRangeLabel"`
	UserRows           []UserCapacityRow      `json:"userRows"`
	UnscheduledOrders  []UnscheduledOrderCard `json:"unscheduledOrders"`
	TotalCapacity      float64                `json:"totalCapacity"`
	TotalAssigned      float64                `json:"totalAssigned"`
	AverageUtilization int                    `json:"averageUtilization"`
	DailyTotals        []DayTotal             `json:"dailyTotals"`
	SummaryCounts      SummaryCounts          `json:"summaryCounts"`
}

// Planner 创建后不再修改，可以被多个请求并发使用
type Planner struct {
	capacity Capacity
	baseline Baseline
	order    QueueOrder
	hash     Hasher
}

func New(opts Options) (*Planner, error) {
	hoursPerDay := opts.HoursPerDay
	if hoursPerDay == 0 {
		hoursPerDay = DefaultHoursPerDay
	}
	if hoursPerDay < 0 || math.IsNaN(hoursPerDay) || math.IsInf(hoursPerDay, 0) {
		return nil, ErrInvalidHoursPerDay
	}

	for _, tech := range opts.Baseline.Technicians {
		if tech.Name == "" {
			return nil, ErrSeedName
		}
		for _, task := range tech.Tasks {
			if task.DayOffset < 0 || task.DayOffset >= len(dayNames) {
				return nil, fmt.Errorf("%w: %s 的任务 %s 为 %d", ErrSeedDayOffset, tech.Name, task.ID, task.DayOffset)
			}
		}
	}

	p := &Planner{
		capacity: Capacity{HoursPerDay: hoursPerDay},
		baseline: opts.Baseline.clone(),
		order:    opts.QueueOrder,
		hash:     opts.Hash,
	}
	if p.order == nil {
		p.order = LegacyPriorityOrder
	}
	if p.hash == nil {
		p.hash = StringHash
	}

	// 兜底卡片没有写 dueLabel 的，按 daysUntil 补上
	for i := range p.baseline.FallbackQueue {
		if p.baseline.FallbackQueue[i].DueLabel == "" {
			p.baseline.FallbackQueue[i].DueLabel = DueLabel(p.baseline.FallbackQueue[i].DaysUntil)
		}
	}

	return p, nil
}

// Compute 计算某一周的工作负载视图，每次调用都从输入重新计算，不会修改传入的工单
func (p *Planner) Compute(orders []*domain.WorkOrder, weekOffset int, referenceDate time.Time) (*Projection, error) {
	if referenceDate.IsZero() {
		return nil, ErrZeroReferenceDate
	}
	for i, wo := range orders {
		if wo == nil {
			return nil, fmt.Errorf("%w: 第 %d 项", ErrNilWorkOrder, i)
		}
	}

	days := BuildWeek(referenceDate, weekOffset)

	grid := newGridBuilder(days, p.capacity, p.hash)
	grid.addBaseline(p.baseline.Technicians)
	for i, wo := range orders {
		grid.addWorkOrder(wo, i, referenceDate)
	}
	rows := grid.build()

	queue := buildQueue(orders, p.baseline.FallbackQueue, referenceDate, p.hash, p.order)

	totalCapacity, totalAssigned := 0.0, 0.0
	for _, row := range rows {
		totalCapacity += row.WeeklyCapacity
		totalAssigned += row.AssignedHours
	}
	totalCapacity = roundHours(totalCapacity)
	totalAssigned = roundHours(totalAssigned)

	return &Projection{
		WeekDays:           days,
		WeekRangeLabel:     WeekRangeLabel(days),
		UserRows:           rows,
		UnscheduledOrders:  queue,
		TotalCapacity:      totalCapacity,
		TotalAssigned:      totalAssigned,
		AverageUtilization: cappedPercent(totalAssigned, totalCapacity),
		DailyTotals:        dailyTotals(rows, days),
		SummaryCounts:      summarize(queue, orders),
	}, nil
}

// Compute 使用默认配置和空基线计算工作负载视图
func Compute(orders []*domain.WorkOrder, weekOffset int, referenceDate time.Time) (*Projection, error) {
	p, err := New(Options{})
	if err != nil {
		return nil, err
	}
	return p.Compute(orders, weekOffset, referenceDate)
}
