package workload

import (
	"slices"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
)

// SeedTask 是基线技术员预先排好的任务，DayOffset 为 0 表示周一
type SeedTask struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	EstimatedHours float64         `json:"estimatedHours" yaml:"estimatedHours"`
	Priority       domain.Priority `json:"priority" yaml:"priority"`
	Status         domain.Status   `json:"status" yaml:"status"`
	Asset          string          `json:"asset,omitempty" yaml:"asset,omitempty"`
	Location       string          `json:"location,omitempty" yaml:"location,omitempty"`
	DayOffset      int             `json:"dayOffset" yaml:"dayOffset"`
}

type TechnicianSeed struct {
	Name   string     `json:"name" yaml:"name"`
	Avatar string     `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Team   string     `json:"team,omitempty" yaml:"team,omitempty"`
	Tasks  []SeedTask `json:"tasks" yaml:"tasks"`
}

// Baseline 是注入到排程中的固定数据：基线技术员和兜底的待排卡片
// 零值即为空基线
type Baseline struct {
	Technicians   []TechnicianSeed       `json:"technicians" yaml:"technicians"`
	FallbackQueue []UnscheduledOrderCard `json:"fallbackQueue" yaml:"fallbackQueue"`
}

func (b Baseline) clone() Baseline {
	c := Baseline{
		Technicians:   make([]TechnicianSeed, len(b.Technicians)),
		FallbackQueue: slices.Clone(b.FallbackQueue),
	}
	for i, tech := range b.Technicians {
		tech.Tasks = slices.Clone(tech.Tasks)
		c.Technicians[i] = tech
	}
	if c.FallbackQueue == nil {
		c.FallbackQueue = []UnscheduledOrderCard{}
	}
	return c
}
