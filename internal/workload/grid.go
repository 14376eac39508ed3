package workload

import (
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
)

type ScheduledTask struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	EstimatedHours  float64         `json:"estimatedHours"`
	Priority        domain.Priority `json:"priority"`
	Status          domain.Status   `json:"status"`
	Asset           string          `json:"asset,omitempty"`
	Location        string          `json:"location,omitempty"`
	Locked          bool            `json:"locked"`
	IsFromWorkOrder bool            `json:"isFromWorkOrder"`
}

type DaySchedule struct {
	Key           string          `json:"key"`
	CapacityHours float64         `json:"capacityHours"`
	AssignedHours float64         `json:"assignedHours"`
	HoursLeft     float64         `json:"hoursLeft"` // 负数表示超载
	Utilization   int             `json:"utilization"`
	Tasks         []ScheduledTask `json:"tasks"`
}

type UserCapacityRow struct {
	Name               string        `json:"name"`
	Avatar             string        `json:"avatar,omitempty"`
	Team               string        `json:"team,omitempty"`
	WeeklyCapacity     float64       `json:"weeklyCapacity"`
	AssignedHours      float64       `json:"assignedHours"`
	Utilization        int           `json:"utilization"`
	PendingReschedules int           `json:"pendingReschedules"`
	Days               []DaySchedule `json:"days"`
}

// gridBuilder 只在一次 Compute 调用中存在，调用之间不共享任何可变状态
type gridBuilder struct {
	days     []WeekDay
	capacity Capacity
	hash     Hasher
	rows     []*rowBuilder
	byName   map[string]*rowBuilder
}

type rowBuilder struct {
	name    string
	avatar  string
	team    string
	pending int
	tasks   [][]ScheduledTask
	hours   []float64
}

func newGridBuilder(days []WeekDay, capacity Capacity, hash Hasher) *gridBuilder {
	return &gridBuilder{
		days:     days,
		capacity: capacity,
		hash:     hash,
		rows:     make([]*rowBuilder, 0),
		byName:   make(map[string]*rowBuilder),
	}
}

// row 按名字取行，不存在就新建；已有行缺失的团队和头像用后来的信息补上
func (g *gridBuilder) row(name, team, avatar string) *rowBuilder {
	r, exists := g.byName[name]
	if !exists {
		r = &rowBuilder{
			name:  name,
			tasks: make([][]ScheduledTask, len(g.days)),
			hours: make([]float64, len(g.days)),
		}
		g.byName[name] = r
		g.rows = append(g.rows, r)
	}

	if r.team == "" {
		r.team = team
	}
	if r.avatar == "" {
		r.avatar = avatar
	}
	return r
}

func (r *rowBuilder) place(day int, task ScheduledTask) {
	r.tasks[day] = append(r.tasks[day], task)
	r.hours[day] += task.EstimatedHours
}

func (g *gridBuilder) addBaseline(technicians []TechnicianSeed) {
	for _, tech := range technicians {
		r := g.row(tech.Name, tech.Team, tech.Avatar)
		for _, task := range tech.Tasks {
			r.place(task.DayOffset, ScheduledTask{
				ID:              task.ID,
				Title:           task.Title,
				EstimatedHours:  task.EstimatedHours,
				Priority:        task.Priority,
				Status:          task.Status,
				Asset:           task.Asset,
				Location:        task.Location,
				Locked:          true,
				IsFromWorkOrder: false,
			})
		}
	}
}

func (g *gridBuilder) addWorkOrder(wo *domain.WorkOrder, index int, ref time.Time) {
	team, avatar := "", ""
	if wo.AssignedTo != nil {
		team, avatar = wo.AssignedTo.Team, wo.AssignedTo.Avatar
	}

	r := g.row(wo.AssigneeName(), team, avatar)
	r.place(ResolveDayIndex(wo, index, g.days, ref, g.hash), ScheduledTask{
		ID:              wo.ID,
		Title:           wo.Title,
		EstimatedHours:  EstimateHours(wo, index, g.hash),
		Priority:        wo.Priority,
		Status:          wo.Status,
		Asset:           wo.Asset,
		Location:        wo.Location,
		Locked:          true,
		IsFromWorkOrder: true,
	})

	if wo.WasDeleted {
		r.pending++
	}
}

func (g *gridBuilder) build() []UserCapacityRow {
	rows := make([]UserCapacityRow, 0, len(g.rows))

	for _, r := range g.rows {
		row := UserCapacityRow{
			Name:               r.name,
			Avatar:             r.avatar,
			Team:               r.team,
			PendingReschedules: r.pending,
			Days:               make([]DaySchedule, len(g.days)),
		}

		for i, day := range g.days {
			capacityHours := g.capacity.ForDay(day)
			assigned := roundHours(r.hours[i])
			tasks := r.tasks[i]
			if tasks == nil {
				tasks = []ScheduledTask{}
			}

			row.Days[i] = DaySchedule{
				Key:           day.Key,
				CapacityHours: capacityHours,
				AssignedHours: assigned,
				HoursLeft:     roundHours(capacityHours - assigned),
				Utilization:   cappedPercent(assigned, capacityHours),
				Tasks:         tasks,
			}
			row.WeeklyCapacity += capacityHours
			row.AssignedHours += assigned
		}

		row.WeeklyCapacity = roundHours(row.WeeklyCapacity)
		row.AssignedHours = roundHours(row.AssignedHours)
		row.Utilization = cappedPercent(row.AssignedHours, row.WeeklyCapacity)
		rows = append(rows, row)
	}

	return rows
}
