package domain

import "time"

// Priority 和 Status 都是开放的枚举，未知的取值不会导致排程出错
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
	PriorityDaily  Priority = "Daily"
)

type Status string

const (
	StatusOpen       Status = "Open"
	StatusOnHold     Status = "On Hold"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
	StatusCompleted  Status = "Completed"
)

// IsDone 表示工单已经结束，不再出现在待排队列中
func (s Status) IsDone() bool {
	return s == StatusDone || s == StatusCompleted
}

// UnassignedName 是没有指派人的工单所归入的行
const UnassignedName = "Unassigned"

type Assignee struct {
	Name   string `json:"name" yaml:"name"`
	Team   string `json:"team,omitempty" yaml:"team,omitempty"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

type WorkOrder struct {
	ID             string    `json:"id" yaml:"id"`
	Title          string    `json:"title" yaml:"title"`
	Description    string    `json:"description" yaml:"description,omitempty"`
	Priority       Priority  `json:"priority" yaml:"priority"`
	Status         Status    `json:"status" yaml:"status"`
	DueDate        string    `json:"dueDate" yaml:"dueDate,omitempty"`         // 可能是日期，也可能是 "tomorrow"、"in 3 days" 之类的短语
	EstimatedHours *float64  `json:"estimatedHours" yaml:"estimatedHours"`     // 为空时由排程根据优先级推算
	AssignedTo     *Assignee `json:"assignedTo" yaml:"assignedTo,omitempty"`   // 为空时归入 Unassigned
	Asset          string    `json:"asset,omitempty" yaml:"asset,omitempty"`
	Location       string    `json:"location,omitempty" yaml:"location,omitempty"`
	IsCompleted    bool      `json:"isCompleted" yaml:"isCompleted"`
	WasDeleted     bool      `json:"wasDeleted" yaml:"wasDeleted"`
	CreatedAt      time.Time `json:"createdAt" yaml:"-"`
	Version        int32     `json:"-" yaml:"-"`
}

// AssigneeName 返回工单所属的行名
func (wo *WorkOrder) AssigneeName() string {
	if wo.AssignedTo == nil || wo.AssignedTo.Name == "" {
		return UnassignedName
	}
	return wo.AssignedTo.Name
}
