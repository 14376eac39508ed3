package domain

import "time"

type WorkOrderEventType string

const (
	WorkOrderCreated   WorkOrderEventType = "work_order_created"
	WorkOrderUpdated   WorkOrderEventType = "work_order_updated"
	WorkOrderCompleted WorkOrderEventType = "work_order_completed"
	WorkOrderDeleted   WorkOrderEventType = "work_order_deleted"
)

type WorkOrderEvent struct {
	Type        WorkOrderEventType `json:"type"`
	WorkOrderID string             `json:"workOrderID"`
	OccurredAt  time.Time          `json:"occurredAt"`
}
