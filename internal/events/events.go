package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/config"
	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const QueueName = "workorder_events"

var (
	ErrUnknownEventType   = errors.New("未知的工单事件类型")
	ErrMissingWorkOrderID = errors.New("工单事件缺少工单 ID")
)

// DeclareQueue 在发布方和消费方都要调用，保证队列存在且参数一致
func DeclareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		QueueName,
		true,  // 持久化
		false, // 没有消费者时不自动删除
		false, // 非独占
		false, // 等待 RabbitMQ 确认
		nil,
	)
}

type Publisher struct {
	ch      *amqp.Channel
	timeout time.Duration
}

func NewPublisher(cfg *config.Config, ch *amqp.Channel) *Publisher {
	return &Publisher{
		ch:      ch,
		timeout: time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second,
	}
}

func NewEvent(typ domain.WorkOrderEventType, workOrderID string) domain.WorkOrderEvent {
	return domain.WorkOrderEvent{
		Type:        typ,
		WorkOrderID: workOrderID,
		OccurredAt:  time.Now().UTC(),
	}
}

func (p *Publisher) Publish(ctx context.Context, evt domain.WorkOrderEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		QueueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    evt.OccurredAt,
			Type:         string(evt.Type),
			Body:         body,
		},
	)
}

// Decode 解析消息体，格式不对的消息应当直接丢弃而不是重新入队
func Decode(body []byte) (domain.WorkOrderEvent, error) {
	evt := domain.WorkOrderEvent{}
	if err := json.Unmarshal(body, &evt); err != nil {
		return evt, err
	}

	switch evt.Type {
	case domain.WorkOrderCreated, domain.WorkOrderUpdated, domain.WorkOrderCompleted, domain.WorkOrderDeleted:
	default:
		return evt, ErrUnknownEventType
	}

	if evt.WorkOrderID == "" {
		return evt, ErrMissingWorkOrderID
	}

	return evt, nil
}
