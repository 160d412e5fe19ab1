package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrderEventsQueue is the durable queue carrying order lifecycle events to
// the order-worker.
const OrderEventsQueue = "order_events"

// OrderEventMessage is the wire form of one order lifecycle event.
type OrderEventMessage struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher pushes order lifecycle events to RabbitMQ. Publishing is
// best-effort: a failed publish is logged and counted, never surfaced to
// the customer-facing request.
type EventPublisher struct {
	conn *amqp.Connection
}

// NewEventPublisher builds a publisher; a nil connection disables publishing.
func NewEventPublisher(conn *amqp.Connection) *EventPublisher {
	return &EventPublisher{conn: conn}
}

// Publish sends one event to the order events queue.
func (p *EventPublisher) Publish(ctx context.Context, msg OrderEventMessage) {
	if p == nil || p.conn == nil {
		return
	}
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now()
	}

	ch, err := p.conn.Channel()
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("open mq channel failed", zap.Error(err))
		return
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderEventsQueue, true, false, false, false, nil); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("declare order events queue failed", zap.Error(err))
		return
	}

	body, err := json.Marshal(&msg)
	if err != nil {
		zap.L().Warn("marshal order event failed", zap.Error(err))
		return
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		OrderEventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("publish order event failed",
			zap.String("order_id", msg.OrderID),
			zap.String("kind", msg.Kind),
			zap.Error(err))
	}
}
