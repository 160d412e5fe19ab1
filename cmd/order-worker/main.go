package main

import (
	"context"
	"encoding/json"
	"flag"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/orderevent"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/logging"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// order-worker drains the order events queue into the order_events audit
// table. Manual acks: a message is only gone once its row is written.
func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	debug := flag.Bool("debug", false, "development logging")
	flag.Parse()

	logging.Init(*debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)
	eventRepo := mysql.NewOrderEventRepository(db)

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("open channel failed", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderEventsQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("declare queue failed", zap.Error(err))
	}

	msgs, err := ch.Consume(service.OrderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("consume failed", zap.Error(err))
	}

	zap.L().Info("order worker started, waiting for events")

	for d := range msgs {
		handleDelivery(context.Background(), eventRepo, d)
	}
}

func handleDelivery(ctx context.Context, events orderevent.Repository, d amqp.Delivery) {
	var m service.OrderEventMessage
	if err := json.Unmarshal(d.Body, &m); err != nil {
		zap.L().Warn("invalid order event message, dropping", zap.Error(err))
		// malformed payloads can never succeed, do not requeue
		_ = d.Nack(false, false)
		return
	}

	e := &orderevent.Event{
		OrderID: m.OrderID,
		UserID:  m.UserID,
		Kind:    m.Kind,
		Detail:  m.Detail,
	}
	if !m.OccurredAt.IsZero() {
		e.CreatedAt = m.OccurredAt
	}

	if err := events.Create(ctx, e); err != nil {
		service.GetMonitor().RecordDBError()
		zap.L().Error("persist order event failed, requeueing",
			zap.String("order_id", m.OrderID),
			zap.String("kind", m.Kind),
			zap.Error(err))
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}
