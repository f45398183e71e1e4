package rmqconsumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"client-manager-api/config"
)

// can scale depends on a parallel worker count
const preFetchCount = 1

type (
	Consumer struct {
		cfg         config.MQ
		log         *zap.Logger
		routingKeys []string
		conn        *amqp091.Connection
		chConsume   *amqp091.Channel
		chDelivery  <-chan amqp091.Delivery
	}

	// auditEvent is the subset of a published audit event the consumer reads.
	auditEvent struct {
		Id        string    `json:"event_id"`
		TS        time.Time `json:"time_stamp"`
		Operation string    `json:"operation"`
		ClientID  int64     `json:"client_id"`
		Outcome   string    `json:"outcome"`
	}
)

func New(cfg config.MQ, logger *zap.Logger, routingKeys []string) *Consumer {
	return &Consumer{
		cfg:         cfg,
		log:         logger,
		routingKeys: routingKeys,
	}
}

func (c *Consumer) Connect(dsn string) error {
	var err error
	c.conn, err = amqp091.Dial(dsn)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	c.chConsume, err = c.conn.Channel()
	if err != nil {
		_ = c.conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	if err := c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, rk := range c.routingKeys {
		if err := c.chConsume.QueueBind(
			c.cfg.QueueName,
			rk,
			c.cfg.Exchange,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	if err := c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var err error
	c.chDelivery, err = c.chConsume.Consume(
		c.cfg.QueueName,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting delivery worker")

	defer func() {
		c.log.Info("delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				c.log.Warn("delivery channel closed")
				return
			}
			if err := c.delivery(msg); err != nil {
				// alert
				c.log.Error("mq read message error", zap.Error(err))
			}
		case <-ctx.Done():
			c.chConsume.Close()
			if c.conn != nil {
				c.conn.Close()
			}
			return
		}
	}
}

func (c *Consumer) delivery(msg amqp091.Delivery) error {
	// auto-ack: a malformed event is logged and dropped
	var e auditEvent
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		return fmt.Errorf("decode audit event %q: %w", msg.MessageId, err)
	}

	c.log.Info("audit event received",
		zap.String("routing_key", msg.RoutingKey),
		zap.String("event_id", e.Id),
		zap.Time("time_stamp", e.TS),
		zap.String("operation", e.Operation),
		zap.Int64("client_id", e.ClientID),
		zap.String("outcome", e.Outcome),
	)

	return nil
}
