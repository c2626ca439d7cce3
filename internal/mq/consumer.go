package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
)

// Handler returns nil when the delivery may be acked.
type Handler func(ctx context.Context, d amqp.Delivery) error

type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *logging.Logger
}

func NewConsumer(url, exchange, queue string, keys []string, logger *logging.Logger) (*Consumer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("declare exchange: %w", err))
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare queue: %w", err))
	}
	for _, rk := range keys {
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			return fail(fmt.Errorf("bind %s: %w", rk, err))
		}
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name, logger: logger}, nil
}

// Run consumes until ctx ends. Failed deliveries are nacked without requeue.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	return Dispatch(ctx, deliveries, h, c.logger)
}

// Dispatch acks or nacks each delivery depending on the handler result.
func Dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, h Handler, logger *logging.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := h(ctx, d); err != nil {
				logger.Error("delivery failed", "routing_key", d.RoutingKey, "error", err)
				if nerr := d.Nack(false, false); nerr != nil {
					logger.Warn("nack failed", "error", nerr)
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				logger.Warn("ack failed", "error", err)
			}
		}
	}
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
