package mq

import (
	"context"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one message body published under key.
type Handler func(ctx context.Context, key string, body []byte) error

type ConsumerConfig struct {
	RabbitURL   string
	Topology    Topology
	Prefetch    int
	ServiceName string
}

// ErrDeliveriesClosed means the broker connection went away while consuming.
var ErrDeliveriesClosed = errors.New("delivery channel closed")

// Consumer delivers at least once: a failed message is requeued once and
// then dead-lettered.
type Consumer struct {
	cfg    ConsumerConfig
	handle Handler

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg ConsumerConfig, h Handler) *Consumer {
	return &Consumer{cfg: cfg, handle: h}
}

func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}
	if err := c.cfg.Topology.Declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	if c.cfg.Prefetch <= 0 {
		c.cfg.Prefetch = 8
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Run consumes until ctx is done. It returns ErrDeliveriesClosed when the
// broker closes the delivery stream, so the caller can reconnect.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Topology.Queue, c.cfg.ServiceName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}
	return c.drain(ctx, msgs)
}

func (c *Consumer) drain(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveriesClosed
			}
			c.process(ctx, d)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.handle(ctx, d.RoutingKey, d.Body)
	settle(d, d.RoutingKey, d.Redelivered, err)
}

// settle acks on success, requeues a first failure and dead-letters a
// repeated or malformed one.
func settle(a acknowledger, key string, redelivered bool, err error) {
	switch {
	case err == nil:
		_ = a.Ack(false)
	case errors.Is(err, ErrMalformed) || redelivered:
		log.Printf("[notify] key=%s err=%v -> dead-letter", key, err)
		_ = a.Nack(false, false)
	default:
		log.Printf("[notify] key=%s err=%v -> requeue", key, err)
		_ = a.Nack(false, true)
	}
}
