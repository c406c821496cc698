package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology is the exchange, work queue and dead-letter pair shared by the
// publisher and the consumer. Both declare it, so messages published before
// the worker first starts are kept.
type Topology struct {
	Exchange string
	Queue    string
	Bindings []string
	DLXName  string
	DLXQueue string
}

func (t Topology) queueArgs() amqp.Table {
	args := amqp.Table{}
	if t.DLXName != "" {
		args["x-dead-letter-exchange"] = t.DLXName
	}
	return args
}

// declarer is the part of *amqp.Channel used to declare the topology.
type declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

func (t Topology) Declare(ch declarer) error {
	if t.DLXName != "" {
		if err := ch.ExchangeDeclare(t.DLXName, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare dlx: %w", err)
		}
		if _, err := ch.QueueDeclare(t.DLXQueue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare dlq: %w", err)
		}
		if err := ch.QueueBind(t.DLXQueue, "#", t.DLXName, false, nil); err != nil {
			return fmt.Errorf("bind dlq: %w", err)
		}
	}

	if err := ch.ExchangeDeclare(t.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if t.Queue == "" {
		return nil
	}
	q, err := ch.QueueDeclare(t.Queue, true, false, false, false, t.queueArgs())
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, key := range t.Bindings {
		if err := ch.QueueBind(q.Name, key, t.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}
