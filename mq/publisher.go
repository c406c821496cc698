package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNotConfirmed = errors.New("publish not confirmed by broker")

// Publisher sends persistent JSON events and waits for the broker to confirm
// each one. A closed connection is redialled on the next publish.
type Publisher struct {
	url  string
	topo Topology

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url string, topo Topology) (*Publisher, error) {
	p := &Publisher{url: url, topo: topo}
	if _, err := p.channel(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := p.topo.Declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("enable confirms: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

// channel returns the live channel, reconnecting when it was closed.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()
	if err := p.connect(); err != nil {
		return nil, err
	}
	log.Printf("[mq] publisher connected exchange=%s queue=%s", p.topo.Exchange, p.topo.Queue)
	return p.ch, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	body, err := Encode(v)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	err = p.publish(ctx, key, msg)
	if errors.Is(err, amqp.ErrClosed) {
		// connection dropped since the last publish; one fresh attempt
		err = p.publish(ctx, key, msg)
	}
	return err
}

func (p *Publisher) publish(ctx context.Context, key string, msg amqp.Publishing) error {
	ch, err := p.channel()
	if err != nil {
		return err
	}
	dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.topo.Exchange, key, false, false, msg)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", key, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, key)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Publisher) closeLocked() error {
	var err error
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err = p.conn.Close()
		p.conn = nil
	}
	return err
}

func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}
