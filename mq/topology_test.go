package mq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type declaredQueue struct {
	name string
	args amqp.Table
}

type recordingDeclarer struct {
	exchanges []string
	queues    []declaredQueue
	bindings  []string
}

func (r *recordingDeclarer) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	r.exchanges = append(r.exchanges, name)
	return nil
}

func (r *recordingDeclarer) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	r.queues = append(r.queues, declaredQueue{name: name, args: args})
	return amqp.Queue{Name: name}, nil
}

func (r *recordingDeclarer) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	r.bindings = append(r.bindings, name+"<-"+exchange+":"+key)
	return nil
}

var notifyTopology = Topology{
	Exchange: "flappion.notifications",
	Queue:    "flappion.booking-emails",
	Bindings: []string{"booking.received"},
	DLXName:  "flappion.notifications.dlx",
	DLXQueue: "flappion.booking-emails.dlq",
}

func TestTopologyDeclare_WorkQueueBoundWithDeadLetter(t *testing.T) {
	d := &recordingDeclarer{}
	require.NoError(t, notifyTopology.Declare(d))

	assert.Equal(t, []string{"flappion.notifications.dlx", "flappion.notifications"}, d.exchanges)
	require.Len(t, d.queues, 2)
	assert.Equal(t, "flappion.booking-emails", d.queues[1].name)
	assert.Equal(t, "flappion.notifications.dlx", d.queues[1].args["x-dead-letter-exchange"])
	assert.Equal(t, []string{
		"flappion.booking-emails.dlq<-flappion.notifications.dlx:#",
		"flappion.booking-emails<-flappion.notifications:booking.received",
	}, d.bindings)
}

func TestTopologyDeclare_ExchangeOnly(t *testing.T) {
	d := &recordingDeclarer{}
	require.NoError(t, Topology{Exchange: "events"}.Declare(d))
	assert.Equal(t, []string{"events"}, d.exchanges)
	assert.Empty(t, d.queues)
}

func TestPublisherClose_Idempotent(t *testing.T) {
	p := &Publisher{topo: notifyTopology}
	assert.NoError(t, p.Close())
	assert.NoError(t, p.Close())
}
