package mq

import (
	"context"
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	cases := []struct {
		name        string
		redelivered bool
		err         error
		want        fakeAck
	}{
		{"success", false, nil, fakeAck{acked: true}},
		{"first failure requeues", false, errors.New("smtp timeout"), fakeAck{nacked: true, requeued: true}},
		{"second failure dead-letters", true, errors.New("smtp timeout"), fakeAck{nacked: true}},
		{"malformed dead-letters at once", false, fmt.Errorf("decode: %w", ErrMalformed), fakeAck{nacked: true}},
		{"redelivered success", true, nil, fakeAck{acked: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := &fakeAck{}
			settle(got, "booking.received", tc.redelivered, tc.err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		ID string `json:"id"`
	}
	body, err := Encode(payload{ID: "b-1"})
	require.NoError(t, err)

	got, err := Decode[payload](body)
	require.NoError(t, err)
	assert.Equal(t, "b-1", got.ID)

	_, err = Decode[payload]([]byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformed)
}

type recordingAcknowledger struct {
	acks  []uint64
	nacks []uint64
}

func (r *recordingAcknowledger) Ack(tag uint64, _ bool) error {
	r.acks = append(r.acks, tag)
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, _ bool, _ bool) error {
	r.nacks = append(r.nacks, tag)
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, _ bool) error {
	r.nacks = append(r.nacks, tag)
	return nil
}

func TestDrain_ClosedStreamIsAnError(t *testing.T) {
	ack := &recordingAcknowledger{}
	var seen []string
	c := NewConsumer(ConsumerConfig{}, func(_ context.Context, key string, body []byte) error {
		seen = append(seen, string(body))
		if string(body) == "bad" {
			return errors.New("smtp down")
		}
		return nil
	})

	msgs := make(chan amqp.Delivery, 2)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, RoutingKey: "booking.received", Body: []byte("ok")}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, RoutingKey: "booking.received", Body: []byte("bad")}
	close(msgs)

	err := c.drain(t.Context(), msgs)
	assert.ErrorIs(t, err, ErrDeliveriesClosed)
	assert.Equal(t, []string{"ok", "bad"}, seen)
	assert.Equal(t, []uint64{1}, ack.acks)
	assert.Equal(t, []uint64{2}, ack.nacks)
}

func TestDrain_CancelledContextStopsCleanly(t *testing.T) {
	c := NewConsumer(ConsumerConfig{}, func(context.Context, string, []byte) error { return nil })
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	assert.NoError(t, c.drain(ctx, make(chan amqp.Delivery)))
}
