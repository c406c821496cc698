package services

import (
	"context"
	"fmt"
	"log"

	"flappion-backend/config"
	"flappion-backend/models"
	"flappion-backend/mq"
)

const RKBookingReceived = config.RKBookingReceived

// BookingReceived is the queued form of a booking notification.
type BookingReceived struct {
	Booking models.Booking `json:"booking"`
}

type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// QueueNotifier hands booking notifications to the notifier worker instead of
// sending them inside the request.
type QueueNotifier struct {
	Publisher JSONPublisher
}

func (q *QueueNotifier) NotifyBookingReceived(ctx context.Context, booking models.Booking) error {
	if err := q.Publisher.PublishJSON(ctx, RKBookingReceived, BookingReceived{Booking: booking}); err != nil {
		return fmt.Errorf("publish %s: %w", RKBookingReceived, err)
	}
	return nil
}

// FallbackNotifier uses Primary and, when it fails, Fallback. It lets the
// intake send emails in-request while the queue is unreachable.
type FallbackNotifier struct {
	Primary  BookingNotifier
	Fallback BookingNotifier
}

func (f *FallbackNotifier) NotifyBookingReceived(ctx context.Context, booking models.Booking) error {
	err := f.Primary.NotifyBookingReceived(ctx, booking)
	if err == nil {
		return nil
	}
	log.Printf("warning: booking %s notification falling back: %v", booking.ID, err)
	return f.Fallback.NotifyBookingReceived(ctx, booking)
}

// BookingEventHandler is the notifier worker's message handler. Unknown keys
// are acknowledged and skipped.
func BookingEventHandler(n BookingNotifier) mq.Handler {
	return func(ctx context.Context, key string, body []byte) error {
		switch key {
		case RKBookingReceived:
			ev, err := mq.Decode[BookingReceived](body)
			if err != nil {
				return err
			}
			if ev.Booking.ID == "" {
				return fmt.Errorf("%w: booking id missing", mq.ErrMalformed)
			}
			return n.NotifyBookingReceived(ctx, ev.Booking)
		default:
			log.Printf("[notify] skip unknown key=%s", key)
			return nil
		}
	}
}
