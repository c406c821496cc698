package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"flappion-backend/models"
	"flappion-backend/mq"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingNotifier struct{ err error }

func (f failingNotifier) NotifyBookingReceived(context.Context, models.Booking) error { return f.err }

func ashaInput() IntakeInput {
	return IntakeInput{
		Name:          "Asha",
		Email:         "a@x.com",
		Phone:         "+911234567890",
		EventType:     "wedding",
		PreferredTime: "morning",
	}
}

func TestIntake_Asha(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.bookings.Intake(t.Context(), ashaInput())
	require.NoError(t, err)
	require.NoError(t, res.NotifyErr)

	_, err = uuid.Parse(res.Booking.ID)
	require.NoError(t, err)

	var rows []models.Booking
	require.NoError(t, env.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, res.Booking.ID, rows[0].ID)
	assert.Equal(t, models.BookingPending, rows[0].Status)
	assert.Equal(t, "Asha", rows[0].Name)
	assert.Nil(t, rows[0].Message)

	msgs := env.mail.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"ops@flappion.test"}, msgs[0].To)
	assert.Equal(t, "New Booking Request: wedding - Asha", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, res.Booking.ID)
	assert.Equal(t, []string{"a@x.com"}, msgs[1].To)
	assert.Equal(t, "Booking Confirmation - Flappion by NedX", msgs[1].Subject)
	assert.Contains(t, msgs[1].HTML, res.Booking.ID)
}

func TestIntake_MissingFieldsRejectedBeforeSave(t *testing.T) {
	// nil DB: a save attempt would panic
	svc := &BookingService{}
	for _, blank := range []func(*IntakeInput){
		func(in *IntakeInput) { in.Name = "" },
		func(in *IntakeInput) { in.Email = "  " },
		func(in *IntakeInput) { in.Phone = "" },
		func(in *IntakeInput) { in.EventType = "" },
		func(in *IntakeInput) { in.PreferredTime = "" },
	} {
		in := ashaInput()
		blank(&in)
		_, err := svc.Intake(t.Context(), in)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestIntake_NotificationFailureKeepsBooking(t *testing.T) {
	env := newTestEnv(t)
	env.bookings.Notifier = failingNotifier{err: errors.New("provider rejected")}

	res, err := env.bookings.Intake(t.Context(), ashaInput())
	require.NoError(t, err)
	assert.Error(t, res.NotifyErr)

	var count int64
	env.db.Model(&models.Booking{}).Where("id = ?", res.Booking.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIntake_CustomerEmailStillSentWhenOperatorFails(t *testing.T) {
	env := newTestEnv(t)
	env.mail.Err = errors.New("mailbox full")
	env.mail.FailFor = "ops@flappion.test"

	res, err := env.bookings.Intake(t.Context(), ashaInput())
	require.NoError(t, err)
	assert.Error(t, res.NotifyErr)

	msgs := env.mail.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"a@x.com"}, msgs[0].To)

	admin := env.adminSession(t)
	deliveries, err := env.notifications.Deliveries(t.Context(), admin, res.Booking.ID)
	require.NoError(t, err)
	require.Len(t, deliveries, 2)
	assert.Equal(t, models.EmailKindBookingOperator, deliveries[0].Kind)
	assert.Equal(t, models.EmailStatusFailed, deliveries[0].Status)
	assert.Equal(t, models.EmailKindBookingCustomer, deliveries[1].Kind)
	assert.Equal(t, models.EmailStatusSent, deliveries[1].Status)
	assert.Equal(t, "fake", deliveries[1].Provider)
}

func TestIntake_EscapesMarkupInEmails(t *testing.T) {
	env := newTestEnv(t)
	in := ashaInput()
	in.Name = "<script>alert(1)</script>"
	msg := "<img src=x onerror=alert(2)>"
	in.Message = &msg

	_, err := env.bookings.Intake(t.Context(), in)
	require.NoError(t, err)

	msgs := env.mail.Messages()
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		for _, part := range []string{m.HTML, m.Text, m.Subject} {
			assert.NotContains(t, part, "<script>")
		}
		assert.Contains(t, m.HTML, "&lt;script&gt;")
		assert.Contains(t, m.Text, "&lt;script&gt;")
	}
	assert.Contains(t, msgs[0].Subject, "&lt;script&gt;")
	assert.NotContains(t, msgs[0].HTML, "<img")
	assert.NotContains(t, msgs[0].Text, "<img")
	assert.Contains(t, msgs[0].Text, "&lt;img")
}

func seedBooking(t *testing.T, env *testEnv, name string, status models.BookingStatus, createdAt time.Time) models.Booking {
	t.Helper()
	b := models.Booking{
		Name: name, Email: strings.ToLower(name) + "@x.com", Phone: "+100",
		EventType: "birthday", PreferredTime: "evening", Status: status, CreatedAt: createdAt,
	}
	require.NoError(t, env.db.Create(&b).Error)
	return b
}

func TestList_NewestFirstWithFilter(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminSession(t)
	old := seedBooking(t, env, "Old", models.BookingConfirmed, testNow.Add(-2*time.Hour))
	mid := seedBooking(t, env, "Mid", models.BookingPending, testNow.Add(-time.Hour))
	recent := seedBooking(t, env, "New", models.BookingConfirmed, testNow)

	all, err := env.bookings.List(t.Context(), admin, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{recent.ID, mid.ID, old.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	confirmed := models.BookingConfirmed
	filtered, err := env.bookings.List(t.Context(), admin, &confirmed)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, recent.ID, filtered[0].ID)
	assert.Equal(t, old.ID, filtered[1].ID)
}

func TestUpdateStatus_AnyToAny(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminSession(t)
	b := seedBooking(t, env, "Asha", models.BookingPending, testNow)

	for _, next := range []string{"completed", "pending", "cancelled", "confirmed", "Pending"} {
		updated, err := env.bookings.UpdateStatus(t.Context(), admin, b.ID, next)
		require.NoError(t, err)
		want := models.BookingStatus(strings.ToLower(next))
		assert.Equal(t, want, updated.Status)

		list, err := env.bookings.List(t.Context(), admin, nil)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, want, list[0].Status)
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminSession(t)
	b := seedBooking(t, env, "Asha", models.BookingPending, testNow)

	_, err := env.bookings.UpdateStatus(t.Context(), admin, b.ID, "archived")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.bookings.UpdateStatus(t.Context(), admin, uuid.NewString(), "confirmed")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminSession(t)
	b := seedBooking(t, env, "Asha", models.BookingPending, testNow)

	require.NoError(t, env.bookings.Delete(t.Context(), admin, b.ID))
	list, err := env.bookings.List(t.Context(), admin, nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, env.bookings.Delete(t.Context(), admin, b.ID), ErrBookingNotFound)
}

func TestDashboardOperations_RequireCapability(t *testing.T) {
	env := newTestEnv(t)
	b := seedBooking(t, env, "Asha", models.BookingPending, testNow)
	var zero AdminSession

	_, err := env.bookings.List(t.Context(), zero, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.bookings.UpdateStatus(t.Context(), zero, b.ID, "confirmed")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, env.bookings.Delete(t.Context(), zero, b.ID), ErrForbidden)
	_, err = env.notifications.Deliveries(t.Context(), zero, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	var stored models.Booking
	require.NoError(t, env.db.First(&stored, "id = ?", b.ID).Error)
	assert.Equal(t, models.BookingPending, stored.Status)
}

type recordingPublisher struct {
	key string
	v   any
	err error
}

func (r *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	r.key, r.v = key, v
	return r.err
}

func TestQueueNotifier(t *testing.T) {
	pub := &recordingPublisher{}
	q := &QueueNotifier{Publisher: pub}
	b := models.Booking{ID: "b-1", Name: "Asha"}

	require.NoError(t, q.NotifyBookingReceived(t.Context(), b))
	assert.Equal(t, RKBookingReceived, pub.key)
	assert.Equal(t, BookingReceived{Booking: b}, pub.v)

	pub.err = errors.New("channel closed")
	assert.ErrorContains(t, q.NotifyBookingReceived(t.Context(), b), "channel closed")
}

func TestBookingEventHandler(t *testing.T) {
	env := newTestEnv(t)
	handle := BookingEventHandler(env.notifications)
	b := seedBooking(t, env, "Asha", models.BookingPending, testNow)

	body, err := mq.Encode(BookingReceived{Booking: b})
	require.NoError(t, err)
	require.NoError(t, handle(t.Context(), RKBookingReceived, body))
	assert.Len(t, env.mail.Messages(), 2)

	assert.ErrorIs(t, handle(t.Context(), RKBookingReceived, []byte("{")), mq.ErrMalformed)
	assert.ErrorIs(t, handle(t.Context(), RKBookingReceived, []byte("{}")), mq.ErrMalformed)
	assert.NoError(t, handle(t.Context(), "booking.other", body))

	env.mail.Err = errors.New("provider down")
	err = handle(t.Context(), RKBookingReceived, body)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, mq.ErrMalformed)
}

func TestFallbackNotifier(t *testing.T) {
	env := newTestEnv(t)
	pub := &recordingPublisher{err: errors.New("connection refused")}
	env.bookings.Notifier = &FallbackNotifier{
		Primary:  &QueueNotifier{Publisher: pub},
		Fallback: env.notifications,
	}

	res, err := env.bookings.Intake(t.Context(), ashaInput())
	require.NoError(t, err)
	assert.NoError(t, res.NotifyErr)
	assert.Len(t, env.mail.Messages(), 2, "emails sent in-request when the queue is down")

	pub.err = nil
	res, err = env.bookings.Intake(t.Context(), ashaInput())
	require.NoError(t, err)
	assert.NoError(t, res.NotifyErr)
	assert.Equal(t, RKBookingReceived, pub.key)
	assert.Len(t, env.mail.Messages(), 2, "queued bookings are not emailed again")

	env.bookings.Notifier = &FallbackNotifier{
		Primary:  &QueueNotifier{Publisher: &recordingPublisher{err: errors.New("down")}},
		Fallback: failingNotifier{err: errors.New("provider rejected")},
	}
	res, err = env.bookings.Intake(t.Context(), ashaInput())
	require.NoError(t, err)
	assert.ErrorContains(t, res.NotifyErr, "provider rejected")
}
