package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"flappion-backend/mailer"
	"flappion-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BookingNotifier is told about every persisted booking.
type BookingNotifier interface {
	NotifyBookingReceived(ctx context.Context, booking models.Booking) error
}

// NotificationService renders and sends the booking and invitation emails and
// keeps a delivery log per attempt.
type NotificationService struct {
	DB            *gorm.DB
	Mailer        mailer.Mailer
	From          string
	OperatorEmail string
	Clock         Clock
}

func NewNotificationService(db *gorm.DB, m mailer.Mailer, from, operatorEmail string, clock Clock) *NotificationService {
	if clock == nil {
		clock = SystemClock()
	}
	return &NotificationService{DB: db, Mailer: m, From: from, OperatorEmail: operatorEmail, Clock: clock}
}

// NotifyBookingReceived emails the operator, then the customer. Both are
// attempted; the returned error joins whichever failed.
func (s *NotificationService) NotifyBookingReceived(ctx context.Context, booking models.Booking) error {
	now := s.Clock.Now()
	var errs []error

	subject, html, text, err := renderOperatorEmail(booking, now)
	if err != nil {
		return err
	}
	errs = append(errs, s.deliver(ctx, &booking.ID, models.EmailKindBookingOperator, mailer.Message{
		From: s.From, To: []string{s.OperatorEmail}, Subject: subject, HTML: html, Text: text,
	}, map[string]any{"event_type": booking.EventType}))

	subject, html, text, err = renderCustomerEmail(booking, now)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	errs = append(errs, s.deliver(ctx, &booking.ID, models.EmailKindBookingCustomer, mailer.Message{
		From: s.From, To: []string{booking.Email}, Subject: subject, HTML: html, Text: text,
	}, map[string]any{"event_type": booking.EventType}))

	return errors.Join(errs...)
}

func (s *NotificationService) SendInvitation(ctx context.Context, email, link string, expiresAt time.Time) error {
	subject, html, text, err := renderInvitationEmail(link, expiresAt)
	if err != nil {
		return err
	}
	return s.deliver(ctx, nil, models.EmailKindAdminInvitation, mailer.Message{
		From: s.From, To: []string{email}, Subject: subject, HTML: html, Text: text,
	}, map[string]any{"expires_at": expiresAt.UTC()})
}

// Deliveries lists the recorded attempts for one booking, oldest first.
func (s *NotificationService) Deliveries(ctx context.Context, admin AdminSession, bookingID string) ([]models.EmailDelivery, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	var out []models.EmailDelivery
	if err := s.DB.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return out, nil
}

func (s *NotificationService) deliver(ctx context.Context, bookingID *string, kind string, msg mailer.Message, meta map[string]any) error {
	sendErr := s.Mailer.Send(ctx, msg)

	record := models.EmailDelivery{
		BookingID: bookingID,
		Kind:      kind,
		Recipient: msg.To[0],
		Status:    models.EmailStatusSent,
		Provider:  s.Mailer.Provider(),
	}
	if sendErr != nil {
		record.Status = models.EmailStatusFailed
		record.Error = sendErr.Error()
		log.Printf("email %s to %s failed: %v", kind, msg.To[0], sendErr)
	}
	emailsMetric.WithLabelValues(kind, record.Status).Inc()

	meta["subject"] = msg.Subject
	if b, err := json.Marshal(meta); err == nil {
		record.Metadata = datatypes.JSON(b)
	}
	if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
		log.Printf("warning: failed to record %s delivery: %v", kind, err)
	}

	if sendErr != nil {
		return fmt.Errorf("send %s email: %w", kind, sendErr)
	}
	return nil
}
