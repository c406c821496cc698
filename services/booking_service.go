package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"flappion-backend/models"

	"gorm.io/gorm"
)

type BookingService struct {
	DB       *gorm.DB
	Notifier BookingNotifier
}

func NewBookingService(db *gorm.DB, notifier BookingNotifier) *BookingService {
	return &BookingService{DB: db, Notifier: notifier}
}

type IntakeInput struct {
	Name          string
	Email         string
	Phone         string
	EventType     string
	PreferredTime string
	Message       *string
}

type IntakeResult struct {
	Booking models.Booking
	// NotifyErr is set when the booking was saved but a notification failed.
	NotifyErr error
}

// Intake persists a pending booking and then notifies. A notification failure
// never undoes the booking.
func (s *BookingService) Intake(ctx context.Context, in IntakeInput) (*IntakeResult, error) {
	booking := models.Booking{
		Name:          strings.TrimSpace(in.Name),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		EventType:     strings.TrimSpace(in.EventType),
		PreferredTime: strings.TrimSpace(in.PreferredTime),
		Status:        models.BookingPending,
	}
	if booking.Name == "" || booking.Email == "" || booking.Phone == "" ||
		booking.EventType == "" || booking.PreferredTime == "" {
		return nil, validationError("name, email, phone, eventType and preferredTime are required")
	}
	if in.Message != nil {
		if msg := strings.TrimSpace(*in.Message); msg != "" {
			booking.Message = &msg
		}
	}

	if err := s.DB.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	bookingsCreatedMetric.Inc()
	log.Printf("Booking saved to database: %s", booking.ID)

	result := &IntakeResult{Booking: booking}
	if s.Notifier != nil {
		if err := s.Notifier.NotifyBookingReceived(ctx, booking); err != nil {
			log.Printf("booking %s saved but notification failed: %v", booking.ID, err)
			result.NotifyErr = err
		}
	}
	return result, nil
}

// List returns bookings newest first, optionally filtered by status.
func (s *BookingService) List(ctx context.Context, admin AdminSession, status *models.BookingStatus) ([]models.Booking, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	bookings := []models.Booking{}
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) Get(ctx context.Context, admin AdminSession, id string) (*models.Booking, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	var booking models.Booking
	if err := s.DB.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

// UpdateStatus allows any status to move to any other; last write wins.
func (s *BookingService) UpdateStatus(ctx context.Context, admin AdminSession, id, rawStatus string) (*models.Booking, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	status, ok := models.ParseBookingStatus(rawStatus)
	if !ok {
		return nil, validationError("status must be one of pending, confirmed, completed, cancelled")
	}

	res := s.DB.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("update booking status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrBookingNotFound
	}
	return s.Get(ctx, admin, id)
}

// Delete removes the booking permanently.
func (s *BookingService) Delete(ctx context.Context, admin AdminSession, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Delete(&models.Booking{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
