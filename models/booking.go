package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus accepts any of the four dashboard statuses, case-insensitively.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	switch s := BookingStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return s, true
	default:
		return "", false
	}
}

type Booking struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	Name          string        `gorm:"size:255;not null" json:"name"`
	Email         string        `gorm:"size:255;not null" json:"email"`
	Phone         string        `gorm:"size:64;not null" json:"phone"`
	EventType     string        `gorm:"column:event_type;size:100;not null" json:"event_type"`
	PreferredTime string        `gorm:"column:preferred_time;size:100;not null" json:"preferred_time"`
	Message       *string       `gorm:"type:text" json:"message"`
	Status        BookingStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BookingPending
	}
	return nil
}
