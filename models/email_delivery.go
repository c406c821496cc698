package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EmailKindBookingOperator = "booking_operator"
	EmailKindBookingCustomer = "booking_customer"
	EmailKindAdminInvitation = "admin_invitation"

	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

type EmailDelivery struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BookingID *string        `gorm:"size:36;index" json:"booking_id,omitempty"`
	Kind      string         `gorm:"size:50;not null" json:"kind"`
	Recipient string         `gorm:"size:255;not null" json:"recipient"`
	Status    string         `gorm:"size:20;not null" json:"status"`
	Error     string         `gorm:"type:text" json:"error,omitempty"`
	Provider  string         `gorm:"size:50" json:"provider"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
