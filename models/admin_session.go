package models

import "time"

// AdminSession backs a signed session token; deleting the row signs the session out.
type AdminSession struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID string    `gorm:"size:36;not null;index" json:"account_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
