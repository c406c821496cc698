package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Account struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string     `gorm:"size:255" json:"-"` // bcrypt, never returned in JSON
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
