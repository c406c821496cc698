package models

import "time"

// AdminInvitation keeps only the SHA-256 digest of the invitation token.
type AdminInvitation struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"size:255;not null;index" json:"email"`
	TokenHash string     `gorm:"column:token;size:64;not null;uniqueIndex" json:"-"`
	InvitedBy *string    `gorm:"size:36" json:"invited_by,omitempty"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (i AdminInvitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Redeemable reports whether the invitation can still be accepted at now.
func (i AdminInvitation) Redeemable(now time.Time) bool {
	return !i.Used && !i.IsExpired(now)
}
