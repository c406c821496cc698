package models

import "time"

const RoleAdmin = "admin"

type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role      string    `gorm:"size:50;not null;uniqueIndex:idx_user_role" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
