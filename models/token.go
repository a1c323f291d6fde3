package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken tracks an issued refresh token so sessions can be revoked
// individually on logout.
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	SessionID string    `gorm:"not null;uniqueIndex" json:"session_id"`
	TokenHash string    `gorm:"not null" json:"-"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`

	User User `json:"-"`
}
