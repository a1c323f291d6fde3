package models

import (
	"time"

	"gorm.io/gorm"
)

// WatchHistory is the single progress row per (user, video) pair. Progress
// reports overwrite it wholesale; the unique index makes the upsert atomic.
type WatchHistory struct {
	gorm.Model
	UserID  uint `gorm:"not null;uniqueIndex:idx_watch_user_video" json:"user_id"`
	VideoID uint `gorm:"not null;uniqueIndex:idx_watch_user_video" json:"video_id"`

	WatchTimeSeconds int       `gorm:"not null;default:0" json:"watch_time_seconds"`
	Progress         float64   `gorm:"not null;default:0" json:"progress"` // 0..1
	LastWatchedAt    time.Time `gorm:"not null;index" json:"last_watched_at"`

	// Relations
	User  User  `json:"-"`
	Video Video `json:"-"`
}
