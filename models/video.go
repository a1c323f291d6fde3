package models

import (
	"time"

	"gorm.io/gorm"
)

// VideoCategory groups videos for catalog browsing.
type VideoCategory struct {
	gorm.Model
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `json:"description"`

	Videos []Video `gorm:"foreignKey:CategoryID" json:"videos,omitempty"`
}

type VideoStatus string

const (
	VideoActive     VideoStatus = "active"
	VideoInactive   VideoStatus = "inactive"
	VideoProcessing VideoStatus = "processing"
)

// Video is a catalog entry. PlaybackURL points at the external media
// server; this service only decides whether a caller may follow it.
type Video struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	CategoryID  uint   `gorm:"not null;index" json:"category_id"`

	Tier   AccessTier  `gorm:"not null;default:'basic';index" json:"tier"` // basic, premium; vip exists as a plan tier only
	Status VideoStatus `gorm:"not null;default:'processing';index" json:"status"`

	DurationSeconds int    `json:"duration_seconds"`
	PlaybackURL     string `json:"playback_url,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`

	// Relations
	Category     VideoCategory      `json:"category,omitempty"`
	AccessGrants []VideoAccessGrant `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
	WatchHistory []WatchHistory     `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

const AccessTypeGranted = "granted"

// VideoAccessGrant is an explicit per-user-per-video override, independent
// of any subscription. A grant counts only while is_active is set and the
// optional expiry has not passed.
type VideoAccessGrant struct {
	gorm.Model
	UserID  uint `gorm:"not null;index:idx_grant_user_video" json:"user_id"`
	VideoID uint `gorm:"not null;index:idx_grant_user_video" json:"video_id"`

	AccessType string     `gorm:"not null;default:'granted'" json:"access_type"`
	GrantedAt  time.Time  `gorm:"not null" json:"granted_at"`
	ExpiresAt  *time.Time `gorm:"index" json:"expires_at,omitempty"`
	IsActive   bool       `gorm:"not null;default:true;index" json:"is_active"`

	GrantedByID *uint `json:"granted_by_id,omitempty"`

	// Relations
	User      User  `json:"-"`
	Video     Video `json:"-"`
	GrantedBy *User `gorm:"foreignKey:GrantedByID" json:"-"`
}

// IsUsable reports whether the grant satisfies entitlement checks at the
// given instant.
func (g *VideoAccessGrant) IsUsable(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	return g.ExpiresAt == nil || !g.ExpiresAt.Before(now)
}
