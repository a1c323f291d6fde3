package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents an account on the platform
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Profile information
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Timezone  string  `gorm:"default:'UTC'" json:"timezone"`
	Language  string  `gorm:"default:'en'" json:"language"`

	// Account status
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	Role        string     `gorm:"default:'student'" json:"role"` // student, admin
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Stripe integration
	StripeCustomerID    *string `gorm:"index" json:"stripe_customer_id,omitempty"`
	StripePaymentMethod *string `json:"stripe_payment_method,omitempty"`
	DefaultCurrency     string  `gorm:"default:'usd'" json:"default_currency"`

	// Relations
	Subscriptions []Subscription     `gorm:"foreignKey:UserID" json:"subscriptions,omitempty"`
	AccessGrants  []VideoAccessGrant `gorm:"foreignKey:UserID" json:"access_grants,omitempty"`
	WatchHistory  []WatchHistory     `gorm:"foreignKey:UserID" json:"watch_history,omitempty"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
