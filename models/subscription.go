package models

import (
	"time"

	"gorm.io/gorm"
)

// AccessTier is the ordered content/plan tier. A plan unlocks every video
// at or below its own tier.
type AccessTier string

const (
	TierBasic   AccessTier = "basic"
	TierPremium AccessTier = "premium"
	TierVIP     AccessTier = "vip"
)

var tierRanks = map[AccessTier]int{
	TierBasic:   1,
	TierPremium: 2,
	TierVIP:     3,
}

// Rank returns the tier's position in the BASIC < PREMIUM < VIP order.
// Unknown tiers rank below basic so malformed rows never unlock anything.
func (t AccessTier) Rank() int {
	return tierRanks[t]
}

// Covers reports whether content at tier required is included in t.
func (t AccessTier) Covers(required AccessTier) bool {
	return t.Rank() >= required.Rank()
}

func (t AccessTier) IsValid() bool {
	_, ok := tierRanks[t]
	return ok
}

// SubscriptionPlan is static reference data describing a purchasable plan.
type SubscriptionPlan struct {
	gorm.Model
	Name        string     `gorm:"not null;uniqueIndex" json:"name"` // basic, premium, vip
	Description string     `json:"description"`
	Tier        AccessTier `gorm:"not null;default:'basic'" json:"tier"`

	DurationDays int `gorm:"not null" json:"duration_days"`
	PriceCents   int `gorm:"not null" json:"price_cents"`

	// For display purposes
	DisplayPrice string `gorm:"-" json:"display_price"` // e.g. "$9.99"
	IsPopular    bool   `gorm:"default:false" json:"is_popular"`

	StripePriceID string `json:"stripe_price_id"` // price_xxx from Stripe dashboard
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is one purchased (or admin-granted) plan period for a user.
// A user accumulates rows over time; the current one is active with
// ends_at still in the future.
type Subscription struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`
	PlanID uint `gorm:"not null" json:"plan_id"`

	Status   SubscriptionStatus `gorm:"not null;default:'active';index" json:"status"`
	StartsAt time.Time          `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time          `gorm:"not null;index" json:"ends_at"`

	// Financial information
	AmountCents           int    `json:"amount_cents"`
	Currency              string `gorm:"default:'usd'" json:"currency"`
	PaymentStatus         string `gorm:"default:'pending'" json:"payment_status"` // pending, completed, failed, refunded
	StripePaymentIntentID string `json:"stripe_payment_intent_id,omitempty"`
	ReceiptURL            string `json:"receipt_url,omitempty"`

	// Relations
	User User             `json:"-"`
	Plan SubscriptionPlan `json:"plan,omitempty"`
}

// IsCurrent reports whether the row should satisfy entitlement checks at
// the given instant.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s.Status == SubscriptionActive && !s.EndsAt.Before(now)
}
