package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessTierOrdering(t *testing.T) {
	assert.True(t, TierPremium.Covers(TierBasic))
	assert.True(t, TierVIP.Covers(TierPremium))
	assert.True(t, TierVIP.Covers(TierBasic))
	assert.True(t, TierBasic.Covers(TierBasic))
	assert.False(t, TierBasic.Covers(TierPremium))
	assert.False(t, TierPremium.Covers(TierVIP))
}

func TestAccessTierUnknownNeverCovers(t *testing.T) {
	assert.False(t, AccessTier("gold").Covers(TierBasic))
	assert.False(t, AccessTier("").Covers(TierBasic))
	assert.False(t, AccessTier("gold").IsValid())
	assert.True(t, TierVIP.IsValid())
}

func TestSubscriptionIsCurrent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status SubscriptionStatus
		endsAt time.Time
		want   bool
	}{
		{"active and unexpired", SubscriptionActive, now.AddDate(0, 0, 7), true},
		{"active ending exactly now", SubscriptionActive, now, true},
		{"active but past end", SubscriptionActive, now.AddDate(0, 0, -1), false},
		{"cancelled", SubscriptionCancelled, now.AddDate(0, 0, 7), false},
		{"expired status", SubscriptionExpired, now.AddDate(0, 0, 7), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Subscription{Status: tt.status, EndsAt: tt.endsAt}
			assert.Equal(t, tt.want, s.IsCurrent(now))
		})
	}
}

func TestGrantIsUsable(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name      string
		active    bool
		expiresAt *time.Time
		want      bool
	}{
		{"active without expiry", true, nil, true},
		{"active expiring tomorrow", true, &tomorrow, true},
		{"active expiring exactly now", true, &now, true},
		{"active but expired", true, &yesterday, false},
		{"inactive", false, nil, false},
		{"inactive and expired", false, &yesterday, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := VideoAccessGrant{IsActive: tt.active, ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, g.IsUsable(now))
		})
	}
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleStudent}).IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
}
