package entitlement

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vidora/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testResolver(store Store) *Resolver {
	r := NewResolverWithStore(store, log.New(io.Discard, "", 0))
	r.now = func() time.Time { return testNow }
	return r
}

func testUser(id uint) *models.User {
	return &models.User{Model: gorm.Model{ID: id}, Email: "u@example.com", Role: models.RoleStudent, IsActive: true}
}

func testVideo(id uint, tier models.AccessTier, status models.VideoStatus) *models.Video {
	return &models.Video{Model: gorm.Model{ID: id}, Title: "v", CategoryID: 1, Tier: tier, Status: status}
}

func testSubscription(id, userID uint, tier models.AccessTier, status models.SubscriptionStatus, endsAt time.Time) models.Subscription {
	return models.Subscription{
		Model:    gorm.Model{ID: id},
		UserID:   userID,
		PlanID:   id,
		Status:   status,
		StartsAt: endsAt.AddDate(0, -1, 0),
		EndsAt:   endsAt,
		Plan:     models.SubscriptionPlan{Model: gorm.Model{ID: id}, Name: string(tier), Tier: tier},
	}
}

func testGrant(id, userID, videoID uint, active bool, expiresAt *time.Time) models.VideoAccessGrant {
	return models.VideoAccessGrant{
		Model:     gorm.Model{ID: id},
		UserID:    userID,
		VideoID:   videoID,
		IsActive:  active,
		GrantedAt: testNow.AddDate(0, 0, -7),
		ExpiresAt: expiresAt,
	}
}

func TestResolveAccessBasicVideoNeedsNoSubscription(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierBasic, models.VideoActive)

	decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonTierBasic, decision.Reason)
}

func TestResolveAccessInactiveVideoDeniedForEveryone(t *testing.T) {
	nextWeek := testNow.AddDate(0, 0, 7)

	for _, status := range []models.VideoStatus{models.VideoInactive, models.VideoProcessing} {
		store := newFakeStore()
		store.users[1] = testUser(1)
		store.videos[10] = testVideo(10, models.TierPremium, status)
		// Even a current VIP subscription and a standing grant do not help.
		store.subs = []models.Subscription{testSubscription(1, 1, models.TierVIP, models.SubscriptionActive, nextWeek)}
		store.grants = []models.VideoAccessGrant{testGrant(1, 1, 10, true, nil)}

		decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
		require.NoError(t, err)
		assert.False(t, decision.Allowed, "status %s", status)
		assert.Equal(t, ReasonVideoUnavailable, decision.Reason)
	}
}

func TestResolveAccessExplicitGrantWithoutSubscription(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
	store.grants = []models.VideoAccessGrant{testGrant(5, 1, 10, true, nil)}

	decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonExplicitGrant, decision.Reason)
	require.NotNil(t, decision.MatchedGrantID)
	assert.Equal(t, uint(5), *decision.MatchedGrantID)
}

func TestResolveAccessStaleGrantIsIgnored(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)

	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
	store.grants = []models.VideoAccessGrant{testGrant(5, 1, 10, true, &yesterday)}

	decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoSubscription, decision.Reason)
}

func TestResolveAccessStaleGrantFallsThroughToSubscription(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	nextWeek := testNow.AddDate(0, 0, 7)

	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
	store.grants = []models.VideoAccessGrant{testGrant(5, 1, 10, true, &yesterday)}
	store.subs = []models.Subscription{testSubscription(1, 1, models.TierBasic, models.SubscriptionActive, nextWeek)}

	decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonTierInsufficient, decision.Reason)
}

func TestResolveAccessDeactivatedGrantIsIgnored(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
	store.grants = []models.VideoAccessGrant{testGrant(5, 1, 10, false, nil)}

	decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNoSubscription, decision.Reason)
}

func TestResolveAccessSubscriptionTiers(t *testing.T) {
	nextWeek := testNow.AddDate(0, 0, 7)

	tests := []struct {
		name       string
		planTier   models.AccessTier
		wantAllow  bool
		wantReason Reason
	}{
		{"basic plan denied for premium video", models.TierBasic, false, ReasonTierInsufficient},
		{"premium plan allowed", models.TierPremium, true, ReasonSubscriptionSufficient},
		{"vip plan allowed", models.TierVIP, true, ReasonSubscriptionSufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.users[1] = testUser(1)
			store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
			store.subs = []models.Subscription{testSubscription(3, 1, tt.planTier, models.SubscriptionActive, nextWeek)}

			decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllow, decision.Allowed)
			assert.Equal(t, tt.wantReason, decision.Reason)
			if tt.wantAllow {
				require.NotNil(t, decision.MatchedSubscriptionID)
				assert.Equal(t, uint(3), *decision.MatchedSubscriptionID)
			}
		})
	}
}

func TestResolveAccessNoCurrentSubscription(t *testing.T) {
	lastWeek := testNow.AddDate(0, 0, -7)
	nextWeek := testNow.AddDate(0, 0, 7)

	tests := []struct {
		name string
		sub  models.Subscription
	}{
		{"expired", testSubscription(1, 1, models.TierVIP, models.SubscriptionActive, lastWeek)},
		{"cancelled", testSubscription(1, 1, models.TierVIP, models.SubscriptionCancelled, nextWeek)},
		{"status expired", testSubscription(1, 1, models.TierVIP, models.SubscriptionExpired, nextWeek)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.users[1] = testUser(1)
			store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
			store.subs = []models.Subscription{tt.sub}

			decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
			require.NoError(t, err)
			assert.False(t, decision.Allowed)
			assert.Equal(t, ReasonNoSubscription, decision.Reason)
		})
	}
}

func TestResolveAccessPicksMostPermissiveSubscription(t *testing.T) {
	nextWeek := testNow.AddDate(0, 0, 7)
	nextMonth := testNow.AddDate(0, 1, 0)

	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
	// A newer basic subscription must not shadow the older premium one.
	store.subs = []models.Subscription{
		testSubscription(7, 1, models.TierPremium, models.SubscriptionActive, nextWeek),
		testSubscription(8, 1, models.TierBasic, models.SubscriptionActive, nextMonth),
	}

	decision, err := testResolver(store).ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonSubscriptionSufficient, decision.Reason)
	require.NotNil(t, decision.MatchedSubscriptionID)
	assert.Equal(t, uint(7), *decision.MatchedSubscriptionID)
}

func TestResolveAccessMonotonicity(t *testing.T) {
	// Adding a subscription or a grant never turns an allow into a deny.
	nextWeek := testNow.AddDate(0, 0, 7)

	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierPremium, models.VideoActive)
	store.subs = []models.Subscription{testSubscription(1, 1, models.TierPremium, models.SubscriptionActive, nextWeek)}

	resolver := testResolver(store)
	before, err := resolver.ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, before.Allowed)

	store.subs = append(store.subs, testSubscription(2, 1, models.TierBasic, models.SubscriptionActive, nextWeek))
	store.grants = append(store.grants, testGrant(3, 1, 10, true, nil))

	after, err := resolver.ResolveAccess(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, after.Allowed)
}

func TestResolveAccessUnknownEntities(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierBasic, models.VideoActive)

	resolver := testResolver(store)

	_, err := resolver.ResolveAccess(context.Background(), 99, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = resolver.ResolveAccess(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestAnnotateCatalogMatchesResolveAccess(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	nextWeek := testNow.AddDate(0, 0, 7)

	store := newFakeStore()
	store.users[1] = testUser(1)

	videos := []models.Video{
		*testVideo(1, models.TierBasic, models.VideoActive),
		*testVideo(2, models.TierBasic, models.VideoInactive),
		*testVideo(3, models.TierPremium, models.VideoActive),
		*testVideo(4, models.TierPremium, models.VideoActive),   // granted
		*testVideo(5, models.TierPremium, models.VideoActive),   // stale grant
		*testVideo(6, models.TierPremium, models.VideoInactive), // granted but unavailable
		*testVideo(7, models.TierPremium, models.VideoProcessing),
	}
	for i := range videos {
		store.videos[videos[i].ID] = &videos[i]
	}
	store.grants = []models.VideoAccessGrant{
		testGrant(1, 1, 4, true, nil),
		testGrant(2, 1, 5, true, &yesterday),
		testGrant(3, 1, 6, true, nil),
	}
	store.subs = []models.Subscription{
		testSubscription(1, 1, models.TierBasic, models.SubscriptionActive, nextWeek),
	}

	resolver := testResolver(store)

	annotated, err := resolver.AnnotateCatalog(context.Background(), 1, videos)
	require.NoError(t, err)
	require.Len(t, annotated, len(videos))

	for i, av := range annotated {
		decision, err := resolver.ResolveAccess(context.Background(), 1, videos[i].ID)
		require.NoError(t, err)
		assert.Equal(t, decision.Allowed, av.CanAccess, "video %d", videos[i].ID)
	}
}

func TestAnnotateCatalogEmpty(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)

	annotated, err := testResolver(store).AnnotateCatalog(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, annotated)
}

func TestBestSubscriptionTieBreaksOnEndDate(t *testing.T) {
	nextWeek := testNow.AddDate(0, 0, 7)
	nextMonth := testNow.AddDate(0, 1, 0)

	subs := []models.Subscription{
		testSubscription(1, 1, models.TierPremium, models.SubscriptionActive, nextWeek),
		testSubscription(2, 1, models.TierPremium, models.SubscriptionActive, nextMonth),
	}

	best := bestSubscription(subs, testNow)
	require.NotNil(t, best)
	assert.Equal(t, uint(2), best.ID)
}
