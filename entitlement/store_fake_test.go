package entitlement

import (
	"context"
	"time"

	"vidora/models"
)

// fakeStore is an in-memory Store used by the resolver and recorder tests.
type fakeStore struct {
	users  map[uint]*models.User
	videos map[uint]*models.Video
	grants []models.VideoAccessGrant
	subs   []models.Subscription

	history map[[2]uint]*models.WatchHistory
	writes  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[uint]*models.User),
		videos:  make(map[uint]*models.Video),
		history: make(map[[2]uint]*models.WatchHistory),
	}
}

func (f *fakeStore) GetUser(_ context.Context, userID uint) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeStore) GetVideo(_ context.Context, videoID uint) (*models.Video, error) {
	video, ok := f.videos[videoID]
	if !ok {
		return nil, ErrVideoNotFound
	}
	return video, nil
}

func (f *fakeStore) GetActiveGrant(_ context.Context, userID, videoID uint, now time.Time) (*models.VideoAccessGrant, error) {
	for i := range f.grants {
		g := &f.grants[i]
		if g.UserID == userID && g.VideoID == videoID && g.IsUsable(now) {
			return g, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetActiveGrants(_ context.Context, userID uint, videoIDs []uint, now time.Time) (map[uint]*models.VideoAccessGrant, error) {
	wanted := make(map[uint]bool, len(videoIDs))
	for _, id := range videoIDs {
		wanted[id] = true
	}

	result := make(map[uint]*models.VideoAccessGrant)
	for i := range f.grants {
		g := &f.grants[i]
		if g.UserID == userID && wanted[g.VideoID] && g.IsUsable(now) {
			result[g.VideoID] = g
		}
	}
	return result, nil
}

func (f *fakeStore) GetCurrentSubscriptions(_ context.Context, userID uint, now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	for _, s := range f.subs {
		if s.UserID == userID && s.IsCurrent(now) {
			subs = append(subs, s)
		}
	}
	return subs, nil
}

func (f *fakeStore) UpsertWatchHistory(_ context.Context, entry *models.WatchHistory) error {
	f.writes++
	key := [2]uint{entry.UserID, entry.VideoID}
	if existing, ok := f.history[key]; ok {
		existing.WatchTimeSeconds = entry.WatchTimeSeconds
		existing.Progress = entry.Progress
		existing.LastWatchedAt = entry.LastWatchedAt
		return nil
	}
	clone := *entry
	f.history[key] = &clone
	return nil
}

func (f *fakeStore) TouchWatchHistory(_ context.Context, userID, videoID uint, now time.Time) error {
	f.writes++
	key := [2]uint{userID, videoID}
	if existing, ok := f.history[key]; ok {
		existing.LastWatchedAt = now
		return nil
	}
	f.history[key] = &models.WatchHistory{
		UserID:        userID,
		VideoID:       videoID,
		LastWatchedAt: now,
	}
	return nil
}
