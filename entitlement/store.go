package entitlement

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vidora/models"
)

// Store is the persistence surface the entitlement core depends on. The
// GORM implementation below is the production one; tests substitute an
// in-memory fake.
type Store interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	GetVideo(ctx context.Context, videoID uint) (*models.Video, error)

	// GetActiveGrant returns the usable grant for (user, video) at the given
	// instant, or nil when none exists. Absence is not an error.
	GetActiveGrant(ctx context.Context, userID, videoID uint, now time.Time) (*models.VideoAccessGrant, error)

	// GetActiveGrants returns usable grants for the user across a set of
	// videos, keyed by video ID.
	GetActiveGrants(ctx context.Context, userID uint, videoIDs []uint, now time.Time) (map[uint]*models.VideoAccessGrant, error)

	// GetCurrentSubscriptions returns every subscription for the user that
	// is active and not yet past its end, with the plan preloaded.
	GetCurrentSubscriptions(ctx context.Context, userID uint, now time.Time) ([]models.Subscription, error)

	// UpsertWatchHistory overwrites the (user, video) progress row, creating
	// it if absent. Last writer wins.
	UpsertWatchHistory(ctx context.Context, entry *models.WatchHistory) error

	// TouchWatchHistory bumps last_watched_at for (user, video), creating a
	// zero-progress row if absent. Existing progress is left alone.
	TouchWatchHistory(ctx context.Context, userID, videoID uint, now time.Time) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a GORM handle in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) GetVideo(ctx context.Context, videoID uint) (*models.Video, error) {
	var video models.Video
	if err := s.db.WithContext(ctx).First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return &video, nil
}

func (s *gormStore) GetActiveGrant(ctx context.Context, userID, videoID uint, now time.Time) (*models.VideoAccessGrant, error) {
	var grant models.VideoAccessGrant
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ? AND is_active = ?", userID, videoID, true).
		Where("expires_at IS NULL OR expires_at >= ?", now).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (s *gormStore) GetActiveGrants(ctx context.Context, userID uint, videoIDs []uint, now time.Time) (map[uint]*models.VideoAccessGrant, error) {
	result := make(map[uint]*models.VideoAccessGrant, len(videoIDs))
	if len(videoIDs) == 0 {
		return result, nil
	}

	var grants []models.VideoAccessGrant
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND video_id IN ? AND is_active = ?", userID, videoIDs, true).
		Where("expires_at IS NULL OR expires_at >= ?", now).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}

	for i := range grants {
		result[grants[i].VideoID] = &grants[i]
	}
	return result, nil
}

func (s *gormStore) GetCurrentSubscriptions(ctx context.Context, userID uint, now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND status = ? AND ends_at >= ?", userID, models.SubscriptionActive, now).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *gormStore) UpsertWatchHistory(ctx context.Context, entry *models.WatchHistory) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"watch_time_seconds", "progress", "last_watched_at", "updated_at"}),
		}).
		Create(entry).Error
}

func (s *gormStore) TouchWatchHistory(ctx context.Context, userID, videoID uint, now time.Time) error {
	entry := models.WatchHistory{
		UserID:        userID,
		VideoID:       videoID,
		LastWatchedAt: now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_watched_at", "updated_at"}),
		}).
		Create(&entry).Error
}
