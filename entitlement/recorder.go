package entitlement

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"vidora/models"
)

// Recorder persists watch progress. It is deliberately thin: validation,
// then an atomic upsert keyed by (user, video).
type Recorder struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
}

func NewRecorder(db *gorm.DB, logger *log.Logger) *Recorder {
	return NewRecorderWithStore(NewStore(db), logger)
}

func NewRecorderWithStore(store Store, logger *log.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// RecordProgress overwrites the progress row for (user, video). Progress
// must be within [0,1] and watch time non-negative; invalid input fails
// before any write. Lower-than-previous progress is accepted (re-watching
// from the start resets the row).
func (r *Recorder) RecordProgress(ctx context.Context, userID, videoID uint, watchTimeSeconds int, progress float64) error {
	if progress < 0 || progress > 1 {
		return &ValidationError{Field: "progress", Message: "must be between 0 and 1"}
	}
	if watchTimeSeconds < 0 {
		return &ValidationError{Field: "watch_time_seconds", Message: "must not be negative"}
	}

	if _, err := r.store.GetUser(ctx, userID); err != nil {
		return err
	}
	if _, err := r.store.GetVideo(ctx, videoID); err != nil {
		return err
	}

	entry := models.WatchHistory{
		UserID:           userID,
		VideoID:          videoID,
		WatchTimeSeconds: watchTimeSeconds,
		Progress:         progress,
		LastWatchedAt:    r.now(),
	}
	return r.store.UpsertWatchHistory(ctx, &entry)
}

// TouchWatch marks the video as watched just now, creating a zero-progress
// row if none exists. Called after a successful access decision.
func (r *Recorder) TouchWatch(ctx context.Context, userID, videoID uint) error {
	return r.store.TouchWatchHistory(ctx, userID, videoID, r.now())
}
