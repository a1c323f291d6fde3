package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"vidora/models"
)

// ExpiryWorker sweeps time-driven state transitions: subscriptions past
// their end become expired and grants past their expiry lose the active
// flag. The entitlement resolver already compares timestamps itself, so
// the sweep is bookkeeping for listings and analytics, not a correctness
// requirement.
type ExpiryWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewExpiryWorker(db *gorm.DB, logger *log.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		DB:     db,
		Logger: logger,
	}
}

func (ew *ExpiryWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	ew.Logger.Println("Expiry worker started")

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	ew.sweep()
	for {
		select {
		case <-ctx.Done():
			ew.Logger.Println("Expiry worker shutting down...")
			return
		case <-ticker.C:
			ew.sweep()
		}
	}
}

func (ew *ExpiryWorker) sweep() {
	now := time.Now()

	result := ew.DB.Model(&models.Subscription{}).
		Where("status = ? AND ends_at < ?", models.SubscriptionActive, now).
		Update("status", models.SubscriptionExpired)
	if result.Error != nil {
		ew.Logger.Printf("Error expiring subscriptions: %v", result.Error)
	} else if result.RowsAffected > 0 {
		ew.Logger.Printf("Expired %d subscriptions", result.RowsAffected)
	}

	result = ew.DB.Model(&models.VideoAccessGrant{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		ew.Logger.Printf("Error expiring grants: %v", result.Error)
	} else if result.RowsAffected > 0 {
		ew.Logger.Printf("Deactivated %d expired grants", result.RowsAffected)
	}
}
