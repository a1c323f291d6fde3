package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vidora/models"
	"vidora/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type StudentStats struct {
	VideosStarted     int64 `json:"videos_started"`
	VideosCompleted   int64 `json:"videos_completed"`
	TotalWatchSeconds int64 `json:"total_watch_seconds"`
}

type ContinueWatchingItem struct {
	Video         models.Video `json:"video"`
	Progress      float64      `json:"progress"`
	LastWatchedAt time.Time    `json:"last_watched_at"`
}

// GetStudentStats returns the caller's aggregate watching figures.
func (dc *DashboardController) GetStudentStats(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var stats StudentStats

	if err := dc.DB.Model(&models.WatchHistory{}).
		Where("user_id = ?", user.ID).
		Count(&stats.VideosStarted).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get watch stats", err)
	}

	dc.DB.Model(&models.WatchHistory{}).
		Where("user_id = ? AND progress >= ?", user.ID, 0.95).
		Count(&stats.VideosCompleted)

	dc.DB.Model(&models.WatchHistory{}).
		Where("user_id = ?", user.ID).
		Select("COALESCE(SUM(watch_time_seconds), 0)").
		Scan(&stats.TotalWatchSeconds)

	return c.JSON(utils.SuccessResponse(stats))
}

// GetContinueWatching returns partially watched active videos, most recent
// first.
func (dc *DashboardController) GetContinueWatching(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	var history []models.WatchHistory
	err := dc.DB.
		Joins("JOIN videos ON videos.id = watch_histories.video_id AND videos.status = ? AND videos.deleted_at IS NULL", models.VideoActive).
		Where("watch_histories.user_id = ? AND watch_histories.progress > 0 AND watch_histories.progress < ?", user.ID, 0.95).
		Order("watch_histories.last_watched_at DESC").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch continue watching", err)
	}

	items := make([]ContinueWatchingItem, 0, len(history))
	for _, h := range history {
		var video models.Video
		if err := dc.DB.Preload("Category").First(&video, h.VideoID).Error; err != nil {
			continue
		}
		items = append(items, ContinueWatchingItem{
			Video:         video,
			Progress:      h.Progress,
			LastWatchedAt: h.LastWatchedAt,
		})
	}

	return c.JSON(utils.SuccessResponse(items))
}

type AdminStats struct {
	TotalUsers          int64 `json:"total_users"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	TotalVideos         int64 `json:"total_videos"`
	ActiveVideos        int64 `json:"active_videos"`
	WatchEventsToday    int64 `json:"watch_events_today"`
}

// GetAdminStats returns platform-wide figures for the admin console.
func (dc *DashboardController) GetAdminStats(c *fiber.Ctx) error {
	var stats AdminStats

	dc.DB.Model(&models.User{}).Count(&stats.TotalUsers)
	dc.DB.Model(&models.Subscription{}).
		Where("status = ? AND ends_at >= ?", models.SubscriptionActive, time.Now()).
		Count(&stats.ActiveSubscriptions)
	dc.DB.Model(&models.Video{}).Count(&stats.TotalVideos)
	dc.DB.Model(&models.Video{}).Where("status = ?", models.VideoActive).Count(&stats.ActiveVideos)

	startOfDay := time.Now().Truncate(24 * time.Hour)
	dc.DB.Model(&models.WatchHistory{}).
		Where("last_watched_at >= ?", startOfDay).
		Count(&stats.WatchEventsToday)

	return c.JSON(utils.SuccessResponse(stats))
}
