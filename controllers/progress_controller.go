package controller

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"vidora/config"
	"vidora/entitlement"
	"vidora/models"
	"vidora/utils"
)

type ProgressController struct {
	DB       *gorm.DB
	Recorder *entitlement.Recorder
	Logger   *log.Logger
}

func NewProgressController(db *gorm.DB, logger *log.Logger) *ProgressController {
	return &ProgressController{
		DB:       db,
		Recorder: entitlement.NewRecorder(db, logger),
		Logger:   logger,
	}
}

type ProgressReport struct {
	WatchTimeSeconds int     `json:"watch_time_seconds" validate:"gte=0"`
	Progress         float64 `json:"progress" validate:"gte=0,lte=1"`
}

// ReportProgress upserts the caller's progress row for a video.
func (pc *ProgressController) ReportProgress(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	videoID := utils.ParseUint(c.Params("id"))
	if videoID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid video ID", nil)
	}

	var report ProgressReport
	if err := c.BodyParser(&report); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	err := pc.Recorder.RecordProgress(c.Context(), user.ID, videoID, report.WatchTimeSeconds, report.Progress)
	if err != nil {
		return respondEntitlementError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// GetWatchHistory returns the caller's progress rows, most recent first.
func (pc *ProgressController) GetWatchHistory(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, limit := utils.ParsePageLimit(c, 20)
	offset := (page - 1) * limit

	query := pc.DB.Where("user_id = ?", user.ID)

	var total int64
	query.Model(&models.WatchHistory{}).Count(&total)

	var history []models.WatchHistory
	if err := query.Order("last_watched_at DESC").Offset(offset).Limit(limit).Find(&history).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch watch history", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  history,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

type wsProgressMessage struct {
	VideoID          uint    `json:"video_id"`
	WatchTimeSeconds int     `json:"watch_time_seconds"`
	Progress         float64 `json:"progress"`
}

type wsProgressAck struct {
	VideoID uint   `json:"video_id"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// HandleProgressWS is the live progress channel. Players stream reports
// instead of POSTing on a timer. The token comes as a query param because
// browsers cannot set headers on websocket upgrades.
func HandleProgressWS(conn *websocket.Conn) {
	defer conn.Close()

	claims, err := utils.ParseJWTToken(conn.Query("token"))
	if err != nil {
		conn.WriteJSON(wsProgressAck{Status: "error", Error: "invalid token"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
		conn.WriteJSON(wsProgressAck{Status: "error", Error: "user not found"})
		return
	}

	recorder := entitlement.NewRecorder(config.DB, log.Default())

	for {
		var msg wsProgressMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		ack := wsProgressAck{VideoID: msg.VideoID, Status: "ok"}
		if err := recorder.RecordProgress(context.Background(), user.ID, msg.VideoID, msg.WatchTimeSeconds, msg.Progress); err != nil {
			ack.Status = "error"
			ack.Error = err.Error()
		}

		if err := conn.WriteJSON(ack); err != nil {
			return
		}
	}
}
