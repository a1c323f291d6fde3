package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vidora/models"
	"vidora/utils"
)

type AdminVideoController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAdminVideoController(db *gorm.DB, logger *log.Logger) *AdminVideoController {
	return &AdminVideoController{
		DB:     db,
		Logger: logger,
	}
}

type CreateVideoRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"omitempty,max=2000"`
	CategoryID      uint   `json:"category_id" validate:"required"`
	Tier            string `json:"tier" validate:"required,oneof=basic premium"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	PlaybackURL     string `json:"playback_url" validate:"omitempty,url"`
	ThumbnailURL    string `json:"thumbnail_url" validate:"omitempty,url"`
}

// CreateVideo registers a catalog entry. New videos start in processing
// until an admin activates them.
func (avc *AdminVideoController) CreateVideo(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	var req CreateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var category models.VideoCategory
	if err := avc.DB.First(&category, req.CategoryID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Category not found", nil)
	}

	video := models.Video{
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		Tier:            models.AccessTier(req.Tier),
		Status:          models.VideoProcessing,
		DurationSeconds: req.DurationSeconds,
		PlaybackURL:     req.PlaybackURL,
		ThumbnailURL:    req.ThumbnailURL,
	}
	if err := avc.DB.Create(&video).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create video", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"video_id": video.ID,
		"tier":     video.Tier,
	}).Info("video created")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(video))
}

type UpdateVideoRequest struct {
	Title           *string `json:"title" validate:"omitempty,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	CategoryID      *uint   `json:"category_id"`
	Tier            *string `json:"tier" validate:"omitempty,oneof=basic premium"`
	DurationSeconds *int    `json:"duration_seconds" validate:"omitempty,gte=0"`
	PlaybackURL     *string `json:"playback_url" validate:"omitempty,url"`
	ThumbnailURL    *string `json:"thumbnail_url" validate:"omitempty,url"`
}

// UpdateVideo patches video metadata. Status changes go through
// SetVideoStatus.
func (avc *AdminVideoController) UpdateVideo(c *fiber.Ctx) error {
	videoID := utils.ParseUint(c.Params("id"))
	if videoID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid video ID", nil)
	}

	var req UpdateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var video models.Video
	if err := avc.DB.First(&video, videoID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Video not found", nil)
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CategoryID != nil {
		var category models.VideoCategory
		if err := avc.DB.First(&category, *req.CategoryID).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Category not found", nil)
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Tier != nil {
		updates["tier"] = *req.Tier
	}
	if req.DurationSeconds != nil {
		updates["duration_seconds"] = *req.DurationSeconds
	}
	if req.PlaybackURL != nil {
		updates["playback_url"] = *req.PlaybackURL
	}
	if req.ThumbnailURL != nil {
		updates["thumbnail_url"] = *req.ThumbnailURL
	}

	if len(updates) > 0 {
		if err := avc.DB.Model(&video).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update video", err)
		}
	}

	return c.JSON(utils.SuccessResponse(video))
}

type SetVideoStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive processing"`
}

// SetVideoStatus toggles availability. Deactivating a video denies
// everyone, including admins, until it is reactivated.
func (avc *AdminVideoController) SetVideoStatus(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	videoID := utils.ParseUint(c.Params("id"))
	if videoID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid video ID", nil)
	}

	var req SetVideoStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var video models.Video
	if err := avc.DB.First(&video, videoID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Video not found", nil)
	}

	if err := avc.DB.Model(&video).Update("status", req.Status).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update status", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"video_id": video.ID,
		"status":   req.Status,
	}).Info("video status updated")

	return c.JSON(utils.SuccessResponse(video))
}

// AdminVideoFilter enumerates the recognized admin listing filters.
type AdminVideoFilter struct {
	Status     string
	Tier       string
	CategoryID uint
	Search     string
	Page       int
	Limit      int
}

func parseAdminVideoFilter(c *fiber.Ctx) AdminVideoFilter {
	page, limit := utils.ParsePageLimit(c, 20)

	return AdminVideoFilter{
		Status:     c.Query("status"),
		Tier:       c.Query("tier"),
		CategoryID: utils.ParseUint(c.Query("category_id")),
		Search:     c.Query("search"),
		Page:       page,
		Limit:      limit,
	}
}

// GetVideos lists the full catalog, inactive and processing included.
func (avc *AdminVideoController) GetVideos(c *fiber.Ctx) error {
	filter := parseAdminVideoFilter(c)

	query := avc.DB.Preload("Category").Model(&models.Video{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Tier != "" {
		query = query.Where("tier = ?", filter.Tier)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	query.Count(&total)

	var videos []models.Video
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&videos).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch videos", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  videos,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// DeleteVideo removes a video along with its grants and watch history.
func (avc *AdminVideoController) DeleteVideo(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	videoID := utils.ParseUint(c.Params("id"))
	if videoID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid video ID", nil)
	}

	var video models.Video
	if err := avc.DB.First(&video, videoID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Video not found", nil)
	}

	err := avc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", video.ID).Delete(&models.VideoAccessGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", video.ID).Delete(&models.WatchHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&video).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete video", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"video_id": videoID,
	}).Info("video deleted")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Video deleted",
	})
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// GetCategories lists all categories.
func (avc *AdminVideoController) GetCategories(c *fiber.Ctx) error {
	var categories []models.VideoCategory
	if err := avc.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch categories", err)
	}
	return c.JSON(utils.SuccessResponse(categories))
}

// CreateCategory adds a catalog category.
func (avc *AdminVideoController) CreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.VideoCategory
	if err := avc.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Category already exists", nil)
	}

	category := models.VideoCategory{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := avc.DB.Create(&category).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create category", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(category))
}

// UpdateCategory renames or re-describes a category.
func (avc *AdminVideoController) UpdateCategory(c *fiber.Ctx) error {
	categoryID := utils.ParseUint(c.Params("id"))
	if categoryID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid category ID", nil)
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var category models.VideoCategory
	if err := avc.DB.First(&category, categoryID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Category not found", nil)
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}
	if err := avc.DB.Model(&category).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update category", err)
	}

	return c.JSON(utils.SuccessResponse(category))
}

// DeleteCategory removes a category with no videos left in it.
func (avc *AdminVideoController) DeleteCategory(c *fiber.Ctx) error {
	categoryID := utils.ParseUint(c.Params("id"))
	if categoryID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid category ID", nil)
	}

	var category models.VideoCategory
	if err := avc.DB.First(&category, categoryID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Category not found", nil)
	}

	var videoCount int64
	avc.DB.Model(&models.Video{}).Where("category_id = ?", categoryID).Count(&videoCount)
	if videoCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Category still has videos", nil)
	}

	if err := avc.DB.Delete(&category).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete category", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Category deleted",
	})
}
