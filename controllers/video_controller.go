package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"vidora/entitlement"
	"vidora/models"
	"vidora/utils"
)

type VideoController struct {
	DB       *gorm.DB
	Resolver *entitlement.Resolver
	Recorder *entitlement.Recorder
	Logger   *log.Logger
}

func NewVideoController(db *gorm.DB, logger *log.Logger) *VideoController {
	return &VideoController{
		DB:       db,
		Resolver: entitlement.NewResolver(db, logger),
		Recorder: entitlement.NewRecorder(db, logger),
		Logger:   logger,
	}
}

// CatalogFilter enumerates the recognized listing filters. Unknown query
// params are ignored rather than passed into the query.
type CatalogFilter struct {
	CategoryID uint
	Tier       models.AccessTier
	Search     string
	Page       int
	Limit      int
}

func parseCatalogFilter(c *fiber.Ctx) CatalogFilter {
	page, limit := utils.ParsePageLimit(c, 20)

	return CatalogFilter{
		CategoryID: utils.ParseUint(c.Query("category_id")),
		Tier:       models.AccessTier(c.Query("tier")),
		Search:     c.Query("search"),
		Page:       page,
		Limit:      limit,
	}
}

// GetVideos returns the visible catalog with a can_access flag per video,
// computed by the same policy that gates playback.
func (vc *VideoController) GetVideos(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	filter := parseCatalogFilter(c)

	// Students browse active videos only
	query := vc.DB.Preload("Category").Where("status = ?", models.VideoActive)

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Tier != "" {
		if !filter.Tier.IsValid() {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tier filter", nil)
		}
		query = query.Where("tier = ?", filter.Tier)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Model(&models.Video{}).Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count videos", err)
	}

	var videos []models.Video
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&videos).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch videos", err)
	}

	annotated, err := vc.Resolver.AnnotateCatalog(c.Context(), user.ID, videos)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to annotate catalog", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  annotated,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// GetVideo resolves entitlement for one video. An allow returns the
// playback URL and records the watch; a deny returns 403 with the reason.
func (vc *VideoController) GetVideo(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	videoID := utils.ParseUint(c.Params("id"))
	if videoID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid video ID", nil)
	}

	decision, err := vc.Resolver.ResolveAccess(c.Context(), user.ID, videoID)
	if err != nil {
		return respondEntitlementError(c, err)
	}

	if !decision.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success":  false,
			"decision": decision,
		})
	}

	var video models.Video
	if err := vc.DB.Preload("Category").First(&video, videoID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load video", err)
	}

	if err := vc.Recorder.TouchWatch(c.Context(), user.ID, videoID); err != nil {
		// The user already has access; losing the touch is not worth a 500
		vc.Logger.Printf("failed to touch watch history: user=%d video=%d: %v", user.ID, videoID, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"decision": decision,
		"video":    video,
	})
}

// respondEntitlementError maps core errors onto HTTP statuses.
func respondEntitlementError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, entitlement.ErrVideoNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Video not found", nil)
	case errors.Is(err, entitlement.ErrUserNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	case entitlement.IsValidation(err):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid input", err)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Entitlement check failed", err)
	}
}
