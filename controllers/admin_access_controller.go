package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vidora/models"
	"vidora/utils"
)

// AdminAccessController manages explicit grants and admin-issued
// subscriptions.
type AdminAccessController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAdminAccessController(db *gorm.DB, logger *log.Logger) *AdminAccessController {
	return &AdminAccessController{
		DB:     db,
		Logger: logger,
	}
}

type CreateGrantRequest struct {
	UserID    uint       `json:"user_id" validate:"required"`
	VideoID   uint       `json:"video_id" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CreateGrant gives a user access to one video regardless of their
// subscription. Re-granting reactivates an existing row.
func (aac *AdminAccessController) CreateGrant(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	var req CreateGrantRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Expiry must be in the future", nil)
	}

	var user models.User
	if err := aac.DB.First(&user, req.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	var video models.Video
	if err := aac.DB.First(&video, req.VideoID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Video not found", nil)
	}

	var grant models.VideoAccessGrant
	err := aac.DB.Where("user_id = ? AND video_id = ?", req.UserID, req.VideoID).First(&grant).Error
	if err == nil {
		updates := map[string]interface{}{
			"is_active":     true,
			"granted_at":    time.Now(),
			"expires_at":    req.ExpiresAt,
			"granted_by_id": admin.ID,
		}
		if err := aac.DB.Model(&grant).Updates(updates).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update grant", err)
		}
	} else {
		grant = models.VideoAccessGrant{
			UserID:      req.UserID,
			VideoID:     req.VideoID,
			AccessType:  models.AccessTypeGranted,
			GrantedAt:   time.Now(),
			ExpiresAt:   req.ExpiresAt,
			IsActive:    true,
			GrantedByID: &admin.ID,
		}
		if err := aac.DB.Create(&grant).Error; err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create grant", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"user_id":  req.UserID,
		"video_id": req.VideoID,
		"grant_id": grant.ID,
	}).Info("video access granted")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(grant))
}

// RevokeGrant flips a grant's active flag off.
func (aac *AdminAccessController) RevokeGrant(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	grantID := utils.ParseUint(c.Params("id"))
	if grantID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid grant ID", nil)
	}

	var grant models.VideoAccessGrant
	if err := aac.DB.First(&grant, grantID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Grant not found", nil)
	}

	if err := aac.DB.Model(&grant).Update("is_active", false).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to revoke grant", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"grant_id": grant.ID,
	}).Info("video access revoked")

	return c.JSON(utils.SuccessResponse(grant))
}

// GrantFilter enumerates the recognized grant listing filters.
type GrantFilter struct {
	UserID  uint
	VideoID uint
	Active  *bool
	Page    int
	Limit   int
}

func parseGrantFilter(c *fiber.Ctx) GrantFilter {
	page, limit := utils.ParsePageLimit(c, 20)

	filter := GrantFilter{
		UserID:  utils.ParseUint(c.Query("user_id")),
		VideoID: utils.ParseUint(c.Query("video_id")),
		Page:    page,
		Limit:   limit,
	}
	if active := c.Query("active"); active != "" {
		filter.Active = utils.Pointer(active == "true")
	}
	return filter
}

// GetGrants lists grants with optional user/video/active filters.
func (aac *AdminAccessController) GetGrants(c *fiber.Ctx) error {
	filter := parseGrantFilter(c)

	query := aac.DB.Model(&models.VideoAccessGrant{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.VideoID != 0 {
		query = query.Where("video_id = ?", filter.VideoID)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	var total int64
	query.Count(&total)

	var grants []models.VideoAccessGrant
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&grants).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch grants", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  grants,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

type GrantSubscriptionRequest struct {
	UserID uint `json:"user_id" validate:"required"`
	PlanID uint `json:"plan_id" validate:"required"`
}

// GrantSubscription issues a subscription without payment, e.g. for
// support cases or partner accounts.
func (aac *AdminAccessController) GrantSubscription(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	var req GrantSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var user models.User
	if err := aac.DB.First(&user, req.UserID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	var plan models.SubscriptionPlan
	if err := aac.DB.First(&plan, req.PlanID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Plan not found", nil)
	}

	now := time.Now()
	subscription := models.Subscription{
		UserID:        user.ID,
		PlanID:        plan.ID,
		Status:        models.SubscriptionActive,
		StartsAt:      now,
		EndsAt:        now.AddDate(0, 0, plan.DurationDays),
		AmountCents:   0,
		Currency:      "usd",
		PaymentStatus: "completed",
	}
	if err := aac.DB.Create(&subscription).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create subscription", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id":        admin.ID,
		"user_id":         user.ID,
		"plan_id":         plan.ID,
		"subscription_id": subscription.ID,
	}).Info("subscription granted")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(subscription))
}

// CancelSubscription marks a subscription cancelled, ending access at once.
func (aac *AdminAccessController) CancelSubscription(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	subscriptionID := utils.ParseUint(c.Params("id"))
	if subscriptionID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid subscription ID", nil)
	}

	var subscription models.Subscription
	if err := aac.DB.First(&subscription, subscriptionID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Subscription not found", nil)
	}

	if err := aac.DB.Model(&subscription).Update("status", models.SubscriptionCancelled).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel subscription", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id":        admin.ID,
		"subscription_id": subscription.ID,
	}).Info("subscription cancelled")

	return c.JSON(utils.SuccessResponse(subscription))
}

// SubscriptionFilter enumerates the recognized subscription listing
// filters.
type SubscriptionFilter struct {
	UserID uint
	Status string
	Page   int
	Limit  int
}

func parseSubscriptionFilter(c *fiber.Ctx) SubscriptionFilter {
	page, limit := utils.ParsePageLimit(c, 20)

	return SubscriptionFilter{
		UserID: utils.ParseUint(c.Query("user_id")),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}
}

// GetSubscriptions lists subscriptions with optional user/status filters.
func (aac *AdminAccessController) GetSubscriptions(c *fiber.Ctx) error {
	filter := parseSubscriptionFilter(c)

	query := aac.DB.Preload("Plan").Model(&models.Subscription{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		switch models.SubscriptionStatus(filter.Status) {
		case models.SubscriptionActive, models.SubscriptionExpired, models.SubscriptionCancelled:
			query = query.Where("status = ?", filter.Status)
		default:
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status filter", nil)
		}
	}

	var total int64
	query.Count(&total)

	var subscriptions []models.Subscription
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&subscriptions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch subscriptions", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  subscriptions,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}
