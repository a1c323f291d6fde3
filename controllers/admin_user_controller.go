package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"vidora/models"
	"vidora/utils"
)

type AdminUserController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAdminUserController(db *gorm.DB, logger *log.Logger) *AdminUserController {
	return &AdminUserController{
		DB:     db,
		Logger: logger,
	}
}

// UserFilter enumerates the recognized admin listing filters.
type UserFilter struct {
	Email  string
	Role   string
	Active *bool
	Page   int
	Limit  int
}

func parseUserFilter(c *fiber.Ctx) UserFilter {
	page, limit := utils.ParsePageLimit(c, 20)

	filter := UserFilter{
		Email: c.Query("email"),
		Role:  c.Query("role"),
		Page:  page,
		Limit: limit,
	}
	if active := c.Query("active"); active != "" {
		filter.Active = utils.Pointer(active == "true")
	}
	return filter
}

// GetUsers returns a paginated, filtered user listing.
func (ac *AdminUserController) GetUsers(c *fiber.Ctx) error {
	filter := parseUserFilter(c)

	query := ac.DB.Model(&models.User{})
	if filter.Email != "" {
		query = query.Where("email ILIKE ?", "%"+filter.Email+"%")
	}
	if filter.Role != "" {
		if filter.Role != models.RoleStudent && filter.Role != models.RoleAdmin {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid role filter", nil)
		}
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&users).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch users", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  users,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student admin"`
}

// UpdateUserRole changes a user's role. Role is immutable outside this
// endpoint.
func (ac *AdminUserController) UpdateUserRole(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	userID := utils.ParseUint(c.Params("id"))
	if userID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", nil)
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	if err := ac.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update role", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"user_id":  user.ID,
		"role":     req.Role,
	}).Info("user role updated")

	return c.JSON(utils.SuccessResponse(user))
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// SetUserActive enables or disables an account. Disabled accounts fail
// authentication immediately.
func (ac *AdminUserController) SetUserActive(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	userID := utils.ParseUint(c.Params("id"))
	if userID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", nil)
	}
	if userID == admin.ID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot deactivate your own account", nil)
	}

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	updates := map[string]interface{}{
		"is_active": req.IsActive,
	}
	if !req.IsActive {
		// Kill outstanding tokens as well
		updates["token_version"] = user.TokenVersion + 1
	}
	if err := ac.DB.Model(&user).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update user", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id":  admin.ID,
		"user_id":   user.ID,
		"is_active": req.IsActive,
	}).Info("user active flag updated")

	return c.JSON(utils.SuccessResponse(user))
}

// DeleteUser removes an account. Subscriptions, grants and watch history
// go with it.
func (ac *AdminUserController) DeleteUser(c *fiber.Ctx) error {
	admin := c.Locals("user").(*models.User)

	userID := utils.ParseUint(c.Params("id"))
	if userID == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", nil)
	}
	if userID == admin.ID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot delete your own account", nil)
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.VideoAccessGrant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.WatchHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete user", err)
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": admin.ID,
		"user_id":  userID,
	}).Info("user deleted")

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User deleted",
	})
}
