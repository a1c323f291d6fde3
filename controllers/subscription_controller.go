package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"gorm.io/gorm"

	"vidora/config"
	"vidora/models"
	"vidora/utils"
)

func InitStripe() {
	stripe.Key = config.AppConfig.StripeSecretKey
}

type SubscriptionController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSubscriptionController(db *gorm.DB, logger *log.Logger) *SubscriptionController {
	return &SubscriptionController{
		DB:     db,
		Logger: logger,
	}
}

// GetPlans lists the purchasable plans.
func (sc *SubscriptionController) GetPlans(c *fiber.Ctx) error {
	var plans []models.SubscriptionPlan
	if err := sc.DB.Order("price_cents ASC").Find(&plans).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch plans", err)
	}

	for i := range plans {
		plans[i].DisplayPrice = fmt.Sprintf("$%.2f", float64(plans[i].PriceCents)/100)
	}

	return c.JSON(utils.SuccessResponse(plans))
}

// GetMySubscription returns the caller's current subscription, if any.
func (sc *SubscriptionController) GetMySubscription(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var sub models.Subscription
	err := sc.DB.Preload("Plan").
		Where("user_id = ? AND status = ? AND ends_at >= ?", user.ID, models.SubscriptionActive, time.Now()).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return c.JSON(fiber.Map{
			"success":      true,
			"subscription": nil,
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"subscription": sub,
	})
}

type PurchaseRequest struct {
	PlanID uint `json:"plan_id" validate:"required"`
}

// PurchaseSubscription creates a Stripe Payment Intent for a plan. The
// subscription row itself is only created when the webhook confirms the
// payment, so an abandoned checkout leaves nothing behind.
func (sc *SubscriptionController) PurchaseSubscription(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var plan models.SubscriptionPlan
	if err := sc.DB.First(&plan, req.PlanID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Plan not found", nil)
	}

	customerID, err := getOrCreateStripeCustomer(sc.DB, user)
	if err != nil {
		sc.Logger.Printf("failed to create Stripe customer for user %d: %v", user.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process payment", nil)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(plan.PriceCents)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Customer: stripe.String(customerID),
		Metadata: map[string]string{
			"user_id": strconv.Itoa(int(user.ID)),
			"plan_id": strconv.Itoa(int(plan.ID)),
		},
		Description: stripe.String("Vidora " + plan.Name + " subscription"),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		sc.Logger.Printf("failed to create payment intent for user %d: %v", user.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process payment", nil)
	}

	return c.JSON(fiber.Map{
		"clientSecret": pi.ClientSecret,
		"amount":       plan.PriceCents,
		"currency":     "usd",
	})
}

// HandleSubscriptionWebhook handles Stripe webhook events
func (sc *SubscriptionController) HandleSubscriptionWebhook(c *fiber.Ctx) error {
	event, err := utils.ConstructStripeEvent(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook payload", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Error parsing payment intent", err)
		}
		return sc.handlePaymentSucceeded(c, &paymentIntent)

	case "payment_intent.payment_failed":
		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Error parsing payment intent", err)
		}
		return sc.handlePaymentFailed(c, &paymentIntent)

	default:
		// Acknowledge everything else so Stripe stops retrying
		return c.JSON(fiber.Map{"received": true})
	}
}

func (sc *SubscriptionController) handlePaymentSucceeded(c *fiber.Ctx, pi *stripe.PaymentIntent) error {
	// Webhooks retry, so the same intent may arrive twice
	var existing models.Subscription
	if err := sc.DB.Where("stripe_payment_intent_id = ?", pi.ID).First(&existing).Error; err == nil {
		return c.JSON(fiber.Map{"received": true})
	}

	userID := utils.ParseUint(pi.Metadata["user_id"])
	planID := utils.ParseUint(pi.Metadata["plan_id"])
	if userID == 0 || planID == 0 {
		sc.Logger.Printf("payment intent %s missing user/plan metadata", pi.ID)
		return c.JSON(fiber.Map{"received": true})
	}

	var user models.User
	if err := sc.DB.First(&user, userID).Error; err != nil {
		sc.Logger.Printf("payment intent %s references unknown user %d", pi.ID, userID)
		return c.JSON(fiber.Map{"received": true})
	}
	var plan models.SubscriptionPlan
	if err := sc.DB.First(&plan, planID).Error; err != nil {
		sc.Logger.Printf("payment intent %s references unknown plan %d", pi.ID, planID)
		return c.JSON(fiber.Map{"received": true})
	}

	now := time.Now()
	subscription := models.Subscription{
		UserID:                user.ID,
		PlanID:                plan.ID,
		Status:                models.SubscriptionActive,
		StartsAt:              now,
		EndsAt:                now.AddDate(0, 0, plan.DurationDays),
		AmountCents:           int(pi.Amount),
		Currency:              string(pi.Currency),
		PaymentStatus:         "completed",
		StripePaymentIntentID: pi.ID,
	}
	if pi.LatestCharge != nil {
		subscription.ReceiptURL = pi.LatestCharge.ReceiptURL
	}
	if err := sc.DB.Create(&subscription).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to activate subscription", err)
	}

	name := user.Email
	if user.Name != nil {
		name = *user.Name
	}
	go utils.SendEmail(utils.EmailData{
		Subject:  "Your Vidora subscription is active",
		To:       []string{user.Email},
		Template: "subscription_confirmed",
		Data: fiber.Map{
			"AppName":  "Vidora",
			"Name":     name,
			"PlanName": plan.Name,
			"EndsAt":   subscription.EndsAt.Format("January 2, 2006"),
		},
	})

	return c.JSON(fiber.Map{"received": true})
}

func (sc *SubscriptionController) handlePaymentFailed(c *fiber.Ctx, pi *stripe.PaymentIntent) error {
	sc.Logger.Printf("payment failed for intent %s (user %s)", pi.ID, pi.Metadata["user_id"])
	return c.JSON(fiber.Map{"received": true})
}

// getOrCreateStripeCustomer finds or creates the Stripe customer for a user
func getOrCreateStripeCustomer(db *gorm.DB, user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			"user_id": strconv.Itoa(int(user.ID)),
		},
	}
	if user.Name != nil {
		params.Name = stripe.String(*user.Name)
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := db.Model(user).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", err
	}
	return cust.ID, nil
}
