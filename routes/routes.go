package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "vidora/controllers"
	"vidora/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Google OAuth routes
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize controllers with their respective loggers
	videoController := controller.NewVideoController(db, log.New(os.Stdout, "VIDEO: ", log.LstdFlags))
	progressController := controller.NewProgressController(db, log.New(os.Stdout, "PROGRESS: ", log.LstdFlags))
	subscriptionController := controller.NewSubscriptionController(db, log.New(os.Stdout, "SUBSCRIPTION: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	adminUserController := controller.NewAdminUserController(db, log.New(os.Stdout, "ADMIN: ", log.LstdFlags))
	adminVideoController := controller.NewAdminVideoController(db, log.New(os.Stdout, "ADMIN: ", log.LstdFlags))
	adminAccessController := controller.NewAdminAccessController(db, log.New(os.Stdout, "ADMIN: ", log.LstdFlags))

	// Stripe webhook must stay outside JWT protection
	app.Post("/api/v1/subscriptions/webhook", subscriptionController.HandleSubscriptionWebhook)

	// The progress socket also stays outside the JWT middleware: browsers
	// cannot set headers on websocket upgrades, so the handler reads the
	// token from the query string itself.
	app.Get("/api/v1/watch/progress", websocket.New(func(c *websocket.Conn) {
		controller.HandleProgressWS(c)
	}))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Catalog and playback routes
	videos := api.Group("/videos")
	videos.Get("/", videoController.GetVideos)
	videos.Get("/:id", videoController.GetVideo)
	videos.Post("/:id/progress", middleware.ProgressRateLimiter(), progressController.ReportProgress)

	api.Get("/watch-history", progressController.GetWatchHistory)

	// Subscription routes
	subscriptions := api.Group("/subscriptions")
	subscriptions.Get("/plans", subscriptionController.GetPlans)
	subscriptions.Get("/current", subscriptionController.GetMySubscription)
	subscriptions.Post("/purchase", subscriptionController.PurchaseSubscription)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetStudentStats)
	dashboard.Get("/continue-watching", dashboardController.GetContinueWatching)

	// Admin console
	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Get("/stats", dashboardController.GetAdminStats)

	admin.Get("/users", adminUserController.GetUsers)
	admin.Put("/users/:id/role", adminUserController.UpdateUserRole)
	admin.Put("/users/:id/active", adminUserController.SetUserActive)
	admin.Delete("/users/:id", adminUserController.DeleteUser)

	admin.Get("/videos", adminVideoController.GetVideos)
	admin.Post("/videos", adminVideoController.CreateVideo)
	admin.Put("/videos/:id", adminVideoController.UpdateVideo)
	admin.Put("/videos/:id/status", adminVideoController.SetVideoStatus)
	admin.Delete("/videos/:id", adminVideoController.DeleteVideo)

	admin.Get("/categories", adminVideoController.GetCategories)
	admin.Post("/categories", adminVideoController.CreateCategory)
	admin.Put("/categories/:id", adminVideoController.UpdateCategory)
	admin.Delete("/categories/:id", adminVideoController.DeleteCategory)

	admin.Get("/grants", adminAccessController.GetGrants)
	admin.Post("/grants", adminAccessController.CreateGrant)
	admin.Delete("/grants/:id", adminAccessController.RevokeGrant)

	admin.Get("/subscriptions", adminAccessController.GetSubscriptions)
	admin.Post("/subscriptions", adminAccessController.GrantSubscription)
	admin.Delete("/subscriptions/:id", adminAccessController.CancelSubscription)
}
