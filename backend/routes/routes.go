package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nikitalevshuk/university-tests/backend/auth"
	"github.com/nikitalevshuk/university-tests/backend/config"
	"github.com/nikitalevshuk/university-tests/backend/controllers"
	"github.com/nikitalevshuk/university-tests/backend/middleware"
	"github.com/nikitalevshuk/university-tests/backend/store"
	"github.com/nikitalevshuk/university-tests/backend/testloader"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, loader *testloader.Loader) {
	users := store.NewUserStore(db)
	tests := store.NewTestStore(db)
	codec := auth.NewTokenCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authenticator := auth.NewAuthenticator(users, auth.NewHasher(cfg.BcryptCost))

	// Middleware
	authMiddleware := middleware.AuthMiddleware(auth.NewResolver(codec, users))

	healthController := controllers.NewHealthController()
	app.Get("/", healthController.Root)
	app.Get("/health", healthController.Health)

	// Auth routes
	authController := controllers.NewAuthController(authenticator, codec, cfg)
	userController := controllers.NewUserController()
	authGroup := app.Group("/auth")
	authGroup.Post("/register", authController.Register)
	authGroup.Post("/login", authController.Login)
	authGroup.Post("/logout", authController.Logout)
	authGroup.Get("/me", authMiddleware, userController.GetProfile)

	// Tests routes
	testsController := controllers.NewTestsController(tests, loader)
	testsGroup := app.Group("/tests")
	testsGroup.Get("/", testsController.GetTests)
	testsGroup.Get("/available", testsController.GetAvailableTests)
	testsGroup.Get("/:id", testsController.GetTest)
	testsGroup.Get("/:id/content", testsController.GetTestContent)

	// User tests routes
	progressController := controllers.NewProgressController(users, tests, loader)
	userTests := app.Group("/user-tests", authMiddleware)
	userTests.Get("/status", progressController.GetStatus)
	userTests.Post("/:id/complete", progressController.CompleteTest)
	userTests.Get("/:id/results", progressController.GetResults)
}
