// Package routes defines the API routing configuration.
// It wires repositories into services, services into handlers, and
// groups routes by the authorization they require.
package routes

import (
	"habitstake/internal/handlers"
	"habitstake/internal/middleware"
	"habitstake/internal/models"
	"habitstake/internal/repositories"
	"habitstake/internal/services/auth"
	"habitstake/internal/services/deposit"
	"habitstake/internal/services/escrow"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)

	// Services
	authService := auth.NewService(userRepo, ledgerRepo)
	escrowService := escrow.NewService(ledgerRepo, repositories.CacheService, &escrow.NoopMetricsCollector{})
	depositService := deposit.NewService(ledgerRepo, repositories.CacheService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	escrowHandler := handlers.NewEscrowHandler(escrowService)
	accountHandler := handlers.NewAccountHandler(escrowService, depositService)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to HabitStake API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	api := app.Group("/api")

	// Public endpoints
	api.Get("/health", handlers.HealthCheck)
	api.Post("/register", authHandler.RegisterUser)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/logout", authHandler.LogoutUser)

	// Account routes
	protected.Get("/account", middleware.HasPermission(models.PermissionAccountRead), accountHandler.GetAccount)
	protected.Post("/account/topup", middleware.HasPermission(models.PermissionAccountFund), accountHandler.TopUpAccount)

	// Bet routes
	bets := protected.Group("/bets")
	bets.Post("/", middleware.HasPermission(models.PermissionBetCreate), escrowHandler.CreateBet)
	bets.Get("/", middleware.HasPermission(models.PermissionBetRead), escrowHandler.ListBets)
	bets.Get("/:address", middleware.HasPermission(models.PermissionBetRead), escrowHandler.GetBet)

	setupAdminRoutes(app, authMiddleware, escrowHandler)
}

// setupAdminRoutes wires the escrow config and resolution endpoints.
// Resolution is the single-arbiter decision, so everything here sits
// behind the admin role check.
func setupAdminRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware, escrowHandler *handlers.EscrowHandler) {
	admin := app.Group("/api/admin", authMiddleware.Handler, middleware.AdminAuthMiddleware)

	admin.Post("/escrow/initialize", middleware.HasPermission(models.PermissionWriteAdmin), escrowHandler.InitializeEscrow)
	admin.Patch("/escrow/config", middleware.HasPermission(models.PermissionWriteAdmin), escrowHandler.UpdateEscrowConfig)
	admin.Get("/escrow/config", middleware.HasPermission(models.PermissionReadAdmin), escrowHandler.GetEscrowConfig)

	admin.Post("/bets/:address/complete", middleware.HasPermission(models.PermissionBetResolve), escrowHandler.CompleteBet)
	admin.Post("/bets/:address/forfeit", middleware.HasPermission(models.PermissionBetResolve), escrowHandler.ForfeitBet)
}
