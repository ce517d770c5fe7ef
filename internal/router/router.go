package router

import (
	"log"
	"strings"

	"stocktrack-backend/internal/audit"
	"stocktrack-backend/internal/auth"
	"stocktrack-backend/internal/config"
	"stocktrack-backend/internal/inventory"
	"stocktrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// New builds the fiber app with all routes wired. Shared between
// cmd/server and the handler tests.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(requestid.New())
	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})

	// Public auth
	api.Post("/auth/register-manager", auth.RegisterManagerHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Everything below requires a valid token.
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Reads: both roles.
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Get("/reorder", inventory.ReorderListHandler())
	protected.Get("/reorder.csv", inventory.ReorderCSVHandler())
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	// Writes: manager only. The role gate runs server-side regardless of
	// what a client UI disables.
	managerOnly := protected.Group("")
	managerOnly.Use(auth.RequireRole(models.RoleManager))

	managerOnly.Post("/products", inventory.CreateProductHandler())
	managerOnly.Patch("/products/:id", inventory.UpdateProductHandler())
	managerOnly.Delete("/products/:id", inventory.DeleteProductHandler())
	managerOnly.Patch("/products/:id/stock", inventory.UpdateStockHandler())

	return app
}
