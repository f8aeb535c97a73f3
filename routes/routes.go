package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vetclinic-backend/controllers"
	"vetclinic-backend/metrics"
	"vetclinic-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, h *controllers.Handler, auth *middlewares.Auth, db *gorm.DB, m *metrics.Metrics, log *zap.Logger) {
	api := app.Group("/api")

	// Public endpoints
	api.Post("/login", middlewares.RequestDB(db), h.Login)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	api.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(auth.IsAuthenticatedHeader())

	// Idempotency guard before the request-scoped handle
	protected.Use(middlewares.Idempotency(db, log))
	protected.Use(middlewares.RequestDB(db))

	// Clients
	protected.Post("/clients", h.CreateClient)
	protected.Get("/clients", h.GetClients)
	protected.Get("/clients/:id", h.GetClient)
	protected.Put("/clients/:id", h.UpdateClient)
	protected.Get("/clients/:id/pets", h.GetClientPets)

	// Pets
	protected.Post("/pets", h.CreatePet)

	// Products
	protected.Post("/products", h.CreateProducts) // batch create
	protected.Get("/products", h.GetProducts)
	protected.Put("/products/:id", h.UpdateProduct)

	// Services
	protected.Post("/services", h.CreateService)
	protected.Put("/services/:id", h.UpdateService)

	// Invoices
	protected.Post("/invoices", h.CreateInvoice)
	protected.Get("/invoices", h.GetInvoices)
	protected.Get("/invoices/:id", h.GetInvoice)
	protected.Put("/invoices/:id", h.UpdateInvoice)
	protected.Delete("/invoices/:id", h.DeleteInvoice)

	// Invoice items
	protected.Post("/invoice-items", h.CreateInvoiceItem)
	protected.Get("/invoice-items", h.GetInvoiceItems)
	protected.Get("/invoice-items/:id", h.GetInvoiceItem)
	protected.Put("/invoice-items/:id", h.UpdateInvoiceItem)
	protected.Delete("/invoice-items/:id", h.DeleteInvoiceItem)

	// Analytics
	protected.Get("/analytics/revenue-by-month", h.GetRevenueByMonth)

	// Administration. RequireAdmin is attached per route: a prefix group
	// would also gate unmatched /api paths.
	adminOnly := middlewares.RequireAdmin()
	protected.Post("/users", adminOnly, h.CreateUser)
	protected.Get("/audit-logs/deletions", adminOnly, h.GetDeletions)
	protected.Get("/audit-logs/deletions/:id", adminOnly, h.GetDeletion)
	protected.Post("/audit-logs/deletions/:id/restore", adminOnly, h.RestoreDeletion)
	protected.Post("/audit-logs/hard-delete/:collection/:id", adminOnly, h.HardDelete)
}
