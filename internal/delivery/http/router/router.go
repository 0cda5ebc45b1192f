package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"echosign-bridge/internal/config"
	"echosign-bridge/internal/delivery/http/handler"
)

type Router struct {
	app              *fiber.App
	config           *config.Config
	agreementHandler *handler.AgreementHandler
	libraryHandler   *handler.LibraryHandler
	webhookHandler   *handler.WebhookHandler
	healthHandler    *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	agreementHandler *handler.AgreementHandler,
	libraryHandler *handler.LibraryHandler,
	webhookHandler *handler.WebhookHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:              app,
		config:           cfg,
		agreementHandler: agreementHandler,
		libraryHandler:   libraryHandler,
		webhookHandler:   webhookHandler,
		healthHandler:    healthHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	// Health check route
	r.app.Get("/health", r.healthHandler.Health)

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		// Agreement routes
		agreements := api.Group("/agreements")
		{
			agreements.Get("", r.agreementHandler.ListAgreements)
			agreements.Get("/:id/status", r.agreementHandler.GetAgreementStatus)
			agreements.Post("/:id/cancel", r.agreementHandler.CancelAgreement)
			agreements.Post("/:id/reminders", r.agreementHandler.SendReminder)
		}

		// Library document routes
		api.Get("/library-documents", r.libraryHandler.ListLibraryDocuments)

		// Webhook registration routes (registration only; callbacks from
		// Echosign are not received by this service)
		webhooks := api.Group("/webhooks")
		{
			webhooks.Post("", r.webhookHandler.RegisterWebhook)
			webhooks.Delete("/:id", r.webhookHandler.UnregisterWebhook)
		}
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
		},
	})
}
