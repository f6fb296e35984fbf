package router

import (
	"errors"
	"strings"

	"eventra/constants"
	"eventra/handler"
	"eventra/middleware"
	"eventra/utils"
	"eventra/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	ClientURL  string
	Gatherer   prometheus.Gatherer
	DisableLog bool
}

// New builds the fiber app with global middleware and every route.
func New(h *handler.Handler, auth middleware.Authorizer, cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	origins := strings.TrimRight(cfg.ClientURL, "/")
	if origins == "" {
		origins = "http://localhost:5173"
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Content-Disposition",
		MaxAge:           600,
	}))

	SetupRoutes(app, h, auth, cfg)
	return app
}

func SetupRoutes(app *fiber.App, h *handler.Handler, auth middleware.Authorizer, cfg Config) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	if !cfg.DisableLog {
		api.Use(logger.New())
	}
	protected := middleware.Protected(auth)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", validate.Login(), h.Login)
	authGroup.Post("/register", validate.Register(), h.Register)
	authGroup.Post("/", validate.Register(), h.Register)
	authGroup.Post("/forgot-password", validate.ForgotPassword(), h.ForgotPassword)
	authGroup.Post("/reset-password", validate.ResetPassword(), h.ResetPassword)
	authGroup.Post("/logout", protected, h.Logout)
	authGroup.Get("/me", protected, h.Me)

	tickets := api.Group("/tickets", protected)
	tickets.Get("/available/:zone", validate.Zone("zone"), h.AvailableTickets)
	tickets.Get("/total-tickets", h.TotalTickets)
	tickets.Get("/stats/:zone", validate.Zone("zone"), h.ZoneStats)
	tickets.Get("/export", h.ExportTickets)
	tickets.Get("/live", handler.RequireUpgrade, h.LiveStats())
	tickets.Post("/sell", validate.SellTicket(), h.SellTicket)
	tickets.Post("/validate", validate.ValidateTicket(), h.ValidateTicket)
	tickets.Post("/bulk-generate-all", validate.BulkGenerate(), h.BulkGenerate)
	tickets.Post("/provision", validate.ProvisionTicket(), h.ProvisionTickets)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := constants.ERROR_INTERNAL_ERROR

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
		if code == fiber.StatusNotFound {
			message = constants.ROUTE_NOT_FOUND
		}
	}
	return utils.MessageResponse(c, code, message)
}
