package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/application/document"
	"github.com/jhoicas/Bodega-api/internal/application/movement"
	"github.com/jhoicas/Bodega-api/internal/application/report"
	"github.com/jhoicas/Bodega-api/internal/application/stock"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain/access"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements      *movement.Engine
	Documents      *document.Engine
	Stock          *stock.Ledger
	Reports        *report.Service
	Users          *usecase.UserUseCase
	Resolver       *auth.Resolver
	BasePath       string // ej. /api/v1
	ServiceName    string
	RequestTimeout time.Duration
	Log            *logger.Logger
}

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp crea la aplicación Fiber con el ErrorHandler de la taxonomía y los middlewares comunes.
func NewApp(cfg AppConfig, log *logger.Logger) *fiber.App {
	if log == nil {
		log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(AccessLog(log))
	return app
}

// Router registra las rutas de la API bajo deps.BasePath.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group(deps.BasePath, RequestTimeout(deps.RequestTimeout))

	// Reporte diario (público; una credencial presente se valida igual)
	reportHandler := NewReportHandler(deps.Reports)
	api.Get("/reports/daily", OptionalAuth(deps.Resolver), reportHandler.Daily)

	// Administración: Bearer ADMIN o Basic
	adminGroup := api.Group("/admin", AuthMiddleware(deps.Resolver, true), Require(access.Admin, access.ManageUsers))
	adminHandler := NewAdminHandler(deps.Users)
	adminGroup.Get("/users", adminHandler.ListUsers)
	adminGroup.Post("/users", adminHandler.CreateUser)

	// Rutas protegidas (requieren Bearer Token). El middleware va por recurso: un grupo en "/"
	// respondería 401 a cualquier ruta inexistente bajo el base path.
	bearer := AuthMiddleware(deps.Resolver, false)

	api.Get("/reports/monthly", bearer, Require(access.Reports, access.Monthly), reportHandler.Monthly)

	movements := api.Group("/movements", bearer)
	movementHandler := NewMovementHandler(deps.Movements, deps.BasePath)
	movements.Post("/", Require(access.Movements, access.Create), movementHandler.Create)
	movements.Get("/", Require(access.Movements, access.Read), movementHandler.List)
	movements.Get("/:id", Require(access.Movements, access.Read), movementHandler.GetByID)
	movements.Put("/:id/approve", Require(access.Movements, access.Approve), movementHandler.Approve)
	movements.Put("/:id/complete", Require(access.Movements, access.Complete), movementHandler.Complete)

	documents := api.Group("/documents", bearer)
	documentHandler := NewDocumentHandler(deps.Documents, deps.BasePath)
	documents.Post("/", Require(access.Documents, access.Create), documentHandler.Create)
	documents.Get("/", Require(access.Documents, access.Read), documentHandler.List)
	documents.Get("/:id", Require(access.Documents, access.Read), documentHandler.GetByID)
	documents.Get("/:id/pdf", Require(access.Documents, access.Read), documentHandler.DownloadPDF)
	documents.Put("/:id/approve", Require(access.Documents, access.Approve), documentHandler.Approve)
	documents.Put("/:id/reject", Require(access.Documents, access.Reject), documentHandler.Reject)

	stockGroup := api.Group("/stock", bearer, Require(access.Stock, access.Read))
	stockHandler := NewStockHandler(deps.Stock)
	stockGroup.Get("/", stockHandler.Query)
	stockGroup.Get("/:productId", stockHandler.GetByProduct)
}
