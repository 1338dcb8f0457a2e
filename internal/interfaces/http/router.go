package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/pkg/format"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName          string
	RegisterMovement *inventory.RegisterMovementUseCase
	MovementQueries  *inventory.MovementQueryUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	Batches          *inventory.BatchUseCase
	Reconcile        *inventory.ReconcileUseCase
	Formatter        *format.Formatter
	Logger           *logger.Logger
	JWTSecret        string
	JWTIssuer        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	managers := RequireRole(RoleAdmin, RoleManager)

	invGroup := protected.Group("/inventory")

	// Movimientos: cualquier rol autenticado registra y consulta
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.MovementQueries, deps.Replenishment, deps.Formatter, log)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Post("/movements/bulk", inventoryHandler.RegisterBulk)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Get("/low-stock", inventoryHandler.GetReplenishmentList)

	// Lotes y conciliación: corregir y conciliar solo admin/manager
	batchHandler := NewBatchHandler(deps.Batches, deps.Reconcile, deps.Formatter, log)
	invGroup.Get("/products/:id/batches", batchHandler.ListProductBatches)
	invGroup.Get("/products/:id/reconciliation", batchHandler.GetReconciliation)
	invGroup.Post("/products/:id/reconciliation", managers, batchHandler.ApplyReconciliation)
	invGroup.Get("/reconciliation", managers, batchHandler.ListReconciliation)
	invGroup.Get("/batches/expiring", batchHandler.ListExpiring)
	invGroup.Patch("/batches/:id", managers, batchHandler.UpdateBatch)
}
