package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/foodstock-api/internal/application/dto"
	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/pkg/format"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

const (
	defaultExpiringDays  = 7
	defaultExpiringLimit = 100
	maxExpiringDays      = 365
)

// BatchHandler lotes, caducidades y conciliación stock ↔ lotes (protegido).
type BatchHandler struct {
	batches   *inventory.BatchUseCase
	reconcile *inventory.ReconcileUseCase
	validator *requestValidator
	present   presenter
	log       *logger.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(batches *inventory.BatchUseCase, reconcile *inventory.ReconcileUseCase, f *format.Formatter, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		batches:   batches,
		reconcile: reconcile,
		validator: newRequestValidator(),
		present:   newPresenter(f),
		log:       log,
	}
}

// ListProductBatches godoc
// @Summary      Lotes activos de un producto en orden de consumo
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.BatchListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/batches [get]
func (h *BatchHandler) ListProductBatches(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	productID, ok, err := pathUUID(c, "id")
	if !ok {
		return err
	}
	list, err := h.batches.ListActive(c.UserContext(), companyID, productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.BatchListResponse{ProductID: productID, Total: decimal.Zero, Items: make([]dto.BatchResponse, 0, len(list))}
	for _, b := range list {
		out.Total = out.Total.Add(b.Quantity)
		out.Items = append(out.Items, h.present.batch(b))
	}
	return c.JSON(out)
}

// ListExpiring godoc
// @Summary      Lotes que caducan pronto
// @Description  Lotes activos con caducidad dentro de los próximos `days` días, incluidos los ya caducados.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        days   query  int  false  "Horizonte en días"  default(7)
// @Param        limit  query  int  false  "Máximo de lotes"    default(100)
// @Success      200  {array}   dto.ExpiringBatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/expiring [get]
func (h *BatchHandler) ListExpiring(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	days := c.QueryInt("days", defaultExpiringDays)
	if days < 0 || days > maxExpiringDays {
		return badRequest(c, "VALIDATION", "days debe estar entre 0 y 365")
	}
	limit := c.QueryInt("limit", defaultExpiringLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultExpiringLimit
	}
	items, err := h.batches.ListExpiring(c.UserContext(), companyID, days, limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ExpiringBatchResponse, 0, len(items))
	for _, it := range items {
		out = append(out, h.present.expiring(it))
	}
	return c.JSON(out)
}

// UpdateBatch godoc
// @Summary      Corregir un lote manualmente
// @Description  Cantidad (admite 0), caducidad, proveedor, costo o número de lote. No genera movimiento
// @Description  ni toca current_stock: la respuesta informa el descuadre resultante. `version` evita pisar cambios.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.UpdateBatchRequest  true  "Campos a corregir"
// @Success      200   {object}  dto.BatchUpdateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches/{id} [patch]
func (h *BatchHandler) UpdateBatch(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	batchID, ok, err := pathUUID(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateBatchRequest
	if ok, err := h.validator.parseAndValidate(c, &req); !ok {
		return err
	}
	in := inventory.BatchUpdateInput{
		CompanyID:   companyID,
		UserID:      userID,
		BatchID:     batchID,
		Quantity:    req.Quantity,
		ClearExpiry: req.ClearExpiry,
		SupplierID:  req.SupplierID,
		UnitPrice:   req.UnitPrice,
		BatchNumber: req.BatchNumber,
		Version:     req.Version,
	}
	if req.ClearSupplier {
		empty := ""
		in.SupplierID = &empty
	}
	if req.ExpiryDate != nil {
		t, err := time.Parse(dto.DateLayout, *req.ExpiryDate)
		if err != nil {
			return badRequest(c, "VALIDATION", "expiry_date: use YYYY-MM-DD")
		}
		in.ExpiryDate = &t
	}

	res, err := h.batches.Update(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BatchUpdateResponse{
		Batch:        h.present.batch(res.Batch),
		CurrentStock: res.CurrentStock,
		BatchTotal:   res.BatchTotal,
		Drift:        res.Drift,
	})
}

// GetReconciliation godoc
// @Summary      Descuadre entre current_stock y lotes activos
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconciliation [get]
func (h *BatchHandler) GetReconciliation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	productID, ok, err := pathUUID(c, "id")
	if !ok {
		return err
	}
	report, err := h.reconcile.Report(c.UserContext(), companyID, productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.present.reconciliation(*report))
}

// ListReconciliation godoc
// @Summary      Descuadres de todos los productos de la empresa
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        only_drift  query  bool  false  "Solo productos descuadrados"  default(true)
// @Success      200  {array}  dto.ReconciliationResponse
// @Router       /api/inventory/reconciliation [get]
func (h *BatchHandler) ListReconciliation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	reports, err := h.reconcile.ReportAll(c.UserContext(), companyID, c.QueryBool("only_drift", true))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]dto.ReconciliationResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, h.present.reconciliation(r))
	}
	return c.JSON(out)
}

// ApplyReconciliation godoc
// @Summary      Conciliar: current_stock = suma de lotes activos
// @Description  current_stock y drift de la respuesta son los valores previos a la corrección.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconciliation [post]
func (h *BatchHandler) ApplyReconciliation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID, ok, err := pathUUID(c, "id")
	if !ok {
		return err
	}
	report, err := h.reconcile.Apply(c.UserContext(), companyID, userID, productID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.present.reconciliation(*report))
}
