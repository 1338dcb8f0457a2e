package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/foodstock-api/internal/application/dto"
	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/pkg/format"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// HeaderIdempotencyKey clave opcional para que un reintento no duplique el movimiento.
const HeaderIdempotencyKey = "Idempotency-Key"

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc            *inventory.RegisterMovementUseCase
	queries       *inventory.MovementQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	validator     *requestValidator
	present       presenter
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	uc *inventory.RegisterMovementUseCase,
	queries *inventory.MovementQueryUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	f *format.Formatter,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		uc:            uc,
		queries:       queries,
		replenishment: replenishment,
		validator:     newRequestValidator(),
		present:       newPresenter(f),
		log:           log,
	}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Compras crean un lote; salidas descuentan lotes por caducidad (FIFO). Con Idempotency-Key
// @Description  un reintento con la misma clave responde 409 DUPLICATE_REQUEST sin duplicar el movimiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                       false  "Clave de idempotencia"
// @Param        body             body    dto.RegisterMovementRequest  true   "product_id, type, quantity y datos de lote para compras"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var req dto.RegisterMovementRequest
	if ok, err := h.validator.parseAndValidate(c, &req); !ok {
		return err
	}
	in, err := toMovementInput(companyID, userID, req)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	in.IdempotencyKey = strings.TrimSpace(c.Get(HeaderIdempotencyKey))

	res, err := h.uc.RegisterMovement(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.present.movementResult(res))
}

// RegisterBulk godoc
// @Summary      Registrar varios movimientos en una transacción
// @Description  Todos o ninguno. Un error en el movimiento i se informa como "movimiento i: ...".
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkMovementRequest  true  "Hasta 500 movimientos"
// @Success      201   {object}  dto.BulkMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/bulk [post]
func (h *InventoryHandler) RegisterBulk(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var req dto.BulkMovementRequest
	if ok, err := h.validator.parseAndValidate(c, &req); !ok {
		return err
	}
	inputs := make([]inventory.MovementInputDTO, 0, len(req.Movements))
	for _, m := range req.Movements {
		in, err := toMovementInput(companyID, userID, m)
		if err != nil {
			return badRequest(c, "VALIDATION", err.Error())
		}
		inputs = append(inputs, in)
	}

	results, err := h.uc.RegisterBulk(c.UserContext(), inputs)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.BulkMovementResponse{Results: make([]dto.MovementResultResponse, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, h.present.movementResult(r))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        type        query  string  false  "Tipo de movimiento"
// @Param        from        query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to          query  string  false  "Hasta, inclusive (YYYY-MM-DD o RFC3339)"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "INVALID_QUERY", "parámetros inválidos")
	}
	if verr := h.validator.check(&q); verr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	from, err := parseTimeParam(q.From, false)
	if err != nil {
		return badRequest(c, "VALIDATION", "from: use YYYY-MM-DD o RFC3339")
	}
	to, err := parseTimeParam(q.To, true)
	if err != nil {
		return badRequest(c, "VALIDATION", "to: use YYYY-MM-DD o RFC3339")
	}

	list, err := h.queries.List(c.UserContext(), inventory.MovementQuery{
		CompanyID: companyID,
		ProductID: q.ProductID,
		Type:      q.Type,
		From:      from,
		To:        to,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(list)},
	}
	for _, m := range list {
		out.Items = append(out.Items, h.present.movement(m))
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento con sus lotes
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementDetailResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	id, ok, err := pathUUID(c, "id")
	if !ok {
		return err
	}
	detail, err := h.queries.Get(c.UserContext(), companyID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.present.movementDetail(detail))
}

// GetReplenishmentList godoc
// @Summary      Productos en o bajo su stock mínimo
// @Description  Cantidad sugerida: reorder_quantity del producto o 1.5 × mínimo - actual.
// @Description  Orden: agotados, críticos, bajos; dentro de cada grupo mayor déficit primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReplenishmentListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}

	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), companyID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.ReplenishmentListResponse{
		Total:          len(list),
		Replenishments: make([]dto.ReplenishmentSuggestionDTO, 0, len(list)),
	}
	for _, s := range list {
		out.Replenishments = append(out.Replenishments, h.present.replenishment(s))
	}
	return c.JSON(out)
}

// toMovementInput traduce el request al DTO del caso de uso. Solo falla por formato de fecha.
func toMovementInput(companyID, userID string, req dto.RegisterMovementRequest) (inventory.MovementInputDTO, error) {
	in := inventory.MovementInputDTO{
		CompanyID:    companyID,
		UserID:       userID,
		ProductID:    req.ProductID,
		LocationID:   req.LocationID,
		Type:         strings.TrimSpace(req.Type),
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		UnitPrice:    req.UnitPrice,
		SupplierID:   req.SupplierID,
		BatchNumber:  req.BatchNumber,
		MovementDate: req.MovementDate,
		Reference:    req.Reference,
		Notes:        req.Notes,
	}
	if req.ExpiryDate != nil {
		t, err := time.Parse(dto.DateLayout, *req.ExpiryDate)
		if err != nil {
			return in, err
		}
		in.ExpiryDate = &t
	}
	return in, nil
}

// parseTimeParam acepta YYYY-MM-DD o RFC3339. Con endOfDay una fecha sin hora cubre el día completo.
func parseTimeParam(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dto.DateLayout, s); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
