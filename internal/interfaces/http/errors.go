package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/foodstock-api/internal/application/dto"
	"github.com/jhoicas/foodstock-api/internal/domain"
	"github.com/jhoicas/foodstock-api/pkg/logger"
)

// errorMapping traduce un error de dominio a status HTTP y código estable.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: se usa la primera coincidencia de errors.Is.
var errorMappings = []errorMapping{
	{domain.ErrInvalidMovementType, fiber.StatusBadRequest, "INVALID_MOVEMENT_TYPE", "tipo de movimiento desconocido"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser positiva y con máximo 3 decimales"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "se requiere un usuario autenticado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE_REQUEST", "la petición con esa Idempotency-Key ya fue procesada"},
	{domain.ErrLockNotObtained, fiber.StatusConflict, "PRODUCT_BUSY", "el producto está siendo modificado por otra operación, reintente"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "el recurso cambió, recargue y reintente"},
}

// respondError escribe el ErrorResponse correspondiente. Los errores no mapeados se registran
// y se devuelven como 500 sin exponer el detalle interno.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.code == "PRODUCT_BUSY" {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
			msg := m.message
			if m.status == fiber.StatusBadRequest && err.Error() != m.target.Error() {
				msg = err.Error()
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: msg})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
