package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/foodstock-api/internal/application/dto"
)

// requestValidator valida DTOs de entrada con las etiquetas `validate:`.
// Los nombres de campo en el error son los de JSON/query, no los de Go.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return &requestValidator{v: v}
}

// check devuelve nil si s es válido; en otro caso el detalle por campo (campo -> regla).
func (rv *requestValidator) check(s any) *dto.ValidationErrorResponse {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &dto.ValidationErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fe.Tag()
	}
	return &dto.ValidationErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: fields}
}

// fieldPath quita el nombre del struct raíz: "BulkMovementRequest.movements[0].product_id" -> "movements[0].product_id".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// parseAndValidate BodyParser + validación. Si devuelve false la respuesta 400 ya fue escrita.
func (rv *requestValidator) parseAndValidate(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if verr := rv.check(out); verr != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(verr)
	}
	return true, nil
}

// pathUUID lee un parámetro de ruta que debe ser UUID. Si devuelve false la respuesta 400 ya fue escrita.
func pathUUID(c *fiber.Ctx, name string) (string, bool, error) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false, c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Code:    "VALIDATION",
			Message: "parámetro de ruta inválido",
			Fields:  map[string]string{name: "uuid"},
		})
	}
	return id, true, nil
}
