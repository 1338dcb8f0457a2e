package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/foodstock-api/internal/domain"
)

// Códigos SQLSTATE que tienen traducción a error de dominio.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02"
	pgLockNotAvailable    = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapReadError un id con formato inválido (22P02, p. ej. no UUID) es entrada inválida, no fallo de la DB.
func mapReadError(op string, err error) error {
	if pgCode(err) == pgInvalidTextRep {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mapLockError lock_timeout vencido en un SELECT FOR UPDATE = producto ocupado.
func mapLockError(op string, err error) error {
	if pgCode(err) == pgLockNotAvailable {
		return domain.ErrLockNotObtained
	}
	return mapReadError(op, err)
}

// mapWriteError traduce violaciones de constraints a errores de dominio; el resto se envuelve con op.
// FK rota = referencia inexistente; CHECK = cantidad fuera de rango (p. ej. lote negativo).
func mapWriteError(op string, err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return domain.ErrDuplicate
	case pgForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case pgCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidQuantity)
	case pgInvalidTextRep:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	case pgLockNotAvailable:
		return domain.ErrLockNotObtained
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
