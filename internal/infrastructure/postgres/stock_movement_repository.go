package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de StockMovementRepository sobre PostgreSQL (append-only).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro de movimientos. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, company_id, user_id, product_id, location_id, movement_type, quantity, unit, unit_price,
	total_price, supplier_id, COALESCE(batch_number, ''), expiry_date, COALESCE(reference, ''), COALESCE(notes, ''),
	movement_date, created_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var movType string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.UserID, &m.ProductID, &m.LocationID, &movType, &m.Quantity, &m.Unit, &m.UnitPrice,
		&m.TotalPrice, &m.SupplierID, &m.BatchNumber, &m.ExpiryDate, &m.Reference, &m.Notes,
		&m.MovementDate, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(movType)
	return &m, nil
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, company_id, user_id, product_id, location_id, movement_type, quantity, unit,
			unit_price, total_price, supplier_id, batch_number, expiry_date, reference, notes, movement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13, NULLIF($14, ''), NULLIF($15, ''), $16, $17)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.UserID, m.ProductID, m.LocationID, string(m.Type), m.Quantity, m.Unit,
		m.UnitPrice, m.TotalPrice, m.SupplierID, m.BatchNumber, m.ExpiryDate, m.Reference, m.Notes, m.MovementDate, m.CreatedAt,
	)
	if err != nil {
		return mapWriteError("insert stock movement", err)
	}
	return nil
}

// CreateAllocations inserta los vínculos movimiento → lote con un INSERT multi-fila.
func (r *StockMovementRepo) CreateAllocations(ctx context.Context, allocations []entity.MovementAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO stock_movement_batches (movement_id, batch_id, quantity) VALUES `)
	args := make([]any, 0, len(allocations)*3)
	for i, a := range allocations {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, a.MovementID, a.BatchID, a.Quantity)
	}
	if _, err := r.q.Exec(ctx, sb.String(), args...); err != nil {
		return mapWriteError("insert movement allocations", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapReadError("get stock movement", err)
	}
	return m, nil
}

// ListAllocations lotes tocados por un movimiento.
func (r *StockMovementRepo) ListAllocations(ctx context.Context, movementID string) ([]entity.MovementAllocation, error) {
	rows, err := r.q.Query(ctx,
		`SELECT movement_id, batch_id, quantity FROM stock_movement_batches WHERE movement_id = $1`, movementID)
	if err != nil {
		return nil, mapReadError("list movement allocations", err)
	}
	defer rows.Close()
	var list []entity.MovementAllocation
	for rows.Next() {
		var a entity.MovementAllocation
		if err := rows.Scan(&a.MovementID, &a.BatchID, &a.Quantity); err != nil {
			return nil, fmt.Errorf("scan movement allocation: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// List movimientos con filtros opcionales, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	conds := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Type != "" {
		add("movement_type = $%d", string(f.Type))
	}
	if f.From != nil {
		add("movement_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("movement_date <= $%d", *f.To)
	}
	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM stock_movements WHERE %s
		ORDER BY movement_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		movementColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapReadError("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
