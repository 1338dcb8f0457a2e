package entity

import "time"

// Supplier proveedor (solo lectura desde el motor de lotes).
type Supplier struct {
	ID        string
	CompanyID string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}
