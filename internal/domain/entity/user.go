package entity

// Roles válidos en el claim del token.
const (
	RoleAdmin   = "admin"   // dueño del negocio
	RoleManager = "manager" // encargado: correcciones de lotes y conciliación
	RoleStaff   = "staff"   // registra movimientos
)
