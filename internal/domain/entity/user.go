package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleEmpleado  = "empleado"
)

// CanManageStock indica si el rol puede operar los workflows de órdenes y
// solicitudes (aprobar, preparar, marcar retiros, crear órdenes de compra).
func CanManageStock(role string) bool {
	return role == RoleAdmin || role == RoleBodeguero
}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, bodeguero, empleado
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
