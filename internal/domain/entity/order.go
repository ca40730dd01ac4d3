package entity

import "time"

// OrderStatus estado del ciclo de vida de una orden de compra.
// Tipo propio (no string plano) para que los estados de Order y Request
// no se mezclen entre workflows.
type OrderStatus string

// Estados válidos de una orden.
const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusApproved OrderStatus = "APPROVED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusPrepared OrderStatus = "PREPARED"
	OrderStatusPickedUp OrderStatus = "PICKEDUP"
)

// Valid indica si el estado pertenece al conjunto cerrado de estados de orden.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected,
		OrderStatusPrepared, OrderStatusPickedUp:
		return true
	}
	return false
}

// Order representa una orden de compra a un proveedor.
// TokenUsed pasa a true exactamente una vez: en la primera confirmación o
// rechazo exitosos vía link de correo. Nunca vuelve a false.
type Order struct {
	ID         string
	SupplierID string
	Status     OrderStatus
	TokenUsed  bool
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderItem línea de una orden de compra.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
}
