package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del almacén.
// Quantity es el stock actual; sus mutaciones pasan por el motor de solicitudes
// (descuento transaccional), nunca por el CRUD de catálogo.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Quantity    int // stock actual, nunca negativo
	AlertLevel  int // umbral de stock bajo
	Price       decimal.Decimal
	CategoryID  string // vacío si no está categorizado
	SupplierID  string // vacío si no tiene proveedor asignado
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock indica si el stock actual está en o por debajo del umbral de alerta.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.AlertLevel
}
