package entity

import "time"

// Supplier representa un proveedor externo al que se le envían órdenes de compra.
type Supplier struct {
	ID        string
	Name      string
	Email     string // destino de los correos de confirmación
	Phone     string
	Address   string
	Category  string // rubro del proveedor (texto libre)
	CreatedAt time.Time
	UpdatedAt time.Time
}
