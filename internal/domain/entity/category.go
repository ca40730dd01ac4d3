package entity

import "time"

// Category representa una categoría de productos. La jerarquía se modela con
// ParentID (vacío si es raíz); el nombre es único entre hermanos del mismo nivel.
type Category struct {
	ID        string
	ParentID  string // vacío si es raíz
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot indica si la categoría no tiene padre.
func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}
