package dto

import "time"

// CreateSupplierRequest entrada para crear un proveedor.
type CreateSupplierRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Category string `json:"category"`
}

// UpdateSupplierRequest entrada para actualizar un proveedor.
type UpdateSupplierRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Category *string `json:"category"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierListResponse lista paginada de proveedores.
type SupplierListResponse struct {
	Items []SupplierResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
