package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=64"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	AlertLevel  int             `json:"alert_level" validate:"min=0"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID  string          `json:"supplier_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
// Quantity queda fuera a propósito: el stock solo muta vía el workflow de solicitudes.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	AlertLevel  *int             `json:"alert_level" validate:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *string          `json:"category_id"`
	SupplierID  *string          `json:"supplier_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	AlertLevel  int             `json:"alert_level"`
	LowStock    bool            `json:"low_stock"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"category_id,omitempty"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
