package dto

import "time"

// OrderItemInput línea de una orden al crearla.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest entrada para crear una orden de compra.
type CreateOrderRequest struct {
	SupplierID string           `json:"supplier_id" validate:"required,uuid"`
	Items      []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest entrada administrativa: cambiar estado y/o proveedor.
type UpdateOrderRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED PREPARED PICKEDUP"`
	SupplierID *string `json:"supplier_id" validate:"omitempty,uuid"`
}

// OrderItemResponse línea de una orden en respuestas.
type OrderItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderResponse salida de una orden.
type OrderResponse struct {
	ID         string              `json:"id"`
	SupplierID string              `json:"supplier_id"`
	Status     string              `json:"status"`
	TokenUsed  bool                `json:"token_used"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
