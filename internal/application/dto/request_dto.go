package dto

import "time"

// CreateRequestInput entrada para crear una solicitud interna de stock.
type CreateRequestInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Reason    string `json:"reason" validate:"max=500"`
}

// UpdateRequestInput entrada para editar quantity/reason (solo en PENDING).
type UpdateRequestInput struct {
	Quantity *int    `json:"quantity" validate:"omitempty,gt=0"`
	Reason   *string `json:"reason" validate:"omitempty,max=500"`
}

// UpdateRequestStatusInput entrada para la transición de estado.
type UpdateRequestStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED PREPARED PICKEDUP"`
}

// RequestResponse salida de una solicitud interna.
type RequestResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestListResponse lista paginada de solicitudes.
type RequestListResponse struct {
	Items []RequestResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// RequestStatsResponse totales de solicitudes por estado.
type RequestStatsResponse struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}
