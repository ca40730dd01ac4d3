package entity

import "time"

// RequestStatus estado del ciclo de vida de una solicitud interna de stock.
type RequestStatus string

// Estados válidos de una solicitud.
const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
	RequestStatusPrepared RequestStatus = "PREPARED"
	RequestStatusPickedUp RequestStatus = "PICKEDUP"
)

// Valid indica si el estado pertenece al conjunto cerrado de estados de solicitud.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected,
		RequestStatusPrepared, RequestStatusPickedUp:
		return true
	}
	return false
}

// Request representa una solicitud interna de retiro de stock hecha por un empleado.
// Solo quantity y reason son editables, y únicamente mientras el estado es PENDING.
type Request struct {
	ID        string
	ProductID string
	UserID    string
	Quantity  int // siempre positivo
	Reason    string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Editable indica si la solicitud admite cambios de quantity/reason.
func (r *Request) Editable() bool {
	return r.Status == RequestStatusPending
}

// Deletable indica si la solicitud puede eliminarse (aún no fue preparada ni retirada).
func (r *Request) Deletable() bool {
	return r.Status == RequestStatusPending || r.Status == RequestStatusApproved
}
