package orders

import (
	"context"

	"github.com/tu-usuario/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con un
// repositorio de órdenes atado a esa tx (alta de orden+items y borrado
// en cascada como unidades atómicas).
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(orderRepo repository.OrderRepository) error) error
}

// Mailer colaborador de notificación saliente. El envío es best-effort desde
// el punto de vista del workflow: un fallo se registra y no revierte la orden.
// Los reintentos acotados son responsabilidad de la implementación.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}
