package requests

import (
	"context"

	"github.com/tu-usuario/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que el descuento de stock y el
// cambio de estado de la solicitud queden como una sola unidad atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		requestRepo repository.RequestRepository,
	) error) error
}

// Mailer colaborador de notificación saliente para las alertas de stock bajo.
// El envío es best-effort: un fallo se registra y no afecta al retiro.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}
