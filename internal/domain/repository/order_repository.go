package repository

import (
	"context"
	"time"

	"github.com/tu-usuario/almacen-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order y sus items (DIP).
type OrderRepository interface {
	// Create persiste la orden y sus items. Debe invocarse dentro de una
	// transacción (TxRunner) para que orden e items queden como una unidad.
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve la orden con sus items cargados, o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	// MarkTokenUsed ejecuta el check-and-set del link de confirmación:
	// UPDATE ... SET status, token_used = true WHERE id = $1 AND token_used = false.
	// Devuelve true si este caller ganó la actualización condicional.
	MarkTokenUsed(ctx context.Context, id string, status entity.OrderStatus) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Order, error)
	// ListCreatedSince devuelve órdenes creadas a partir del instante dado,
	// las más recientes primero (notificaciones del panel).
	ListCreatedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Order, error)
	// DeleteItems elimina las líneas de la orden; se invoca antes de Delete
	// dentro de la misma transacción (borrado en cascada).
	DeleteItems(ctx context.Context, orderID string) error
	Delete(ctx context.Context, id string) error
}
