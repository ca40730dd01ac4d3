package repository

import (
	"context"

	"github.com/tu-usuario/almacen-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// UpdateQuantity fija el stock del producto. Solo debe invocarse dentro de
	// la transacción que registra el retiro (ver TxRunner).
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Solo tiene
	// sentido sobre un repositorio atado a una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
