package repository

import (
	"context"

	"github.com/tu-usuario/almacen-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, supplier *entity.Supplier) error
	List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error)
	// CountOrders cuenta las órdenes que referencian al proveedor (guardia de borrado).
	CountOrders(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}
