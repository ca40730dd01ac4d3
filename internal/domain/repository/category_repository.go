package repository

import (
	"context"

	"github.com/tu-usuario/almacen-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
// GetByID devuelve (nil, nil) si no existe.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetByNameAndParent(ctx context.Context, name, parentID string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context) ([]*entity.Category, error)
	ListByParent(ctx context.Context, parentID string) ([]*entity.Category, error)
	// CountDependents cuenta subcategorías y productos vivos de la categoría.
	CountDependents(ctx context.Context, id string) (children, products int64, err error)
	Delete(ctx context.Context, id string) error
}
