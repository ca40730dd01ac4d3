package repository

import (
	"context"

	"github.com/tu-usuario/almacen-api/internal/domain/entity"
)

// RequestRepository define el puerto de persistencia para Request (DIP).
type RequestRepository interface {
	Create(ctx context.Context, request *entity.Request) error
	GetByID(ctx context.Context, id string) (*entity.Request, error)
	Update(ctx context.Context, request *entity.Request) error
	UpdateStatus(ctx context.Context, id string, status entity.RequestStatus) error
	// MarkPickedUp transiciona a PICKEDUP de forma condicional: devuelve true
	// solo si la solicitud aún no estaba en ese estado (check-and-set).
	MarkPickedUp(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Request, error)
	// CountByStatus devuelve el total de solicitudes por estado (estadísticas).
	CountByStatus(ctx context.Context) (map[entity.RequestStatus]int64, error)
	Delete(ctx context.Context, id string) error
}
