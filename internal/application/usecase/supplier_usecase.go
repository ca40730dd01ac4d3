package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/domain"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
)

// SupplierUseCase casos de uso CRUD de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create crea un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, actorRole string, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Category:  strings.TrimSpace(in.Category),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// Update actualiza un proveedor existente.
func (uc *SupplierUseCase) Update(ctx context.Context, actorRole, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		supplier.Name = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, domain.ErrInvalidInput
		}
		supplier.Email = email
	}
	if in.Phone != nil {
		supplier.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		supplier.Address = strings.TrimSpace(*in.Address)
	}
	if in.Category != nil {
		supplier.Category = strings.TrimSpace(*in.Category)
	}

	supplier.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// GetByID devuelve un proveedor por ID.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	return toSupplierResponse(supplier), nil
}

// List lista proveedores con paginación.
func (uc *SupplierUseCase) List(ctx context.Context, limit, offset int) (*dto.SupplierListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un proveedor sin órdenes asociadas (solo admin).
func (uc *SupplierUseCase) Delete(ctx context.Context, actorRole, id string) error {
	if actorRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if supplier == nil {
		return domain.ErrNotFound
	}
	orders, err := uc.repo.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if orders > 0 {
		return domain.ErrHasDependents
	}
	return uc.repo.Delete(ctx, id)
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		Category:  s.Category,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
