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

// ProductUseCase casos de uso CRUD de catálogo para productos.
// El stock (Quantity) solo se fija al crear; después muta únicamente a través
// del workflow de solicitudes.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, supplierRepo: supplierRepo}
}

// Create crea un producto con SKU único y referencias válidas.
func (uc *ProductUseCase) Create(ctx context.Context, actorRole string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" || in.Quantity < 0 || in.AlertLevel < 0 {
		return nil, domain.ErrInvalidInput
	}

	if existing, err := uc.repo.GetBySKU(ctx, sku); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrDuplicate
	}

	if in.CategoryID != "" {
		category, err := uc.categoryRepo.GetByID(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrNotFound
		}
	}
	if in.SupplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         sku,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		AlertLevel:  in.AlertLevel,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos de catálogo de un producto (nunca el stock).
func (uc *ProductUseCase) Update(ctx context.Context, actorRole, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.AlertLevel != nil {
		if *in.AlertLevel < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.AlertLevel = *in.AlertLevel
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.CategoryID != nil {
		if *in.CategoryID != "" {
			category, err := uc.categoryRepo.GetByID(ctx, *in.CategoryID)
			if err != nil {
				return nil, err
			}
			if category == nil {
				return nil, domain.ErrNotFound
			}
		}
		product.CategoryID = *in.CategoryID
	}
	if in.SupplierID != nil {
		if *in.SupplierID != "" {
			supplier, err := uc.supplierRepo.GetByID(ctx, *in.SupplierID)
			if err != nil {
				return nil, err
			}
			if supplier == nil {
				return nil, domain.ErrNotFound
			}
		}
		product.SupplierID = *in.SupplierID
	}

	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID devuelve un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto del catálogo (solo admin).
func (uc *ProductUseCase) Delete(ctx context.Context, actorRole, id string) error {
	if actorRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		AlertLevel:  p.AlertLevel,
		LowStock:    p.LowStock(),
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
