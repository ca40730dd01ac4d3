package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/almacen-api/internal/application/dto"
	"github.com/tu-usuario/almacen-api/internal/domain"
	domcatalog "github.com/tu-usuario/almacen-api/internal/domain/catalog"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
)

// CategoryUseCase casos de uso de categorías: CRUD con integridad de jerarquía.
// Toda creación o cambio de padre se valida contra ciclos justo antes de
// escribir; el borrado exige cero subcategorías y cero productos.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría, opcionalmente colgada de un padre existente.
// El nombre debe ser único entre hermanos del mismo nivel.
func (uc *CategoryUseCase) Create(ctx context.Context, actorRole string, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	if in.ParentID != "" {
		parent, err := uc.repo.GetByID(ctx, in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrNotFound
		}
	}

	dup, err := uc.repo.GetByNameAndParent(ctx, name, in.ParentID)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	category := &entity.Category{
		ID:        uuid.New().String(),
		ParentID:  in.ParentID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Update renombra y/o reubica una categoría. Un cambio de padre se revalida
// contra el árbol completo inmediatamente antes de persistir.
func (uc *CategoryUseCase) Update(ctx context.Context, actorRole, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if !entity.CanManageStock(actorRole) {
		return nil, domain.ErrForbidden
	}
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name == nil && in.ParentID == nil {
		return nil, domain.ErrInvalidInput
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		category.Name = name
	}

	if in.ParentID != nil {
		newParent := *in.ParentID
		if newParent == id {
			return nil, domain.ErrCycleDetected
		}
		if newParent != "" {
			parent, err := uc.repo.GetByID(ctx, newParent)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				return nil, domain.ErrNotFound
			}
			// Revalidar el ciclo contra el árbol actual, justo antes del write
			parentOf, err := uc.parentIndex(ctx)
			if err != nil {
				return nil, err
			}
			if domcatalog.WouldCreateCycle(id, newParent, parentOf) {
				return nil, domain.ErrCycleDetected
			}
		}
		category.ParentID = newParent
	}

	// Unicidad de nombre en el nivel destino (excluyéndose a sí misma)
	dup, err := uc.repo.GetByNameAndParent(ctx, category.Name, category.ParentID)
	if err != nil {
		return nil, err
	}
	if dup != nil && dup.ID != id {
		return nil, domain.ErrDuplicate
	}

	category.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// GetByID devuelve la categoría con su cadena de ancestros y sus hijas directas.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	out := toCategoryResponse(category)
	if category.ParentID != "" {
		parentOf, err := uc.parentIndex(ctx)
		if err != nil {
			return nil, err
		}
		out.Ancestors = domcatalog.Ancestors(id, parentOf)
	}
	children, err := uc.repo.ListByParent(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		out.Children = append(out.Children, *toCategoryResponse(child))
	}
	return out, nil
}

// List devuelve el bosque completo: categorías raíz con sus descendientes anidados.
func (uc *CategoryUseCase) List(ctx context.Context) (*dto.CategoryListResponse, error) {
	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	byParent := make(map[string][]*entity.Category)
	for _, c := range all {
		byParent[c.ParentID] = append(byParent[c.ParentID], c)
	}

	var build func(parentID string) []dto.CategoryResponse
	build = func(parentID string) []dto.CategoryResponse {
		nodes := byParent[parentID]
		out := make([]dto.CategoryResponse, 0, len(nodes))
		for _, c := range nodes {
			node := *toCategoryResponse(c)
			node.Children = build(c.ID)
			out = append(out, node)
		}
		return out
	}

	return &dto.CategoryListResponse{Items: build("")}, nil
}

// Delete elimina una categoría hoja sin productos. Con dependientes vivos
// la operación se rechaza con ErrHasDependents.
func (uc *CategoryUseCase) Delete(ctx context.Context, actorRole, id string) error {
	if actorRole != entity.RoleAdmin {
		return domain.ErrForbidden
	}
	category, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrNotFound
	}

	children, products, err := uc.repo.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 || products > 0 {
		return domain.ErrHasDependents
	}

	return uc.repo.Delete(ctx, id)
}

// parentIndex materializa el índice id → parentID de todas las categorías.
func (uc *CategoryUseCase) parentIndex(ctx context.Context) (map[string]string, error) {
	all, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	parentOf := make(map[string]string, len(all))
	for _, c := range all {
		parentOf[c.ID] = c.ParentID
	}
	return parentOf, nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:        c.ID,
		ParentID:  c.ParentID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
