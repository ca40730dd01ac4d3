package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/almacen-api/internal/domain"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL (usable con pool o tx).
// parent_id NULL en la tabla equivale a "" en el dominio (categoría raíz).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia para categorías. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una nueva categoría.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (id, parent_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		category.ID, nullIfEmpty(category.ParentID), category.Name,
		category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID, o (nil, nil) si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	query := `
		SELECT id, COALESCE(parent_id, ''), name, created_at, updated_at
		FROM categories WHERE id = $1`
	var c entity.Category
	err := r.q.QueryRow(ctx, query, id).Scan(&c.ID, &c.ParentID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// GetByNameAndParent busca una categoría por nombre dentro de un nivel
// (unicidad entre hermanos).
func (r *CategoryRepo) GetByNameAndParent(ctx context.Context, name, parentID string) (*entity.Category, error) {
	query := `
		SELECT id, COALESCE(parent_id, ''), name, created_at, updated_at
		FROM categories WHERE name = $1 AND parent_id IS NOT DISTINCT FROM $2`
	var c entity.Category
	err := r.q.QueryRow(ctx, query, name, nullIfEmpty(parentID)).
		Scan(&c.ID, &c.ParentID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return &c, nil
}

// Update actualiza nombre y padre de una categoría.
func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	query := `
		UPDATE categories SET parent_id = $2, name = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		category.ID, nullIfEmpty(category.ParentID), category.Name, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// List devuelve todas las categorías (el árbol se materializa en el use case).
func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	query := `
		SELECT id, COALESCE(parent_id, ''), name, created_at, updated_at
		FROM categories ORDER BY name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	return scanCategories(rows)
}

// ListByParent devuelve las hijas directas de una categoría.
func (r *CategoryRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.Category, error) {
	query := `
		SELECT id, COALESCE(parent_id, ''), name, created_at, updated_at
		FROM categories WHERE parent_id IS NOT DISTINCT FROM $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, nullIfEmpty(parentID))
	if err != nil {
		return nil, fmt.Errorf("list categories by parent: %w", err)
	}
	defer rows.Close()
	return scanCategories(rows)
}

// CountDependents cuenta subcategorías y productos vivos de la categoría.
func (r *CategoryRepo) CountDependents(ctx context.Context, id string) (int64, int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM categories WHERE parent_id = $1),
			(SELECT COUNT(*) FROM products WHERE category_id = $1)`
	var children, products int64
	if err := r.q.QueryRow(ctx, query, id).Scan(&children, &products); err != nil {
		return 0, 0, fmt.Errorf("count category dependents: %w", err)
	}
	return children, products, nil
}

// Delete elimina una categoría.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func scanCategories(rows pgx.Rows) ([]*entity.Category, error) {
	var out []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
