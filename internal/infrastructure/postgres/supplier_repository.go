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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación del puerto SupplierRepository sobre PostgreSQL (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de persistencia para proveedores. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Create persiste un nuevo proveedor.
func (r *SupplierRepo) Create(ctx context.Context, supplier *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, email, phone, address, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		supplier.ID, supplier.Name, supplier.Email, supplier.Phone,
		supplier.Address, supplier.Category, supplier.CreatedAt, supplier.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor por ID, o (nil, nil) si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	query := `
		SELECT id, name, email, phone, address, category, created_at, updated_at
		FROM suppliers WHERE id = $1`
	var s entity.Supplier
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.Category, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// Update actualiza un proveedor existente.
func (r *SupplierRepo) Update(ctx context.Context, supplier *entity.Supplier) error {
	query := `
		UPDATE suppliers SET name = $2, email = $3, phone = $4, address = $5, category = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		supplier.ID, supplier.Name, supplier.Email, supplier.Phone,
		supplier.Address, supplier.Category, supplier.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	return nil
}

// List lista proveedores con paginación.
func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	query := `
		SELECT id, name, email, phone, address, category, created_at, updated_at
		FROM suppliers ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var out []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.Category, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// CountOrders cuenta las órdenes que referencian al proveedor (guardia de borrado).
func (r *SupplierRepo) CountOrders(ctx context.Context, id string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE supplier_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count supplier orders: %w", err)
	}
	return n, nil
}

// Delete elimina un proveedor.
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return nil
}
