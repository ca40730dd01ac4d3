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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, description, quantity, alert_level, price,
	COALESCE(category_id, ''), COALESCE(supplier_id, ''), created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, quantity, alert_level, price, category_id, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description,
		product.Quantity, product.AlertLevel, product.Price,
		nullIfEmpty(product.CategoryID), nullIfEmpty(product.SupplierID),
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID, o (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := r.scanOne(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	p, err := r.scanOne(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// GetByIDs devuelve los productos cuyos IDs existan; los IDs desconocidos
// simplemente no aparecen en el resultado.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// GetForUpdate bloquea la fila del producto para la transacción actual.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	p, err := r.scanOne(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// Update actualiza los campos de catálogo de un producto. Quantity no se toca:
// el stock muta solo vía UpdateQuantity dentro del workflow de solicitudes.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, alert_level = $4, price = $5,
			category_id = $6, supplier_id = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.AlertLevel, product.Price,
		nullIfEmpty(product.CategoryID), nullIfEmpty(product.SupplierID), product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateQuantity fija el stock del producto (motor de solicitudes).
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("update product quantity: %w", err)
	}
	return nil
}

// List lista productos con paginación.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// Delete elimina un producto.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Quantity, &p.AlertLevel,
		&p.Price, &p.CategoryID, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]*entity.Product, error) {
	var out []*entity.Product
	for rows.Next() {
		var p entity.Product
		err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.Description, &p.Quantity, &p.AlertLevel,
			&p.Price, &p.CategoryID, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
