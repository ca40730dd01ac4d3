package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste la orden y sus items. Invocar dentro de una transacción
// para que orden e items queden como una unidad.
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (id, supplier_id, status, token_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.SupplierID, string(order.Status), order.TokenUsed,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, item := range order.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			item.ID, item.OrderID, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

// GetByID devuelve la orden con sus items cargados, o (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	query := `
		SELECT id, supplier_id, status, token_used, created_at, updated_at
		FROM orders WHERE id = $1`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.SupplierID, &o.Status, &o.TokenUsed, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// Update actualiza estado y proveedor de una orden.
func (r *OrderRepo) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders SET supplier_id = $2, status = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.SupplierID, string(order.Status), order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// MarkTokenUsed ejecuta el check-and-set del link de confirmación. De dos
// callers concurrentes sobre la misma orden, solo el primero observa
// RowsAffected = 1; token_used nunca vuelve a false.
func (r *OrderRepo) MarkTokenUsed(ctx context.Context, id string, status entity.OrderStatus) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $2, token_used = true, updated_at = now()
		 WHERE id = $1 AND token_used = false`,
		id, string(status),
	)
	if err != nil {
		return false, fmt.Errorf("mark order token used: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List lista órdenes (sin items) con paginación, las más recientes primero.
func (r *OrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, supplier_id, status, token_used, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListCreatedSince devuelve órdenes creadas a partir del instante dado,
// las más recientes primero.
func (r *OrderRepo) ListCreatedSince(ctx context.Context, since time.Time, limit int) ([]*entity.Order, error) {
	query := `
		SELECT id, supplier_id, status, token_used, created_at, updated_at
		FROM orders WHERE created_at >= $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// DeleteItems elimina las líneas de la orden (antes de Delete, misma tx).
func (r *OrderRepo) DeleteItems(ctx context.Context, orderID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	return nil
}

// Delete elimina una orden.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var out []entity.OrderItem
	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanOrders(rows pgx.Rows) ([]*entity.Order, error) {
	var out []*entity.Order
	for rows.Next() {
		var o entity.Order
		err := rows.Scan(&o.ID, &o.SupplierID, &o.Status, &o.TokenUsed, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
