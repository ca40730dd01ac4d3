package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/almacen-api/internal/domain/entity"
	"github.com/tu-usuario/almacen-api/internal/domain/repository"
)

var _ repository.RequestRepository = (*RequestRepo)(nil)

// RequestRepo implementación del puerto RequestRepository sobre PostgreSQL (usable con pool o tx).
type RequestRepo struct {
	q Querier
}

// NewRequestRepository construye el adaptador de persistencia para solicitudes. Pasar pool o tx (Querier).
func NewRequestRepository(q Querier) *RequestRepo {
	return &RequestRepo{q: q}
}

// Create persiste una nueva solicitud.
func (r *RequestRepo) Create(ctx context.Context, request *entity.Request) error {
	query := `
		INSERT INTO requests (id, product_id, user_id, quantity, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		request.ID, request.ProductID, request.UserID, request.Quantity,
		request.Reason, string(request.Status), request.CreatedAt, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID, o (nil, nil) si no existe.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	query := `
		SELECT id, product_id, user_id, quantity, reason, status, created_at, updated_at
		FROM requests WHERE id = $1`
	var req entity.Request
	err := r.q.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.ProductID, &req.UserID, &req.Quantity, &req.Reason,
		&req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &req, nil
}

// Update actualiza quantity y reason de una solicitud.
func (r *RequestRepo) Update(ctx context.Context, request *entity.Request) error {
	query := `
		UPDATE requests SET quantity = $2, reason = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		request.ID, request.Quantity, request.Reason, request.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return nil
}

// UpdateStatus aplica una transición de estado.
func (r *RequestRepo) UpdateStatus(ctx context.Context, id string, status entity.RequestStatus) error {
	_, err := r.q.Exec(ctx,
		`UPDATE requests SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

// MarkPickedUp transiciona a PICKEDUP solo si la solicitud no estaba ya en ese
// estado. El UPDATE condicional toma el lock de la fila, así dos retiros
// concurrentes de la misma solicitud se serializan y solo uno gana.
func (r *RequestRepo) MarkPickedUp(ctx context.Context, id string) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE requests SET status = $2, updated_at = now()
		 WHERE id = $1 AND status <> $2`,
		id, string(entity.RequestStatusPickedUp),
	)
	if err != nil {
		return false, fmt.Errorf("mark request picked up: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List lista solicitudes con paginación, las más recientes primero.
func (r *RequestRepo) List(ctx context.Context, limit, offset int) ([]*entity.Request, error) {
	query := `
		SELECT id, product_id, user_id, quantity, reason, status, created_at, updated_at
		FROM requests ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()
	var out []*entity.Request
	for rows.Next() {
		var req entity.Request
		err := rows.Scan(
			&req.ID, &req.ProductID, &req.UserID, &req.Quantity, &req.Reason,
			&req.Status, &req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}

// CountByStatus devuelve el total de solicitudes por estado.
func (r *RequestRepo) CountByStatus(ctx context.Context) (map[entity.RequestStatus]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.RequestStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan request count: %w", err)
		}
		out[entity.RequestStatus(status)] = n
	}
	return out, rows.Err()
}

// Delete elimina una solicitud.
func (r *RequestRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}
