package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, warehouse_from_id, warehouse_to_id, product_id, quantity, type, status, actual_quantity,
	reason, created_by, approved_by, completed_by, created_at, updated_at, approved_at, completed_at`

// Create persiste un movimiento nuevo.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.WarehouseFromID, m.WarehouseToID, m.ProductID, m.Quantity, m.Type, m.Status, m.ActualQuantity,
		m.Reason, m.CreatedBy, nullString(m.ApprovedBy), nullString(m.CompletedBy),
		m.CreatedAt, m.UpdatedAt, m.ApprovedAt, m.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movement %s: %w", m.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento y bloquea la fila hasta el fin de la transacción.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.get(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = $1 FOR UPDATE`, id)
}

func (r *MovementRepo) get(ctx context.Context, query, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// Update persiste estado, cantidad real y sellos de aprobación/cierre.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movements SET status = $2, actual_quantity = $3, approved_by = $4, completed_by = $5,
			approved_at = $6, completed_at = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.Status, m.ActualQuantity, nullString(m.ApprovedBy), nullString(m.CompletedBy),
		m.ApprovedAt, m.CompletedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("movement", m.ID)
	}
	return nil
}

// List lista movimientos en orden de creación con filtros opcionales.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements
		WHERE ($1::text = '' OR status = $1) AND ($2::text = '' OR type = $2)
		ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, filter.Status, filter.Type)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	out := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var approvedBy, completedBy *string
	err := row.Scan(
		&m.ID, &m.WarehouseFromID, &m.WarehouseToID, &m.ProductID, &m.Quantity, &m.Type, &m.Status, &m.ActualQuantity,
		&m.Reason, &m.CreatedBy, &approvedBy, &completedBy, &m.CreatedAt, &m.UpdatedAt, &m.ApprovedAt, &m.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	m.ApprovedBy = fromNullString(approvedBy)
	m.CompletedBy = fromNullString(completedBy)
	return &m, nil
}
