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

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos y sus líneas (document_items) sobre PostgreSQL.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, type, movement_id, date, status, created_by, approved_by, approved_at,
	rejected_by, rejected_at, rejection_reason, created_at, updated_at`

// Create inserta cabecera y líneas en una sola sentencia (CTE + unnest) para que sea atómico
// también fuera de una transacción.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	products := make([]int64, len(d.Items))
	quantities := make([]int64, len(d.Items))
	for i, it := range d.Items {
		products[i] = it.ProductID
		quantities[i] = it.Quantity
	}
	query := `
		WITH doc AS (
			INSERT INTO documents (id, type, movement_id, date, status, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		)
		INSERT INTO document_items (document_id, line, product_id, quantity)
		SELECT doc.id, t.line, t.product_id, t.quantity
		FROM doc, unnest($9::bigint[], $10::bigint[]) WITH ORDINALITY AS t(product_id, quantity, line)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.Type, nullString(d.MovementID), d.Date, d.Status, d.CreatedBy, d.CreatedAt, d.UpdatedAt,
		products, quantities,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("document %s: %w", d.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento con sus líneas; (nil, nil) si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetForUpdate igual que GetByID bloqueando la cabecera.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

func (r *DocumentRepo) get(ctx context.Context, query, id string) (*entity.Document, error) {
	d, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Document{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// Update persiste el estado y los sellos de aprobación/rechazo. Las líneas no cambian.
func (r *DocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	query := `
		UPDATE documents SET status = $2, approved_by = $3, approved_at = $4, rejected_by = $5,
			rejected_at = $6, rejection_reason = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		d.ID, d.Status, nullString(d.ApprovedBy), d.ApprovedAt, nullString(d.RejectedBy),
		d.RejectedAt, nullString(d.RejectionReason), d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("document", d.ID)
	}
	return nil
}

// List lista documentos en orden de creación con sus líneas.
func (r *DocumentRepo) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE ($1::text = '' OR status = $1) AND ($2::text = '' OR type = $2)
		ORDER BY created_at, seq`
	rows, err := r.q.Query(ctx, query, filter.Status, filter.Type)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := []*entity.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DocumentRepo) loadItems(ctx context.Context, docs []*entity.Document) error {
	if len(docs) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Document, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
		ids = append(ids, d.ID)
		d.Items = []entity.DocumentItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT document_id, product_id, quantity FROM document_items
		WHERE document_id = ANY($1) ORDER BY document_id, line`, ids)
	if err != nil {
		return fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var docID string
		var it entity.DocumentItem
		if err := rows.Scan(&docID, &it.ProductID, &it.Quantity); err != nil {
			return fmt.Errorf("scan document item: %w", err)
		}
		if d, ok := byID[docID]; ok {
			d.Items = append(d.Items, it)
		}
	}
	return rows.Err()
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var movementID, approvedBy, rejectedBy, reason *string
	err := row.Scan(
		&d.ID, &d.Type, &movementID, &d.Date, &d.Status, &d.CreatedBy, &approvedBy, &d.ApprovedAt,
		&rejectedBy, &d.RejectedAt, &reason, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.MovementID = fromNullString(movementID)
	d.ApprovedBy = fromNullString(approvedBy)
	d.RejectedBy = fromNullString(rejectedBy)
	d.RejectionReason = fromNullString(reason)
	return &d, nil
}
