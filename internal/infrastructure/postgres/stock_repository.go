package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
// quantity es NUMERIC y se lee con el codec de shopspring/decimal registrado en el pool.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// List saldos filtrados. Con WarehouseID devuelve todos los saldos de los productos presentes en esa bodega.
func (r *StockRepo) List(ctx context.Context, filter repository.StockFilter) ([]*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, category, quantity, updated_at
		FROM stock
		WHERE ($1::bigint IS NULL OR product_id IN (SELECT product_id FROM stock WHERE warehouse_id = $1))
		  AND ($2::text = '' OR category = $2)
		ORDER BY product_id, warehouse_id`
	return r.list(ctx, query, filter.WarehouseID, filter.Category)
}

// ListByProduct saldos de un producto en todas las bodegas.
func (r *StockRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, category, quantity, updated_at
		FROM stock WHERE product_id = $1
		ORDER BY warehouse_id`
	return r.list(ctx, query, productID)
}

func (r *StockRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	out := []*entity.StockBalance{}
	for rows.Next() {
		var b entity.StockBalance
		var qty decimal.Decimal
		if err := rows.Scan(&b.ProductID, &b.WarehouseID, &b.Category, &qty, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		b.Quantity = qty.IntPart()
		out = append(out, &b)
	}
	return out, rows.Err()
}

// Apply suma delta al saldo (upsert). Un saldo nuevo hereda la categoría del producto.
func (r *StockRepo) Apply(ctx context.Context, productID, warehouseID, delta int64, now time.Time) error {
	query := `
		INSERT INTO stock (product_id, warehouse_id, category, quantity, updated_at)
		VALUES ($1, $2,
			COALESCE((SELECT category FROM stock WHERE product_id = $1 AND category <> '' LIMIT 1), ''),
			$3, $4)
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, productID, warehouseID, decimal.NewFromInt(delta), now); err != nil {
		return fmt.Errorf("apply stock: %w", err)
	}
	return nil
}
