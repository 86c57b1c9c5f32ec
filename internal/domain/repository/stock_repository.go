package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// StockFilter filtros que el almacenamiento puede aplicar directamente.
type StockFilter struct {
	WarehouseID *int64
	Category    string
}

// StockRepository define el puerto para consultar/actualizar saldos por bodega+producto.
type StockRepository interface {
	List(ctx context.Context, filter StockFilter) ([]*entity.StockBalance, error)
	ListByProduct(ctx context.Context, productID int64) ([]*entity.StockBalance, error)
	// Apply suma delta al saldo (producto, bodega), creándolo si no existe.
	Apply(ctx context.Context, productID, warehouseID, delta int64, now time.Time) error
}
