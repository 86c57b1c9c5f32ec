package ports

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// StockCache caché de agregados por producto (GET /stock/{productId}).
// Get devuelve (nil, false, nil) en un fallo de caché.
type StockCache interface {
	Get(ctx context.Context, productID int64) (*entity.StockItem, bool, error)
	Set(ctx context.Context, item *entity.StockItem) error
	Invalidate(ctx context.Context, productIDs ...int64) error
}

// NopStockCache caché desactivada.
type NopStockCache struct{}

func (NopStockCache) Get(context.Context, int64) (*entity.StockItem, bool, error) {
	return nil, false, nil
}
func (NopStockCache) Set(context.Context, *entity.StockItem) error { return nil }
func (NopStockCache) Invalidate(context.Context, ...int64) error   { return nil }
