// Package stock expone las consultas de stock por producto y bodega.
package stock

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/access"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// Ledger consultas de solo lectura sobre los saldos.
type Ledger struct {
	repo  repository.StockRepository
	cache ports.StockCache
	log   *logger.Logger
}

// NewLedger construye el ledger. cache y log pueden ser nil.
func NewLedger(repo repository.StockRepository, cache ports.StockCache, log *logger.Logger) *Ledger {
	if cache == nil {
		cache = ports.NopStockCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{repo: repo, cache: cache, log: log}
}

// Query aplica los filtros de forma conjuntiva. Con warehouseId la cantidad de cada producto es
// la de esa bodega; sin él, el total. belowThreshold deja los productos con cantidad < umbral.
// Sin coincidencias devuelve una lista vacía.
func (l *Ledger) Query(ctx context.Context, p entity.Principal, q dto.StockQuery) ([]*entity.StockItem, error) {
	if err := access.Authorize(p, access.Stock, access.Read); err != nil {
		return nil, err
	}
	q.Category = strings.TrimSpace(q.Category)
	balances, err := l.repo.List(ctx, repository.StockFilter{WarehouseID: q.WarehouseID, Category: q.Category})
	if err != nil {
		return nil, fmt.Errorf("consultar stock: %w", err)
	}

	out := []*entity.StockItem{}
	for _, item := range aggregate(balances) {
		if q.WarehouseID != nil {
			qty, ok := item.Warehouses[*q.WarehouseID]
			if !ok {
				continue
			}
			item.Quantity = qty
		}
		if q.BelowThreshold != nil && item.Quantity >= *q.BelowThreshold {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// GetByProduct agrega el stock de un producto en todas las bodegas. NOT_FOUND si no hay registros.
func (l *Ledger) GetByProduct(ctx context.Context, p entity.Principal, productID int64) (*entity.StockItem, error) {
	if err := access.Authorize(p, access.Stock, access.Read); err != nil {
		return nil, err
	}
	if item, ok, err := l.cache.Get(ctx, productID); err != nil {
		l.log.Warn().Err(err).Int64("product_id", productID).Msg("caché de stock no disponible")
	} else if ok {
		return item, nil
	}

	balances, err := l.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("consultar stock del producto: %w", err)
	}
	items := aggregate(balances)
	if len(items) == 0 {
		return nil, domain.NotFound("stock for product", strconv.FormatInt(productID, 10))
	}
	item := items[0]
	if err := l.cache.Set(ctx, item); err != nil {
		l.log.Warn().Err(err).Int64("product_id", productID).Msg("no se pudo cachear el stock")
	}
	return item, nil
}

// aggregate agrupa saldos por producto, ordenados por productId.
func aggregate(balances []*entity.StockBalance) []*entity.StockItem {
	byProduct := make(map[int64]*entity.StockItem)
	for _, b := range balances {
		item, ok := byProduct[b.ProductID]
		if !ok {
			item = &entity.StockItem{ProductID: b.ProductID, Category: b.Category, Warehouses: map[int64]int64{}}
			byProduct[b.ProductID] = item
		}
		if item.Category == "" {
			item.Category = b.Category
		}
		item.Warehouses[b.WarehouseID] += b.Quantity
		item.Quantity += b.Quantity
	}
	out := make([]*entity.StockItem, 0, len(byProduct))
	for _, item := range byProduct {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
