// Package redis implementa la caché de agregados de stock sobre go-redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/config"
)

var _ ports.StockCache = (*StockCache)(nil)

const keyPrefix = "stock:product:"

// NewClient abre el cliente y verifica la conexión con un PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return c, nil
}

// StockCache guarda el agregado de cada producto como JSON con TTL.
type StockCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewStockCache construye la caché. ttl <= 0 = sin expiración.
func NewStockCache(client *goredis.Client, ttl time.Duration) *StockCache {
	return &StockCache{client: client, ttl: ttl}
}

type cachedItem struct {
	ProductID  int64           `json:"productId"`
	Category   string          `json:"category"`
	Quantity   int64           `json:"quantity"`
	Warehouses map[int64]int64 `json:"warehouses"`
}

func key(productID int64) string {
	return keyPrefix + strconv.FormatInt(productID, 10)
}

// Get devuelve (nil, false, nil) si la clave no existe.
func (c *StockCache) Get(ctx context.Context, productID int64) (*entity.StockItem, bool, error) {
	raw, err := c.client.Get(ctx, key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var ci cachedItem
	if err := json.Unmarshal(raw, &ci); err != nil {
		return nil, false, fmt.Errorf("decode stock cache: %w", err)
	}
	return &entity.StockItem{
		ProductID:  ci.ProductID,
		Category:   ci.Category,
		Quantity:   ci.Quantity,
		Warehouses: ci.Warehouses,
	}, true, nil
}

// Set guarda el agregado.
func (c *StockCache) Set(ctx context.Context, item *entity.StockItem) error {
	raw, err := json.Marshal(cachedItem{
		ProductID:  item.ProductID,
		Category:   item.Category,
		Quantity:   item.Quantity,
		Warehouses: item.Warehouses,
	})
	if err != nil {
		return fmt.Errorf("encode stock cache: %w", err)
	}
	if err := c.client.Set(ctx, key(item.ProductID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate borra los agregados de los productos indicados.
func (c *StockCache) Invalidate(ctx context.Context, productIDs ...int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
