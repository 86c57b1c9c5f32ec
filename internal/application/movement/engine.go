// Package movement implementa el ciclo de vida de los movimientos de stock:
// CREATED -> APPROVED -> COMPLETED. Las transiciones sobre un mismo ID se serializan.
package movement

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/validation"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/access"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/pkg/keylock"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// Engine casos de uso de movimientos.
type Engine struct {
	repo   repository.MovementRepository
	tx     repository.TxRunner
	locks  *keylock.Locker
	events ports.EventPublisher
	cache  ports.StockCache
	log    *logger.Logger
	now    func() time.Time
}

// Option configura colaboradores opcionales del engine.
type Option func(*Engine)

// WithEvents publica eventos de ciclo de vida.
func WithEvents(p ports.EventPublisher) Option { return func(e *Engine) { e.events = p } }

// WithStockCache invalida la caché de stock al completar.
func WithStockCache(c ports.StockCache) Option { return func(e *Engine) { e.cache = c } }

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine construye el engine sobre el repositorio y el runner de transacciones.
func NewEngine(repo repository.MovementRepository, tx repository.TxRunner, opts ...Option) *Engine {
	e := &Engine{
		repo:   repo,
		tx:     tx,
		locks:  keylock.New(),
		events: ports.NopPublisher{},
		cache:  ports.NopStockCache{},
		log:    logger.Nop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create valida y registra un movimiento en estado CREATED.
func (e *Engine) Create(ctx context.Context, p entity.Principal, in dto.CreateMovementRequest) (*entity.Movement, error) {
	if err := access.Authorize(p, access.Movements, access.Create); err != nil {
		return nil, err
	}
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Type == entity.MovementTypeTransfer && *in.WarehouseFromID == *in.WarehouseToID {
		return nil, domain.Business("source and destination cannot be the same warehouse")
	}

	now := e.now()
	m := &entity.Movement{
		ID:              uuid.New().String(),
		WarehouseFromID: in.WarehouseFromID,
		WarehouseToID:   in.WarehouseToID,
		ProductID:       *in.ProductID,
		Quantity:        *in.Quantity,
		Type:            in.Type,
		Status:          entity.MovementStatusCreated,
		Reason:          in.Reason,
		CreatedBy:       p.Subject,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := e.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("crear movimiento: %w", err)
	}
	e.log.Info().Str("movement_id", m.ID).Str("type", m.Type).Str("actor", p.Subject).Msg("movimiento creado")
	e.publish(ctx, m, p.Subject)
	return m.Clone(), nil
}

// Get devuelve un movimiento por ID.
func (e *Engine) Get(ctx context.Context, p entity.Principal, id string) (*entity.Movement, error) {
	if err := access.Authorize(p, access.Movements, access.Read); err != nil {
		return nil, err
	}
	m, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener movimiento: %w", err)
	}
	if m == nil {
		return nil, domain.NotFound("movement", id)
	}
	return m, nil
}

// List lista movimientos por orden de creación, filtrando por estado y tipo.
func (e *Engine) List(ctx context.Context, p entity.Principal, q dto.MovementListQuery) ([]*entity.Movement, error) {
	if err := access.Authorize(p, access.Movements, access.Read); err != nil {
		return nil, err
	}
	q.Status = strings.ToUpper(strings.TrimSpace(q.Status))
	q.Type = strings.ToUpper(strings.TrimSpace(q.Type))
	if err := validation.Struct(q); err != nil {
		return nil, err
	}
	list, err := e.repo.List(ctx, repository.MovementFilter{Status: q.Status, Type: q.Type})
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	return list, nil
}

// Approve CREATED -> APPROVED (MANAGER o superior).
func (e *Engine) Approve(ctx context.Context, p entity.Principal, id string) (*entity.Movement, error) {
	if err := access.Authorize(p, access.Movements, access.Approve); err != nil {
		return nil, err
	}
	return e.transition(ctx, p, id, func(m *entity.Movement, now time.Time) error {
		return m.Approve(p.Subject, now)
	})
}

// Complete APPROVED -> COMPLETED registrando la cantidad real y aplicando su efecto en el stock.
func (e *Engine) Complete(ctx context.Context, p entity.Principal, id string, in dto.CompleteMovementRequest) (*entity.Movement, error) {
	if err := access.Authorize(p, access.Movements, access.Complete); err != nil {
		return nil, err
	}
	// existencia y estado se comprueban antes que el body: 404 y 409 tienen prioridad sobre 400
	m, err := e.transition(ctx, p, id, func(m *entity.Movement, now time.Time) error {
		if err := m.Can(entity.MovementActionComplete); err != nil {
			return err
		}
		if err := validation.Struct(in); err != nil {
			return err
		}
		return m.Complete(*in.ActualQuantity, p.Subject, now)
	})
	if err != nil {
		return nil, err
	}
	if err := e.cache.Invalidate(ctx, m.ProductID); err != nil {
		e.log.Warn().Err(err).Int64("product_id", m.ProductID).Msg("no se pudo invalidar la caché de stock")
	}
	return m, nil
}

// transition aplica fn sobre una copia del movimiento bloqueado, persiste y, si el movimiento
// quedó completado, aplica sus efectos de stock en la misma transacción.
func (e *Engine) transition(ctx context.Context, p entity.Principal, id string, fn func(*entity.Movement, time.Time) error) (*entity.Movement, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	now := e.now()
	var updated *entity.Movement
	err := e.tx.Run(ctx, func(movRepo repository.MovementRepository, _ repository.DocumentRepository, stockRepo repository.StockRepository) error {
		current, err := movRepo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("bloquear movimiento: %w", err)
		}
		if current == nil {
			return domain.NotFound("movement", id)
		}
		next := current.Clone()
		if err := fn(next, now); err != nil {
			return err
		}
		if err := movRepo.Update(ctx, next); err != nil {
			return fmt.Errorf("actualizar movimiento: %w", err)
		}
		if current.Status != entity.MovementStatusCompleted {
			if err := applyStock(ctx, stockRepo, next, now); err != nil {
				return err
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("movement_id", id).Str("status", updated.Status).Str("actor", p.Subject).Msg("transición de movimiento")
	e.publish(ctx, updated, p.Subject)
	return updated.Clone(), nil
}

// applyStock aplica los deltas en orden de bodega para que dos transacciones concurrentes
// bloqueen las filas de stock en el mismo orden.
func applyStock(ctx context.Context, stockRepo repository.StockRepository, m *entity.Movement, now time.Time) error {
	effects := m.StockEffects()
	warehouses := make([]int64, 0, len(effects))
	for wh := range effects {
		warehouses = append(warehouses, wh)
	}
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i] < warehouses[j] })
	for _, wh := range warehouses {
		if err := stockRepo.Apply(ctx, m.ProductID, wh, effects[wh], now); err != nil {
			return fmt.Errorf("aplicar stock: %w", err)
		}
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, m *entity.Movement, actor string) {
	err := e.events.Publish(ctx, ports.LifecycleEvent{
		Entity: "movement",
		ID:     m.ID,
		Status: m.Status,
		Actor:  actor,
		At:     m.UpdatedAt,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("movement_id", m.ID).Msg("no se pudo publicar el evento")
	}
}
