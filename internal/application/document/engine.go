// Package document implementa el flujo de aprobación de documentos: DRAFT -> APPROVED | REJECTED.
package document

import (
	"context"
	"fmt"
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

// Engine casos de uso de documentos.
type Engine struct {
	repo     repository.DocumentRepository
	tx       repository.TxRunner
	locks    *keylock.Locker
	events   ports.EventPublisher
	renderer ports.DocumentRenderer
	log      *logger.Logger
	now      func() time.Time
}

// Option configura colaboradores opcionales.
type Option func(*Engine)

// WithEvents publica eventos de ciclo de vida.
func WithEvents(p ports.EventPublisher) Option { return func(e *Engine) { e.events = p } }

// WithRenderer habilita la exportación a PDF.
func WithRenderer(r ports.DocumentRenderer) Option { return func(e *Engine) { e.renderer = r } }

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine construye el engine.
func NewEngine(repo repository.DocumentRepository, tx repository.TxRunner, opts ...Option) *Engine {
	e := &Engine{
		repo:   repo,
		tx:     tx,
		locks:  keylock.New(),
		events: ports.NopPublisher{},
		log:    logger.Nop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create registra un documento en DRAFT. Sin fecha se usa el día actual (UTC).
func (e *Engine) Create(ctx context.Context, p entity.Principal, in dto.CreateDocumentRequest) (*entity.Document, error) {
	if err := access.Authorize(p, access.Documents, access.Create); err != nil {
		return nil, err
	}
	in.Type = strings.TrimSpace(in.Type)
	in.MovementID = strings.TrimSpace(in.MovementID)
	in.Date = strings.TrimSpace(in.Date)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := e.now()
	date := now.Truncate(24 * time.Hour)
	if in.Date != "" {
		parsed, err := time.Parse(dto.DateLayout, in.Date)
		if err != nil {
			return nil, domain.FieldError("date", "must be a date formatted as "+dto.DateLayout)
		}
		date = parsed
	}
	items := make([]entity.DocumentItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, entity.DocumentItem{ProductID: *it.ProductID, Quantity: *it.Quantity})
	}

	d := &entity.Document{
		ID:         uuid.New().String(),
		Type:       in.Type,
		MovementID: in.MovementID,
		Date:       date,
		Items:      items,
		Status:     entity.DocumentStatusDraft,
		CreatedBy:  p.Subject,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("crear documento: %w", err)
	}
	e.log.Info().Str("document_id", d.ID).Str("type", d.Type).Str("actor", p.Subject).Msg("documento creado")
	e.publish(ctx, d, p.Subject)
	return d.Clone(), nil
}

// Get devuelve un documento por ID.
func (e *Engine) Get(ctx context.Context, p entity.Principal, id string) (*entity.Document, error) {
	if err := access.Authorize(p, access.Documents, access.Read); err != nil {
		return nil, err
	}
	d, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener documento: %w", err)
	}
	if d == nil {
		return nil, domain.NotFound("document", id)
	}
	return d, nil
}

// List lista documentos en orden de creación.
func (e *Engine) List(ctx context.Context, p entity.Principal, q dto.DocumentListQuery) ([]*entity.Document, error) {
	if err := access.Authorize(p, access.Documents, access.Read); err != nil {
		return nil, err
	}
	q.Status = strings.ToUpper(strings.TrimSpace(q.Status))
	q.Type = strings.TrimSpace(q.Type)
	if err := validation.Struct(q); err != nil {
		return nil, err
	}
	list, err := e.repo.List(ctx, repository.DocumentFilter{Status: q.Status, Type: q.Type})
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	return list, nil
}

// Approve DRAFT -> APPROVED; registra quién aprobó y cuándo.
func (e *Engine) Approve(ctx context.Context, p entity.Principal, id string) (*entity.Document, error) {
	if err := access.Authorize(p, access.Documents, access.Approve); err != nil {
		return nil, err
	}
	return e.transition(ctx, p, id, func(d *entity.Document, now time.Time) error {
		return d.Approve(p.Subject, now)
	})
}

// Reject DRAFT -> REJECTED. Usa el mismo permiso que Approve.
func (e *Engine) Reject(ctx context.Context, p entity.Principal, id string, in dto.RejectDocumentRequest) (*entity.Document, error) {
	if err := access.Authorize(p, access.Documents, access.Reject); err != nil {
		return nil, err
	}
	in.Reason = strings.TrimSpace(in.Reason)
	return e.transition(ctx, p, id, func(d *entity.Document, now time.Time) error {
		if err := d.Can(entity.DocumentActionReject); err != nil {
			return err
		}
		if err := validation.Struct(in); err != nil {
			return err
		}
		return d.Reject(in.Reason, p.Subject, now)
	})
}

// RenderPDF genera el PDF de un documento.
func (e *Engine) RenderPDF(ctx context.Context, p entity.Principal, id string) ([]byte, error) {
	d, err := e.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if e.renderer == nil {
		return nil, domain.Business("pdf rendering is not configured")
	}
	pdf, err := e.renderer.Render(d)
	if err != nil {
		return nil, fmt.Errorf("generar pdf: %w", err)
	}
	return pdf, nil
}

func (e *Engine) transition(ctx context.Context, p entity.Principal, id string, fn func(*entity.Document, time.Time) error) (*entity.Document, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	now := e.now()
	var updated *entity.Document
	err := e.tx.Run(ctx, func(_ repository.MovementRepository, docRepo repository.DocumentRepository, _ repository.StockRepository) error {
		current, err := docRepo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("bloquear documento: %w", err)
		}
		if current == nil {
			return domain.NotFound("document", id)
		}
		next := current.Clone()
		if err := fn(next, now); err != nil {
			return err
		}
		if err := docRepo.Update(ctx, next); err != nil {
			return fmt.Errorf("actualizar documento: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("document_id", id).Str("status", updated.Status).Str("actor", p.Subject).Msg("transición de documento")
	e.publish(ctx, updated, p.Subject)
	return updated.Clone(), nil
}

func (e *Engine) publish(ctx context.Context, d *entity.Document, actor string) {
	err := e.events.Publish(ctx, ports.LifecycleEvent{
		Entity: "document",
		ID:     d.ID,
		Status: d.Status,
		Actor:  actor,
		At:     d.UpdatedAt,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("document_id", d.ID).Msg("no se pudo publicar el evento")
	}
}
