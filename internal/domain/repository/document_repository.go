package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// DocumentFilter filtros opcionales para listar documentos.
type DocumentFilter struct {
	Status string
	Type   string
}

// DocumentRepository define el puerto de persistencia para documentos.
type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	Update(ctx context.Context, document *entity.Document) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
}
