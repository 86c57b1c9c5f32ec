package repository

import (
	"context"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// MovementFilter filtros opcionales para listar movimientos (vacío = sin filtro).
type MovementFilter struct {
	Status string
	Type   string
}

// MovementRepository define el puerto de persistencia para movimientos.
// GetByID y GetForUpdate devuelven (nil, nil) si el ID no existe.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetForUpdate bloquea el registro hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	Update(ctx context.Context, movement *entity.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
}
