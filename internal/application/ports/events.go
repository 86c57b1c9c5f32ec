package ports

import (
	"context"
	"time"
)

// LifecycleEvent se emite tras cada transición confirmada de un movimiento o documento.
type LifecycleEvent struct {
	Entity string    `json:"entity"` // "movement" | "document"
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Actor  string    `json:"actor"`
	At     time.Time `json:"at"`
}

// EventPublisher puerto de salida para eventos de ciclo de vida (RabbitMQ en producción).
// Un fallo al publicar no deshace la transición ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
}

// NopPublisher descarta los eventos (broker no configurado).
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, LifecycleEvent) error { return nil }
