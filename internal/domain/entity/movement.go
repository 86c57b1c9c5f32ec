package entity

import (
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain"
)

// Tipos de movimiento.
const (
	MovementTypeTransfer = "TRANSFER"  // traslado entre bodegas
	MovementTypeWriteOff = "WRITE_OFF" // baja de inventario
)

// Estados del ciclo de vida de un movimiento.
const (
	MovementStatusCreated   = "CREATED"
	MovementStatusApproved  = "APPROVED"
	MovementStatusCompleted = "COMPLETED"
)

// Acciones sobre un movimiento.
const (
	MovementActionApprove  = "approve"
	MovementActionComplete = "complete"
)

// movementTransitions acción -> estado origen -> estado destino. Solo avanza; COMPLETED no tiene salidas.
var movementTransitions = map[string]map[string]string{
	MovementActionApprove:  {MovementStatusCreated: MovementStatusApproved},
	MovementActionComplete: {MovementStatusApproved: MovementStatusCompleted},
}

// Movement traslado o baja de stock con su ciclo de aprobación.
type Movement struct {
	ID              string
	WarehouseFromID *int64
	WarehouseToID   *int64 // nil en bajas
	ProductID       int64
	Quantity        int64
	Type            string
	Status          string
	ActualQuantity  *int64 // se registra al completar
	Reason          string // obligatorio en WRITE_OFF
	CreatedBy       string
	ApprovedBy      string
	CompletedBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ApprovedAt      *time.Time
	CompletedAt     *time.Time
}

// Clone copia profunda (punteros incluidos) para no compartir estado entre lectores.
func (m *Movement) Clone() *Movement {
	if m == nil {
		return nil
	}
	c := *m
	c.WarehouseFromID = cloneInt64(m.WarehouseFromID)
	c.WarehouseToID = cloneInt64(m.WarehouseToID)
	c.ActualQuantity = cloneInt64(m.ActualQuantity)
	c.ApprovedAt = cloneTime(m.ApprovedAt)
	c.CompletedAt = cloneTime(m.CompletedAt)
	return &c
}

// Terminal indica que ya no admite transiciones.
func (m *Movement) Terminal() bool {
	return m.Status == MovementStatusCompleted
}

// Can informa si action es válida desde el estado actual, sin modificar el movimiento.
func (m *Movement) Can(action string) error {
	if _, ok := movementTransitions[action][m.Status]; !ok {
		return domain.InvalidTransition("movement", action, m.Status)
	}
	return nil
}

func (m *Movement) transition(action string) error {
	next, ok := movementTransitions[action][m.Status]
	if !ok {
		return domain.InvalidTransition("movement", action, m.Status)
	}
	m.Status = next
	return nil
}

// Approve CREATED -> APPROVED.
func (m *Movement) Approve(actor string, now time.Time) error {
	if err := m.transition(MovementActionApprove); err != nil {
		return err
	}
	m.ApprovedBy = actor
	m.ApprovedAt = &now
	m.UpdatedAt = now
	return nil
}

// Complete APPROVED -> COMPLETED registrando la cantidad real movida.
func (m *Movement) Complete(actualQuantity int64, actor string, now time.Time) error {
	if err := m.transition(MovementActionComplete); err != nil {
		return err
	}
	m.ActualQuantity = &actualQuantity
	m.CompletedBy = actor
	m.CompletedAt = &now
	m.UpdatedAt = now
	return nil
}

// StockEffects variaciones de stock (bodega -> delta) que produce un movimiento completado.
func (m *Movement) StockEffects() map[int64]int64 {
	if m.Status != MovementStatusCompleted || m.ActualQuantity == nil || m.WarehouseFromID == nil {
		return nil
	}
	qty := *m.ActualQuantity
	effects := map[int64]int64{*m.WarehouseFromID: -qty}
	if m.Type == MovementTypeTransfer && m.WarehouseToID != nil {
		effects[*m.WarehouseToID] += qty
	}
	return effects
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
