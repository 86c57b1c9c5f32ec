package entity

import (
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain"
)

// Estados de un documento.
const (
	DocumentStatusDraft    = "DRAFT"
	DocumentStatusApproved = "APPROVED"
	DocumentStatusRejected = "REJECTED"
)

// Acciones sobre un documento.
const (
	DocumentActionApprove = "approve"
	DocumentActionReject  = "reject"
)

// Solo DRAFT admite transiciones; APPROVED y REJECTED son terminales.
var documentTransitions = map[string]map[string]string{
	DocumentActionApprove: {DocumentStatusDraft: DocumentStatusApproved},
	DocumentActionReject:  {DocumentStatusDraft: DocumentStatusRejected},
}

// DocumentItem línea de un documento.
type DocumentItem struct {
	ProductID int64
	Quantity  int64
}

// Document artefacto de aprobación (ej. acta de traslado) con ciclo de vida propio.
// MovementID referencia un movimiento solo por identificador.
type Document struct {
	ID              string
	Type            string
	MovementID      string
	Date            time.Time
	Items           []DocumentItem
	Status          string
	CreatedBy       string
	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectedBy      string
	RejectedAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone copia profunda del documento.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Items = append([]DocumentItem(nil), d.Items...)
	c.ApprovedAt = cloneTime(d.ApprovedAt)
	c.RejectedAt = cloneTime(d.RejectedAt)
	return &c
}

// Terminal indica que ya no admite transiciones.
func (d *Document) Terminal() bool {
	return d.Status == DocumentStatusApproved || d.Status == DocumentStatusRejected
}

// Can informa si action es válida desde el estado actual.
func (d *Document) Can(action string) error {
	if _, ok := documentTransitions[action][d.Status]; !ok {
		return domain.InvalidTransition("document", action, d.Status)
	}
	return nil
}

func (d *Document) transition(action string) error {
	next, ok := documentTransitions[action][d.Status]
	if !ok {
		return domain.InvalidTransition("document", action, d.Status)
	}
	d.Status = next
	return nil
}

// Approve DRAFT -> APPROVED, sella quién y cuándo.
func (d *Document) Approve(actor string, now time.Time) error {
	if err := d.transition(DocumentActionApprove); err != nil {
		return err
	}
	d.ApprovedBy = actor
	d.ApprovedAt = &now
	d.UpdatedAt = now
	return nil
}

// Reject DRAFT -> REJECTED con motivo.
func (d *Document) Reject(reason, actor string, now time.Time) error {
	if err := d.transition(DocumentActionReject); err != nil {
		return err
	}
	d.RejectionReason = reason
	d.RejectedBy = actor
	d.RejectedAt = &now
	d.UpdatedAt = now
	return nil
}
