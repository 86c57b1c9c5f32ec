package dto

import "time"

// CreateMovementRequest body para POST /movements.
// TRANSFER exige origen y destino; WRITE_OFF exige reason, el origen es opcional y no admite destino.
type CreateMovementRequest struct {
	WarehouseFromID *int64 `json:"warehouseFromId" validate:"required_if=Type TRANSFER"`
	WarehouseToID   *int64 `json:"warehouseToId" validate:"required_if=Type TRANSFER,excluded_if=Type WRITE_OFF"`
	ProductID       *int64 `json:"productId" validate:"required,gt=0"`
	Quantity        *int64 `json:"quantity" validate:"required,gt=0"`
	Type            string `json:"type" validate:"required,oneof=TRANSFER WRITE_OFF"`
	Reason          string `json:"reason" validate:"required_if=Type WRITE_OFF,max=500"`
}

// CompleteMovementRequest body para PUT /movements/{id}/complete.
type CompleteMovementRequest struct {
	ActualQuantity *int64 `json:"actualQuantity" validate:"required,gt=0"`
}

// MovementListQuery filtros de GET /movements.
type MovementListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=CREATED APPROVED COMPLETED"`
	Type   string `query:"type" validate:"omitempty,oneof=TRANSFER WRITE_OFF"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID              string     `json:"id"`
	WarehouseFromID *int64     `json:"warehouseFromId"`
	WarehouseToID   *int64     `json:"warehouseToId"`
	ProductID       int64      `json:"productId"`
	Quantity        int64      `json:"quantity"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	ActualQuantity  *int64     `json:"actualQuantity"`
	Reason          string     `json:"reason,omitempty"`
	CreatedBy       string     `json:"createdBy"`
	ApprovedBy      *string    `json:"approvedBy"`
	CompletedBy     *string    `json:"completedBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ApprovedAt      *time.Time `json:"approvedAt"`
	CompletedAt     *time.Time `json:"completedAt"`
}

// MovementListResponse lista de movimientos.
type MovementListResponse struct {
	Content []MovementResponse `json:"content"`
	Total   int                `json:"total"`
}
