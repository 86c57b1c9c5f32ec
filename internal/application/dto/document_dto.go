package dto

import "time"

// CreateDocumentRequest body para POST /documents. date vacío = hoy (UTC).
type CreateDocumentRequest struct {
	Type       string                `json:"type" validate:"required,max=64"`
	MovementID string                `json:"movementId" validate:"omitempty,max=64"`
	Date       string                `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Items      []DocumentItemRequest `json:"items" validate:"required,min=1,dive"`
}

// DocumentItemRequest línea de documento.
type DocumentItemRequest struct {
	ProductID *int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int64 `json:"quantity" validate:"required,gt=0"`
}

// RejectDocumentRequest body opcional para PUT /documents/{id}/reject.
type RejectDocumentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// DocumentListQuery filtros de GET /documents.
type DocumentListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=DRAFT APPROVED REJECTED"`
	Type   string `query:"type" validate:"omitempty,max=64"`
}

// DocumentItemResponse línea de documento en la salida.
type DocumentItemResponse struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	MovementID      *string                `json:"movementId"`
	Date            string                 `json:"date"`
	Items           []DocumentItemResponse `json:"items"`
	Status          string                 `json:"status"`
	CreatedBy       string                 `json:"createdBy"`
	ApprovedBy      *string                `json:"approvedBy"`
	ApprovedAt      *time.Time             `json:"approvedAt"`
	RejectedBy      *string                `json:"rejectedBy"`
	RejectedAt      *time.Time             `json:"rejectedAt"`
	RejectionReason *string                `json:"rejectionReason"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// DocumentListResponse lista de documentos.
type DocumentListResponse struct {
	Content []DocumentResponse `json:"content"`
	Total   int                `json:"total"`
}
