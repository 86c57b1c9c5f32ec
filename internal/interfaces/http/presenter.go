package http

import (
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		WarehouseFromID: m.WarehouseFromID,
		WarehouseToID:   m.WarehouseToID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		Type:            m.Type,
		Status:          m.Status,
		ActualQuantity:  m.ActualQuantity,
		Reason:          m.Reason,
		CreatedBy:       m.CreatedBy,
		ApprovedBy:      optional(m.ApprovedBy),
		CompletedBy:     optional(m.CompletedBy),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		ApprovedAt:      m.ApprovedAt,
		CompletedAt:     m.CompletedAt,
	}
}

func toDocumentResponse(d *entity.Document) dto.DocumentResponse {
	items := make([]dto.DocumentItemResponse, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, dto.DocumentItemResponse{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return dto.DocumentResponse{
		ID:              d.ID,
		Type:            d.Type,
		MovementID:      optional(d.MovementID),
		Date:            d.Date.Format(dto.DateLayout),
		Items:           items,
		Status:          d.Status,
		CreatedBy:       d.CreatedBy,
		ApprovedBy:      optional(d.ApprovedBy),
		ApprovedAt:      d.ApprovedAt,
		RejectedBy:      optional(d.RejectedBy),
		RejectedAt:      d.RejectedAt,
		RejectionReason: optional(d.RejectionReason),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toStockItemResponse(s *entity.StockItem) dto.StockItemResponse {
	return dto.StockItemResponse{
		ProductID:  s.ProductID,
		Category:   s.Category,
		Quantity:   s.Quantity,
		Warehouses: warehouses(s.Warehouses),
	}
}

func toStockProductResponse(s *entity.StockItem) dto.StockProductResponse {
	return dto.StockProductResponse{
		ProductID:     s.ProductID,
		Category:      s.Category,
		TotalQuantity: s.Quantity,
		Warehouses:    warehouses(s.Warehouses),
	}
}

func warehouses(in map[int64]int64) map[int64]int64 {
	out := make(map[int64]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// optional "" -> nil para que el JSON muestre null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
