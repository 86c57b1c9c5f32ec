// Package report calcula los reportes diario y mensual a partir de movimientos y documentos.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/access"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

// Service reportes de actividad. Todas las fechas se evalúan en UTC.
type Service struct {
	movements repository.MovementRepository
	documents repository.DocumentRepository
	now       func() time.Time
}

// NewService construye el servicio de reportes.
func NewService(movements repository.MovementRepository, documents repository.DocumentRepository) *Service {
	return &Service{movements: movements, documents: documents, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock reemplaza time.Now (tests).
func (s *Service) SetClock(now func() time.Time) { s.now = now }

type period struct{ from, to time.Time }

func (p period) contains(t *time.Time) bool {
	return t != nil && !t.Before(p.from) && t.Before(p.to)
}

// Daily actividad del día date (YYYY-MM-DD, vacío = hoy). Público.
func (s *Service) Daily(ctx context.Context, p entity.Principal, date string) (*dto.DailyReportResponse, error) {
	if err := access.Authorize(p, access.Reports, access.Daily); err != nil {
		return nil, err
	}
	day := s.now().Truncate(24 * time.Hour)
	if date = strings.TrimSpace(date); date != "" {
		parsed, err := time.Parse(dto.DateLayout, date)
		if err != nil {
			return nil, domain.FieldError("date", "must be a date formatted as "+dto.DateLayout)
		}
		day = parsed
	}
	per := period{from: day, to: day.AddDate(0, 0, 1)}

	movements, documents, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.DailyReportResponse{Date: day.Format(dto.DateLayout)}
	for _, m := range movements {
		created := m.CreatedAt
		if per.contains(&created) {
			out.MovementsCreated++
		}
		if per.contains(m.ApprovedAt) {
			out.MovementsApproved++
		}
		if per.contains(m.CompletedAt) {
			out.MovementsCompleted++
		}
	}
	for _, d := range documents {
		created := d.CreatedAt
		if per.contains(&created) {
			out.DocumentsCreated++
		}
		if per.contains(d.ApprovedAt) {
			out.DocumentsApproved++
		}
		if per.contains(d.RejectedAt) {
			out.DocumentsRejected++
		}
	}
	return out, nil
}

// Monthly totales por tipo de los movimientos completados en el mes (YYYY-MM, vacío = mes actual).
func (s *Service) Monthly(ctx context.Context, p entity.Principal, month string) (*dto.MonthlyReportResponse, error) {
	if err := access.Authorize(p, access.Reports, access.Monthly); err != nil {
		return nil, err
	}
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if month = strings.TrimSpace(month); month != "" {
		parsed, err := time.Parse(dto.MonthLayout, month)
		if err != nil {
			return nil, domain.FieldError("month", "must be a month formatted as "+dto.MonthLayout)
		}
		start = parsed
	}
	per := period{from: start, to: start.AddDate(0, 1, 0)}

	movements, documents, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	lines := map[string]*dto.MonthlyReportLine{
		entity.MovementTypeTransfer: {Type: entity.MovementTypeTransfer},
		entity.MovementTypeWriteOff: {Type: entity.MovementTypeWriteOff},
	}
	out := &dto.MonthlyReportResponse{Month: start.Format(dto.MonthLayout)}
	for _, m := range movements {
		created := m.CreatedAt
		if m.Status != entity.MovementStatusCompleted && per.contains(&created) {
			out.PendingMovements++
		}
		if !per.contains(m.CompletedAt) || m.ActualQuantity == nil {
			continue
		}
		line, ok := lines[m.Type]
		if !ok {
			continue
		}
		line.Movements++
		line.PlannedQuantity += m.Quantity
		line.ActualQuantity += *m.ActualQuantity
	}
	for _, d := range documents {
		if per.contains(d.ApprovedAt) {
			out.DocumentsApproved++
		}
		if per.contains(d.RejectedAt) {
			out.DocumentsRejected++
		}
	}
	for _, t := range []string{entity.MovementTypeTransfer, entity.MovementTypeWriteOff} {
		line := lines[t]
		line.Variance = line.PlannedQuantity - line.ActualQuantity
		line.FulfillmentRate = fulfillment(line.PlannedQuantity, line.ActualQuantity)
		out.Lines = append(out.Lines, *line)
	}
	return out, nil
}

// fulfillment real/planificado con 4 decimales; 0 sin cantidad planificada.
func fulfillment(planned, actual int64) decimal.Decimal {
	if planned == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(actual).DivRound(decimal.NewFromInt(planned), 4)
}

func (s *Service) load(ctx context.Context) ([]*entity.Movement, []*entity.Document, error) {
	movements, err := s.movements.List(ctx, repository.MovementFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("listar movimientos: %w", err)
	}
	documents, err := s.documents.List(ctx, repository.DocumentFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("listar documentos: %w", err)
	}
	return movements, documents, nil
}
