package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/report"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
)

func ptr(v int64) *int64 { return &v }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tp(s string) *time.Time {
	t := at(s)
	return &t
}

func seeded(t *testing.T) *report.Service {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	movs := []*entity.Movement{
		{ID: "m1", WarehouseFromID: ptr(1), WarehouseToID: ptr(2), ProductID: 100, Quantity: 50, Type: entity.MovementTypeTransfer,
			Status: entity.MovementStatusCompleted, ActualQuantity: ptr(48),
			CreatedAt: at("2024-03-14T09:00:00Z"), ApprovedAt: tp("2024-03-15T08:00:00Z"), CompletedAt: tp("2024-03-15T12:00:00Z")},
		{ID: "m2", WarehouseFromID: ptr(1), WarehouseToID: ptr(3), ProductID: 100, Quantity: 30, Type: entity.MovementTypeTransfer,
			Status: entity.MovementStatusCompleted, ActualQuantity: ptr(30),
			CreatedAt: at("2024-03-15T09:00:00Z"), ApprovedAt: tp("2024-03-15T09:30:00Z"), CompletedAt: tp("2024-03-20T12:00:00Z")},
		{ID: "m3", WarehouseFromID: ptr(1), ProductID: 200, Quantity: 5, Type: entity.MovementTypeWriteOff, Reason: "damaged",
			Status: entity.MovementStatusCreated, CreatedAt: at("2024-03-15T10:00:00Z")},
		{ID: "m4", WarehouseFromID: ptr(1), ProductID: 200, Quantity: 10, Type: entity.MovementTypeWriteOff, Reason: "expired",
			Status: entity.MovementStatusCompleted, ActualQuantity: ptr(10),
			CreatedAt: at("2024-02-27T10:00:00Z"), CompletedAt: tp("2024-02-28T10:00:00Z")},
	}
	for _, m := range movs {
		require.NoError(t, s.Movements().Create(ctx, m))
	}
	docs := []*entity.Document{
		{ID: "d1", Type: "TRANSFER_ACT", Status: entity.DocumentStatusApproved, CreatedAt: at("2024-03-15T07:00:00Z"), ApprovedAt: tp("2024-03-15T11:00:00Z")},
		{ID: "d2", Type: "TRANSFER_ACT", Status: entity.DocumentStatusRejected, CreatedAt: at("2024-03-10T07:00:00Z"), RejectedAt: tp("2024-03-11T11:00:00Z")},
	}
	for _, d := range docs {
		require.NoError(t, s.Documents().Create(ctx, d))
	}
	svc := report.NewService(s.Movements(), s.Documents())
	svc.SetClock(func() time.Time { return at("2024-03-15T18:00:00Z") })
	return svc
}

func TestDaily_Publico(t *testing.T) {
	svc := seeded(t)
	r, err := svc.Daily(context.Background(), entity.Principal{}, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", r.Date)
	assert.Equal(t, 2, r.MovementsCreated)
	assert.Equal(t, 2, r.MovementsApproved)
	assert.Equal(t, 1, r.MovementsCompleted)
	assert.Equal(t, 1, r.DocumentsCreated)
	assert.Equal(t, 1, r.DocumentsApproved)
	assert.Equal(t, 0, r.DocumentsRejected)
}

func TestDaily_FechaInvalida(t *testing.T) {
	svc := seeded(t)
	_, err := svc.Daily(context.Background(), entity.Principal{}, "ayer")
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeValidation, de.Code)
	assert.Contains(t, de.Details, "date")
}

func TestMonthly_TotalesPorTipo(t *testing.T) {
	svc := seeded(t)
	r, err := svc.Monthly(context.Background(), entity.Principal{Subject: "g", Role: entity.RoleManager}, "2024-03")
	require.NoError(t, err)
	require.Len(t, r.Lines, 2)

	tr := r.Lines[0]
	assert.Equal(t, entity.MovementTypeTransfer, tr.Type)
	assert.Equal(t, 2, tr.Movements)
	assert.Equal(t, int64(80), tr.PlannedQuantity)
	assert.Equal(t, int64(78), tr.ActualQuantity)
	assert.Equal(t, int64(2), tr.Variance)
	assert.True(t, decimal.RequireFromString("0.975").Equal(tr.FulfillmentRate), tr.FulfillmentRate.String())

	wo := r.Lines[1]
	assert.Equal(t, 0, wo.Movements, "la baja de febrero no cuenta")
	assert.True(t, wo.FulfillmentRate.IsZero())

	assert.Equal(t, 1, r.PendingMovements)
	assert.Equal(t, 1, r.DocumentsApproved)
	assert.Equal(t, 1, r.DocumentsRejected)
}

func TestMonthly_SoloGerentes(t *testing.T) {
	svc := seeded(t)
	_, err := svc.Monthly(context.Background(), entity.Principal{Subject: "o", Role: entity.RoleOperator}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.Monthly(context.Background(), entity.Principal{}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
