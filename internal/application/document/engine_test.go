package document_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/document"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
)

var (
	operator = entity.Principal{Subject: "op-1", Role: entity.RoleOperator}
	manager  = entity.Principal{Subject: "mgr-1", Role: entity.RoleManager}
	fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
)

func ptr(v int64) *int64 { return &v }

type fakeRenderer struct{ fail bool }

func (f fakeRenderer) Render(d *entity.Document) ([]byte, error) {
	if f.fail {
		return nil, errors.New("sin fuentes")
	}
	return []byte("%PDF-" + d.ID), nil
}

func setup(opts ...document.Option) *document.Engine {
	store := memory.NewStore()
	opts = append([]document.Option{document.WithClock(func() time.Time { return fixedNow })}, opts...)
	return document.NewEngine(store.Documents(), store, opts...)
}

func transferAct() dto.CreateDocumentRequest {
	return dto.CreateDocumentRequest{
		Type:  "TRANSFER_ACT",
		Date:  "2024-03-15",
		Items: []dto.DocumentItemRequest{{ProductID: ptr(100), Quantity: ptr(10)}},
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	de, ok := domain.AsError(err)
	require.True(t, ok, "se esperaba *domain.Error, llegó %v", err)
	return de.Code
}

func TestCreate_Borrador(t *testing.T) {
	e := setup()
	d, err := e.Create(context.Background(), operator, transferAct())
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusDraft, d.Status)
	assert.Equal(t, "2024-03-15", d.Date.Format(dto.DateLayout))
	require.Len(t, d.Items, 1)
	assert.Equal(t, int64(100), d.Items[0].ProductID)
}

func TestCreate_FechaPorDefecto(t *testing.T) {
	e := setup()
	in := transferAct()
	in.Date = ""
	d, err := e.Create(context.Background(), operator, in)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.Date.Format(dto.DateLayout))
}

func TestCreate_Invalido(t *testing.T) {
	e := setup()
	cases := map[string]func(*dto.CreateDocumentRequest){
		"type":              func(in *dto.CreateDocumentRequest) { in.Type = " " },
		"items":             func(in *dto.CreateDocumentRequest) { in.Items = nil },
		"items[0].quantity": func(in *dto.CreateDocumentRequest) { in.Items[0].Quantity = ptr(0) },
		"date":              func(in *dto.CreateDocumentRequest) { in.Date = "15/03/2024" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			in := transferAct()
			mutate(&in)
			_, err := e.Create(context.Background(), operator, in)
			require.Equal(t, domain.CodeValidation, errCode(t, err))
			de, _ := domain.AsError(err)
			assert.Contains(t, de.Details, field)
		})
	}
}

func TestApprove_SellaAprobador(t *testing.T) {
	ctx := context.Background()
	e := setup()
	d, _ := e.Create(ctx, operator, transferAct())

	approved, err := e.Approve(ctx, manager, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusApproved, approved.Status)
	assert.Equal(t, "mgr-1", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, fixedNow, *approved.ApprovedAt)
}

func TestApprove_OperadorDenegado(t *testing.T) {
	ctx := context.Background()
	e := setup()
	d, _ := e.Create(ctx, operator, transferAct())
	_, err := e.Approve(ctx, operator, d.ID)
	assert.Equal(t, domain.CodeAccessDenied, errCode(t, err))
	_, err = e.Reject(ctx, operator, d.ID, dto.RejectDocumentRequest{Reason: "x"})
	assert.Equal(t, domain.CodeAccessDenied, errCode(t, err))
}

func TestReject_TrasAprobarEsConflicto(t *testing.T) {
	ctx := context.Background()
	e := setup()
	d, _ := e.Create(ctx, operator, transferAct())
	_, err := e.Approve(ctx, manager, d.ID)
	require.NoError(t, err)

	_, err = e.Reject(ctx, manager, d.ID, dto.RejectDocumentRequest{Reason: "incorrect data"})
	assert.Equal(t, domain.CodeInvalidTransition, errCode(t, err))

	got, _ := e.Get(ctx, operator, d.ID)
	assert.Equal(t, entity.DocumentStatusApproved, got.Status)
	assert.Empty(t, got.RejectionReason)
}

func TestReject_MotivoOpcional(t *testing.T) {
	ctx := context.Background()
	e := setup()
	d, _ := e.Create(ctx, operator, transferAct())

	_, err := e.Reject(ctx, manager, d.ID, dto.RejectDocumentRequest{Reason: strings.Repeat("x", 501)})
	assert.Equal(t, domain.CodeValidation, errCode(t, err))

	rejected, err := e.Reject(ctx, manager, d.ID, dto.RejectDocumentRequest{Reason: "   "})
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusRejected, rejected.Status)
	assert.Empty(t, rejected.RejectionReason)
	assert.Equal(t, "mgr-1", rejected.RejectedBy)
}

func TestReject_EstadoAntesQueBody(t *testing.T) {
	ctx := context.Background()
	e := setup()
	d, _ := e.Create(ctx, operator, transferAct())
	_, err := e.Approve(ctx, manager, d.ID)
	require.NoError(t, err)

	_, err = e.Reject(ctx, manager, d.ID, dto.RejectDocumentRequest{Reason: strings.Repeat("x", 501)})
	assert.Equal(t, domain.CodeInvalidTransition, errCode(t, err))

	_, err = e.Reject(ctx, manager, "no-existe", dto.RejectDocumentRequest{Reason: strings.Repeat("x", 501)})
	assert.Equal(t, domain.CodeNotFound, errCode(t, err))
}

func TestList_PorEstado(t *testing.T) {
	ctx := context.Background()
	e := setup()
	a, _ := e.Create(ctx, operator, transferAct())
	b, _ := e.Create(ctx, operator, transferAct())
	_, err := e.Approve(ctx, manager, b.ID)
	require.NoError(t, err)

	drafts, err := e.List(ctx, operator, dto.DocumentListQuery{Status: "DRAFT"})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, a.ID, drafts[0].ID)

	all, err := e.List(ctx, operator, dto.DocumentListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID, "orden de creación")
}

func TestApproveReject_ConcurrentesUnSoloGanador(t *testing.T) {
	ctx := context.Background()
	e := setup()
	d, _ := e.Create(ctx, operator, transferAct())

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = e.Approve(ctx, manager, d.ID)
			} else {
				_, err = e.Reject(ctx, manager, d.ID, dto.RejectDocumentRequest{Reason: "dup"})
			}
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRenderPDF(t *testing.T) {
	ctx := context.Background()
	e := setup(document.WithRenderer(fakeRenderer{}))
	d, _ := e.Create(ctx, operator, transferAct())

	pdf, err := e.RenderPDF(ctx, operator, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-"+d.ID, string(pdf))

	_, err = e.RenderPDF(ctx, operator, "no-existe")
	assert.Equal(t, domain.CodeNotFound, errCode(t, err))

	_, err = setup().RenderPDF(ctx, operator, "x")
	assert.Error(t, err)
}
