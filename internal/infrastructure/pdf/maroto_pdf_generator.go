// Package pdf genera la representación imprimible de un documento de bodega (acta de traslado,
// acta de baja, etc.) con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de documento + ID  │  Estado + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  REFERENCIA: Movimiento asociado / creado por               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Producto | Cantidad                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL UNIDADES                                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SELLO: Aprobado/Rechazado por + fecha + QR del ID          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

var _ ports.DocumentRenderer = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite    = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorApproved = &props.Color{Red: 0, Green: 120, Blue: 60}
	colorRejected = &props.Color{Red: 170, Green: 20, Blue: 20}
)

const dateLayout = "02/01/2006"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.DocumentRenderer usando Maroto v2.
type MarotoPDFGenerator struct {
	company string
}

// NewMarotoPDFGenerator construye el generador; company aparece como autor del PDF.
func NewMarotoPDFGenerator(company string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{company: company}
}

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Render(doc *entity.Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Documento "+doc.Type, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(referenceRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range itemRows(doc.Items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(doc.Items))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(stampRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(doc *entity.Document) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(doc.Type, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+doc.ID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(doc.Status, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right,
				Color: statusColor(doc.Status), Top: 1,
			}),
			text.New("Fecha: "+doc.Date.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func referenceRow(doc *entity.Document) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("REFERENCIA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Movimiento: %s   |   Creado por: %s   |   Creado: %s",
				nonEmpty(doc.MovementID, "—"),
				nonEmpty(doc.CreatedBy, "—"),
				doc.CreatedAt.Format(dateLayout+" 15:04"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Producto", 7, align.Left),
		h("Cantidad", 4, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func itemRows(items []entity.DocumentItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for i, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				strconv.Itoa(i+1),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(7).Add(text.New(
				strconv.FormatInt(it.ProductID, 10),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				formatThousands(it.Quantity),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalRow(items []entity.DocumentItem) core.Row {
	var total int64
	for _, it := range items {
		total += it.Quantity
	}
	return row.New(8).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL UNIDADES:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 1,
		})),
		col.New(3).Add(text.New(formatThousands(total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 1,
		})),
	)
}

// stampRow: quién aprobó o rechazó y un QR con el ID para trazabilidad en bodega.
func stampRow(doc *entity.Document) core.Row {
	var lines []core.Component
	switch doc.Status {
	case entity.DocumentStatusApproved:
		lines = append(lines, text.New("APROBADO", props.Text{Style: fontstyle.Bold, Size: 11, Color: colorApproved, Top: 4, Left: 3}))
		lines = append(lines, text.New(fmt.Sprintf("Por: %s   |   %s", doc.ApprovedBy, formatStamp(doc.ApprovedAt)),
			props.Text{Size: 8, Top: 12, Left: 3, Color: colorGray}))
	case entity.DocumentStatusRejected:
		lines = append(lines, text.New("RECHAZADO", props.Text{Style: fontstyle.Bold, Size: 11, Color: colorRejected, Top: 4, Left: 3}))
		lines = append(lines, text.New(fmt.Sprintf("Por: %s   |   %s", doc.RejectedBy, formatStamp(doc.RejectedAt)),
			props.Text{Size: 8, Top: 12, Left: 3, Color: colorGray}))
		if doc.RejectionReason != "" {
			lines = append(lines, text.New("Motivo: "+doc.RejectionReason, props.Text{Size: 8, Top: 18, Left: 3}))
		}
	default:
		lines = append(lines, text.New("BORRADOR - pendiente de aprobación", props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorGray, Top: 4, Left: 3,
		}))
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(doc.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(lines...),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusColor(status string) *props.Color {
	switch status {
	case entity.DocumentStatusApproved:
		return colorApproved
	case entity.DocumentStatusRejected:
		return colorRejected
	}
	return colorGray
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format(dateLayout + " 15:04")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 25000 → "25.000", -1000000 → "-1.000.000".
func formatThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	sign := ""
	if v < 0 {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
