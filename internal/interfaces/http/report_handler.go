package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/report"
)

// ReportHandler reportes de actividad.
type ReportHandler struct {
	svc *report.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Daily godoc
// @Summary      Reporte diario (público)
// @Tags         reports
// @Produce      json
// @Param        date  query     string  false  "YYYY-MM-DD; por defecto hoy (UTC)"
// @Success      200   {object}  dto.DailyReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /reports/daily [get]
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	out, err := h.svc.Daily(c.UserContext(), GetPrincipal(c), c.Query("date"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Monthly godoc
// @Summary      Reporte mensual
// @Description  Planeado vs. real por tipo de movimiento, con tasa de cumplimiento.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        month  query     string  false  "YYYY-MM; por defecto el mes en curso (UTC)"
// @Success      200    {object}  dto.MonthlyReportResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      403    {object}  dto.ErrorResponse
// @Router       /reports/monthly [get]
func (h *ReportHandler) Monthly(c *fiber.Ctx) error {
	out, err := h.svc.Monthly(c.UserContext(), GetPrincipal(c), c.Query("month"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
