package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/document"
	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/domain"
)

// DocumentHandler maneja las peticiones HTTP de documentos (actas de traslado, bajas, etc.).
type DocumentHandler struct {
	engine   *document.Engine
	basePath string
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(engine *document.Engine, basePath string) *DocumentHandler {
	return &DocumentHandler{engine: engine, basePath: basePath}
}

// Create godoc
// @Summary      Crear documento
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateDocumentRequest  true  "Documento"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	d, err := h.engine.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	c.Location(h.basePath + "/documents/" + d.ID)
	return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(d))
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        status  query     string  false  "DRAFT | APPROVED | REJECTED"
// @Param        type    query     string  false  "Tipo de documento"
// @Success      200     {object}  dto.DocumentListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.DocumentListQuery
	if err := c.QueryParser(&q); err != nil {
		return domain.Validation("invalid query", nil)
	}
	list, err := h.engine.List(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return err
	}
	out := dto.DocumentListResponse{Content: make([]dto.DocumentResponse, 0, len(list)), Total: len(list)}
	for _, d := range list {
		out.Content = append(out.Content, toDocumentResponse(d))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	d, err := h.engine.Get(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toDocumentResponse(d))
}

// Approve godoc
// @Summary      Aprobar documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /documents/{id}/approve [put]
func (h *DocumentHandler) Approve(c *fiber.Ctx) error {
	d, err := h.engine.Approve(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toDocumentResponse(d))
}

// Reject godoc
// @Summary      Rechazar documento
// @Description  Solo desde DRAFT; un documento aprobado responde 409.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "ID del documento"
// @Param        body  body      dto.RejectDocumentRequest  false  "Motivo (opcional)"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /documents/{id}/reject [put]
func (h *DocumentHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectDocumentRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	d, err := h.engine.Reject(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(toDocumentResponse(d))
}

// DownloadPDF godoc
// @Summary      Descargar PDF del documento
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /documents/{id}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.engine.RenderPDF(c.UserContext(), GetPrincipal(c), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="documento-`+id+`.pdf"`)
	return c.Send(pdf)
}
