package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/movement"
	"github.com/jhoicas/Bodega-api/internal/domain"
)

// MovementHandler maneja las peticiones HTTP de movimientos de bodega.
type MovementHandler struct {
	engine   *movement.Engine
	basePath string
}

// NewMovementHandler construye el handler. basePath arma la cabecera Location.
func NewMovementHandler(engine *movement.Engine, basePath string) *MovementHandler {
	return &MovementHandler{engine: engine, basePath: basePath}
}

// Create godoc
// @Summary      Crear movimiento
// @Description  TRANSFER exige warehouseToId distinto del origen; WRITE_OFF exige reason.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	m, err := h.engine.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	c.Location(h.basePath + "/movements/" + m.ID)
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(m))
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        status  query     string  false  "CREATED | APPROVED | COMPLETED"
// @Param        type    query     string  false  "TRANSFER | WRITE_OFF"
// @Success      200     {object}  dto.MovementListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return domain.Validation("invalid query", nil)
	}
	list, err := h.engine.List(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return err
	}
	out := dto.MovementListResponse{Content: make([]dto.MovementResponse, 0, len(list)), Total: len(list)}
	for _, m := range list {
		out.Content = append(out.Content, toMovementResponse(m))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	m, err := h.engine.Get(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toMovementResponse(m))
}

// Approve godoc
// @Summary      Aprobar movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /movements/{id}/approve [put]
func (h *MovementHandler) Approve(c *fiber.Ctx) error {
	m, err := h.engine.Approve(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toMovementResponse(m))
}

// Complete godoc
// @Summary      Completar movimiento
// @Description  Registra la cantidad real y aplica el efecto sobre el stock.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID del movimiento"
// @Param        body  body      dto.CompleteMovementRequest  true  "Cantidad real"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /movements/{id}/complete [put]
func (h *MovementHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteMovementRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	m, err := h.engine.Complete(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(toMovementResponse(m))
}
