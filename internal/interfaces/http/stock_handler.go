package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/stock"
	"github.com/jhoicas/Bodega-api/internal/domain"
)

// StockHandler consultas de existencias (solo lectura).
type StockHandler struct {
	ledger *stock.Ledger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.Ledger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// Query godoc
// @Summary      Consultar stock
// @Description  Filtros opcionales y conjuntivos. Una bodega sin existencias devuelve items vacío.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouseId     query     int     false  "Bodega"
// @Param        category        query     string  false  "Categoría"
// @Param        belowThreshold  query     int     false  "Solo cantidades menores a este valor"
// @Success      200             {object}  dto.StockListResponse
// @Failure      400             {object}  dto.ErrorResponse
// @Router       /stock [get]
func (h *StockHandler) Query(c *fiber.Ctx) error {
	var q dto.StockQuery
	details := map[string]string{}
	if v := c.Query("warehouseId"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			details["warehouseId"] = "must be an integer"
		} else {
			q.WarehouseID = &n
		}
	}
	if v := c.Query("belowThreshold"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			details["belowThreshold"] = "must be an integer"
		} else {
			q.BelowThreshold = &n
		}
	}
	if len(details) > 0 {
		return domain.Validation("invalid query", details)
	}
	q.Category = c.Query("category")

	items, err := h.ledger.Query(c.UserContext(), GetPrincipal(c), q)
	if err != nil {
		return err
	}
	out := dto.StockListResponse{Items: make([]dto.StockItemResponse, 0, len(items)), Total: len(items)}
	for _, it := range items {
		out.Items = append(out.Items, toStockItemResponse(it))
	}
	return c.JSON(out)
}

// GetByProduct godoc
// @Summary      Stock de un producto
// @Description  Total en todas las bodegas con desglose por bodega.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path      int  true  "Producto"
// @Success      200        {object}  dto.StockProductResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /stock/{productId} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	productID, err := strconv.ParseInt(c.Params("productId"), 10, 64)
	if err != nil {
		return domain.FieldError("productId", "must be an integer")
	}
	item, err := h.ledger.GetByProduct(c.UserContext(), GetPrincipal(c), productID)
	if err != nil {
		return err
	}
	return c.JSON(toStockProductResponse(item))
}
