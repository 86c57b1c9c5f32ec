package dto

// StockQuery filtros de GET /stock; todos opcionales y conjuntivos.
type StockQuery struct {
	WarehouseID    *int64
	Category       string
	BelowThreshold *int64
}

// StockItemResponse producto con su cantidad (en la bodega filtrada o total) y desglose por bodega.
type StockItemResponse struct {
	ProductID  int64           `json:"productId"`
	Category   string          `json:"category"`
	Quantity   int64           `json:"quantity"`
	Warehouses map[int64]int64 `json:"warehouses"`
}

// StockListResponse salida de GET /stock.
type StockListResponse struct {
	Items []StockItemResponse `json:"items"`
	Total int                 `json:"total"`
}

// StockProductResponse agregado de un producto en todas las bodegas.
type StockProductResponse struct {
	ProductID     int64           `json:"productId"`
	Category      string          `json:"category"`
	TotalQuantity int64           `json:"totalQuantity"`
	Warehouses    map[int64]int64 `json:"warehouses"`
}
