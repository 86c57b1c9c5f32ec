package entity

import "time"

// StockBalance saldo de un producto en una bodega (tabla materializada a partir de los movimientos completados).
type StockBalance struct {
	ProductID   int64
	WarehouseID int64
	Category    string
	Quantity    int64
	UpdatedAt   time.Time
}

// StockItem vista agregada de un producto: total y desglose por bodega. Solo lectura.
type StockItem struct {
	ProductID  int64
	Category   string
	Quantity   int64
	Warehouses map[int64]int64
}
