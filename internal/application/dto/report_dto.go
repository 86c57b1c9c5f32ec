package dto

import "github.com/shopspring/decimal"

// DailyReportResponse actividad de un día (UTC).
type DailyReportResponse struct {
	Date               string `json:"date"`
	MovementsCreated   int    `json:"movementsCreated"`
	MovementsApproved  int    `json:"movementsApproved"`
	MovementsCompleted int    `json:"movementsCompleted"`
	DocumentsCreated   int    `json:"documentsCreated"`
	DocumentsApproved  int    `json:"documentsApproved"`
	DocumentsRejected  int    `json:"documentsRejected"`
}

// MonthlyReportLine totales de movimientos completados en el mes para un tipo.
type MonthlyReportLine struct {
	Type            string          `json:"type"`
	Movements       int             `json:"movements"`
	PlannedQuantity int64           `json:"plannedQuantity"`
	ActualQuantity  int64           `json:"actualQuantity"`
	Variance        int64           `json:"variance"`        // planificado - real
	FulfillmentRate decimal.Decimal `json:"fulfillmentRate"` // real / planificado, 4 decimales
}

// MonthlyReportResponse resumen mensual.
type MonthlyReportResponse struct {
	Month             string              `json:"month"`
	Lines             []MonthlyReportLine `json:"lines"`
	PendingMovements  int                 `json:"pendingMovements"`
	DocumentsApproved int                 `json:"documentsApproved"`
	DocumentsRejected int                 `json:"documentsRejected"`
}
