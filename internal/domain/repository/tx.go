package repository

import "context"

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ningún cambio aplicado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo MovementRepository,
		docRepo DocumentRepository,
		stockRepo StockRepository,
	) error) error
}
