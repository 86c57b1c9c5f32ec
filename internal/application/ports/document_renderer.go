package ports

import "github.com/jhoicas/Bodega-api/internal/domain/entity"

// DocumentRenderer genera la representación imprimible (PDF) de un documento.
type DocumentRenderer interface {
	Render(doc *entity.Document) ([]byte, error)
}
