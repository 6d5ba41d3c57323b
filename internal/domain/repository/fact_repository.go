package repository

import (
	"context"

	"github.com/jhoicas/fillplan-api/internal/domain/entity"
)

// FactRepository puerto de solo lectura sobre los hechos de stock y pronóstico.
type FactRepository interface {
	// LoadFacts devuelve las filas de stock y pronóstico de un producto y la fecha del último
	// snapshot de stock. Un producto sin filas devuelve un snapshot vacío, no error.
	LoadFacts(ctx context.Context, productID string) (*entity.FactSnapshot, error)
}
