package repository

import (
	"context"

	"github.com/jhoicas/fillplan-api/internal/domain/entity"
)

// FillPlanRepository persiste corridas del planificador (cabecera + líneas).
type FillPlanRepository interface {
	Create(ctx context.Context, run *entity.FillPlanRun) error
	// GetByID devuelve la corrida con sus líneas; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.FillPlanRun, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.FillPlanRun, error)
}
