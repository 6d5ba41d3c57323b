package fillplan

import (
	"context"

	"github.com/jhoicas/fillplan-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con el repositorio de corridas atado a esa tx.
// Garantiza que cabecera y líneas de una corrida se guarden juntas.
type TxRunner interface {
	RunFillPlan(ctx context.Context, fn func(runs repository.FillPlanRepository) error) error
}

// Roles con permiso para guardar corridas.
const (
	RoleAdmin   = "admin"
	RolePlanner = "planner"
	RoleViewer  = "viewer"
)

// Actor usuario autenticado que dispara la corrida.
type Actor struct {
	UserID string
	Role   string
}

// CanSave indica si el actor puede persistir corridas.
func (a Actor) CanSave() bool {
	return a.Role == RoleAdmin || a.Role == RolePlanner
}
