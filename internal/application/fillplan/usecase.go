// Package fillplan orquesta una corrida del planificador: carga producto, SKUs y hechos,
// ejecuta el motor de dominio y, si se pide, guarda la corrida en una transacción.
package fillplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/application/validation"
	"github.com/jhoicas/fillplan-api/internal/domain"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	engine "github.com/jhoicas/fillplan-api/internal/domain/fillplan"
	"github.com/jhoicas/fillplan-api/internal/domain/repository"
	"github.com/jhoicas/fillplan-api/pkg/logger"
)

// Mensajes de planes vacíos y de granel insuficiente.
const (
	MsgNothingToFill    = "Nada que llenar."
	MsgNothingLeft      = "Los pedidos urgentes consumen todo el granel: no queda nada para planificar."
	MsgInsufficientBulk = "Las cantidades urgentes exceden el granel disponible. Reduzca las cantidades."
)

// maxBulkBaseQty cota de las columnas NUMERIC(18,6) de fill_plan_runs.
var maxBulkBaseQty = decimal.New(1, 12)

// Config parámetros de ejecución (ver config.PlannerConfig).
type Config struct {
	RunTimeout     time.Duration
	PersistDefault bool
	MaxEmergency   int
	MaxPacks       int64 // 0 = sin tope
}

// Deps dependencias del caso de uso.
type Deps struct {
	Products repository.ProductRepository
	SKUs     repository.SKURepository
	Facts    repository.FactRepository
	Runs     repository.FillPlanRepository
	Tx       TxRunner
	Log      *logger.Logger
	Metrics  *Metrics
}

// UseCase casos de uso del planificador de llenado.
type UseCase struct {
	products repository.ProductRepository
	skus     repository.SKURepository
	facts    repository.FactRepository
	runs     repository.FillPlanRepository
	tx       TxRunner
	log      *logger.Logger
	metrics  *Metrics
	cfg      Config
	now      func() time.Time
}

// NewUseCase construye el caso de uso. Log y Metrics son opcionales.
func NewUseCase(d Deps, cfg Config) *UseCase {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		products: d.Products,
		skus:     d.SKUs,
		facts:    d.Facts,
		runs:     d.Runs,
		tx:       d.Tx,
		log:      log.Component("fillplan"),
		metrics:  d.Metrics,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Calculate calcula el plan para un producto y un granel. Con save (o PersistDefault) guarda la
// corrida; guardar requiere rol planner o admin.
func (uc *UseCase) Calculate(ctx context.Context, actor Actor, in dto.FillPlanRequest) (*dto.FillPlanResponse, error) {
	started := time.Now()
	out, err := uc.calculate(ctx, actor, in)
	elapsed := time.Since(started)

	if err != nil {
		reason := failureReason(err)
		uc.metrics.observeFailure(reason, elapsed)
		ev := uc.log.Warn()
		if reason == "internal" || reason == "timeout" {
			ev = uc.log.Error()
		}
		ev.Err(err).
			Str("product_id", in.ProductID).
			Str("user_id", actor.UserID).
			Str("reason", reason).
			Dur("elapsed", elapsed).
			Msg("corrida rechazada")
		return nil, err
	}

	uc.metrics.observeRun(out.Outcome, usedRatio(out), elapsed)
	uc.log.Info().
		Str("product_id", out.ProductID).
		Str("user_id", actor.UserID).
		Str("bulk", out.BulkBaseQty.String()).
		Str("emergency", out.EmergencyBaseQty.String()).
		Str("outcome", out.Outcome).
		Float64("target_mos", out.TargetMOS).
		Int("lines", len(out.Lines)).
		Int("trimmed_packs", out.TrimmedPacks).
		Str("run_id", out.RunID).
		Dur("elapsed", elapsed).
		Msg("corrida calculada")
	return out, nil
}

func (uc *UseCase) calculate(ctx context.Context, actor Actor, in dto.FillPlanRequest) (*dto.FillPlanResponse, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if uc.cfg.MaxEmergency > 0 && len(in.Emergency) > uc.cfg.MaxEmergency {
		return nil, domain.NewValidationError("emergency", fmt.Sprintf("admite como máximo %d líneas", uc.cfg.MaxEmergency))
	}
	if in.BulkBaseQty.GreaterThanOrEqual(maxBulkBaseQty) {
		return nil, domain.NewValidationError("bulk_base_qty", "debe ser menor que "+maxBulkBaseQty.String())
	}
	save := uc.cfg.PersistDefault
	if in.Save != nil {
		save = *in.Save
	}
	if save && actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if save && !actor.CanSave() {
		return nil, domain.ErrForbidden
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	product, skus, err := uc.loadProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkPackBudget(*product, skus, in.BulkBaseQty); err != nil {
		return nil, err
	}
	facts, err := uc.facts.LoadFacts(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar hechos: %w", err)
	}
	uc.log.Debug().
		Str("product_id", product.ID).
		Int("skus", len(skus)).
		Int("stock_rows", len(facts.Stock)).
		Int("forecast_rows", len(facts.Forecast)).
		Msg("hechos cargados")

	emergency := make([]entity.EmergencyDeduction, 0, len(in.Emergency))
	for _, l := range in.Emergency {
		emergency = append(emergency, entity.EmergencyDeduction{SKUID: l.SKUID, QtyPacks: l.QtyPacks})
	}

	res, err := engine.Plan(engine.Input{
		Product:        *product,
		SKUs:           skus,
		Facts:          *facts,
		BulkBaseQty:    in.BulkBaseQty,
		AllowOvershoot: in.AllowOvershoot,
		Emergency:      emergency,
	})
	if err != nil {
		return nil, err
	}

	out := toFillPlanResponse(product.ID, in.AllowOvershoot, res, skus)
	if !save {
		return out, nil
	}

	run := toRun(product.ID, in.AllowOvershoot, res)
	run.ID = uuid.New().String()
	run.CreatedBy = actor.UserID
	run.CreatedAt = uc.now().UTC()
	if err := uc.tx.RunFillPlan(ctx, func(runs repository.FillPlanRepository) error {
		return runs.Create(ctx, run)
	}); err != nil {
		return nil, fmt.Errorf("guardar corrida: %w", err)
	}

	out.RunID = run.ID
	out.Saved = true
	out.CreatedBy = run.CreatedBy
	out.CreatedAt = &run.CreatedAt
	return out, nil
}

// SKUMetrics tabla de métricas por SKU del producto (stock por bodega, pronóstico y MOS por región).
func (uc *UseCase) SKUMetrics(ctx context.Context, productID string) (*dto.ProductMetricsResponse, error) {
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	product, skus, err := uc.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	facts, err := uc.facts.LoadFacts(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar hechos: %w", err)
	}
	m := engine.ResolveMetrics(*product, skus, *facts)
	return toProductMetricsResponse(m, facts.LastStockAt), nil
}

// GetRun obtiene una corrida persistida con sus líneas.
func (uc *UseCase) GetRun(ctx context.Context, id string) (*dto.FillPlanResponse, error) {
	run, err := uc.runs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, domain.ErrNotFound
	}
	return runToResponse(run), nil
}

// ListRuns lista las corridas guardadas de un producto (sin líneas), más recientes primero.
func (uc *UseCase) ListRuns(ctx context.Context, productID string, page dto.PageRequest) (*dto.FillPlanRunListResponse, error) {
	page.DefaultPage()
	if err := validation.Struct(page); err != nil {
		return nil, err
	}
	runs, err := uc.runs.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.FillPlanResponse, 0, len(runs))
	for _, r := range runs {
		items = append(items, *runToResponse(r))
	}
	return &dto.FillPlanRunListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func (uc *UseCase) loadProduct(ctx context.Context, productID string) (*entity.Product, []entity.SKU, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar producto: %w", err)
	}
	if product == nil {
		return nil, nil, domain.ErrNotFound
	}
	if product.Status != entity.ProductStatusActive {
		return nil, nil, domain.NewValidationError("product_id", "el producto no está activo")
	}
	skus, err := uc.skus.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar SKUs: %w", err)
	}
	return product, skus, nil
}

// checkPackBudget acota el trabajo del motor: el granel no puede exceder MaxPacks empaques
// del SKU activo más pequeño.
func (uc *UseCase) checkPackBudget(product entity.Product, skus []entity.SKU, bulk decimal.Decimal) error {
	if uc.cfg.MaxPacks <= 0 {
		return nil
	}
	var smallest decimal.Decimal
	for _, s := range skus {
		if !s.IsActive {
			continue
		}
		bpp := s.BasePerPack(product)
		if bpp.IsPositive() && (smallest.IsZero() || bpp.LessThan(smallest)) {
			smallest = bpp
		}
	}
	if smallest.IsZero() {
		return nil
	}
	if bulk.Div(smallest).GreaterThan(decimal.NewFromInt(uc.cfg.MaxPacks)) {
		return domain.NewValidationError("bulk_base_qty",
			fmt.Sprintf("equivale a más de %d empaques de %s", uc.cfg.MaxPacks, smallest.String()))
	}
	return nil
}

func (uc *UseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.cfg.RunTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.cfg.RunTimeout)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBulk):
		return "insufficient_bulk"
	case errors.Is(err, domain.ErrUnknownSKU):
		return "unknown_sku"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal"
	}
}

func usedRatio(out *dto.FillPlanResponse) float64 {
	if !out.BulkAfterDeduction.IsPositive() {
		return 0
	}
	return out.UsedBaseQty.Div(out.BulkAfterDeduction).InexactFloat64()
}
