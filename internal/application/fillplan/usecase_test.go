package fillplan_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
	"github.com/jhoicas/fillplan-api/internal/domain"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	"github.com/jhoicas/fillplan-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeProducts struct {
	items map[string]*entity.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return f.items[id], nil
}

func (f *fakeProducts) ListActive(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range f.items {
		if p.Status == entity.ProductStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSKUs struct {
	byProduct map[string][]entity.SKU
}

func (f *fakeSKUs) ListByProduct(_ context.Context, productID string) ([]entity.SKU, error) {
	return f.byProduct[productID], nil
}

type fakeFacts struct {
	snap  *entity.FactSnapshot
	block bool
}

func (f *fakeFacts) LoadFacts(ctx context.Context, _ string) (*entity.FactSnapshot, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.snap, nil
}

type fakeRuns struct {
	created []*entity.FillPlanRun
}

func (f *fakeRuns) Create(_ context.Context, run *entity.FillPlanRun) error {
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRuns) GetByID(_ context.Context, id string) (*entity.FillPlanRun, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRuns) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.FillPlanRun, error) {
	var out []*entity.FillPlanRun
	for _, r := range f.created {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeTx struct {
	runs  *fakeRuns
	calls int
}

func (f *fakeTx) RunFillPlan(_ context.Context, fn func(runs repository.FillPlanRepository) error) error {
	f.calls++
	return fn(f.runs)
}

type fixture struct {
	uc    *fillplan.UseCase
	facts *fakeFacts
	runs  *fakeRuns
	tx    *fakeTx
	reg   *prometheus.Registry
}

func newFixture(t *testing.T, cfg fillplan.Config) *fixture {
	t.Helper()
	one := decimal.NewFromInt(1)
	products := &fakeProducts{items: map[string]*entity.Product{
		"P1": {ID: "P1", Name: "Cúrcuma", ConversionToBase: one, UOMBase: "kg", Status: entity.ProductStatusActive},
		"P2": {ID: "P2", Name: "Ají", ConversionToBase: one, UOMBase: "kg", Status: "Inactive"},
	}}
	skus := &fakeSKUs{byProduct: map[string][]entity.SKU{
		"P1": {{ID: "S1", ProductID: "P1", PackSize: decimal.NewFromInt(10), UOM: "kg", IsActive: true}},
	}}
	lastStock := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	facts := &fakeFacts{snap: &entity.FactSnapshot{
		Stock: []entity.StockFact{
			{SKUID: "S1", RegionCode: "IK", DepotCode: "HO_IK", StockUnits: decimal.NewFromInt(6)},
			{SKUID: "S1", RegionCode: "IK", DepotCode: "KKD", StockUnits: decimal.NewFromInt(4)},
			{SKUID: "S1", RegionCode: "OK", DepotCode: "HO_OK", StockUnits: decimal.NewFromInt(20)},
		},
		Forecast: []entity.ForecastFact{
			{SKUID: "S1", RegionCode: "IK", MonthlyDemand: decimal.NewFromInt(5)},
			{SKUID: "S1", RegionCode: "OK", MonthlyDemand: decimal.NewFromInt(5)},
		},
		LastStockAt: &lastStock,
	}}
	runs := &fakeRuns{}
	tx := &fakeTx{runs: runs}
	reg := prometheus.NewRegistry()

	uc := fillplan.NewUseCase(fillplan.Deps{
		Products: products,
		SKUs:     skus,
		Facts:    facts,
		Runs:     runs,
		Tx:       tx,
		Metrics:  fillplan.NewMetrics(reg),
	}, cfg)
	return &fixture{uc: uc, facts: facts, runs: runs, tx: tx, reg: reg}
}

func request(bulk int64) dto.FillPlanRequest {
	return dto.FillPlanRequest{ProductID: "P1", BulkBaseQty: decimal.NewFromInt(bulk)}
}

func boolPtr(b bool) *bool { return &b }

var planner = fillplan.Actor{UserID: "u-1", Role: fillplan.RolePlanner}

// ──────────────────────────────────────────────────────────────────────────────
// Calculate
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculate_PlanSinGuardar(t *testing.T) {
	f := newFixture(t, fillplan.Config{RunTimeout: time.Second})

	out, err := f.uc.Calculate(context.Background(), planner, request(100))
	require.NoError(t, err)

	assert.Equal(t, entity.OutcomePlanned, out.Outcome)
	assert.False(t, out.Saved)
	assert.Empty(t, out.RunID)
	assert.Zero(t, f.tx.calls, "sin save no se abre transacción")

	require.Len(t, out.Lines, 1)
	assert.Equal(t, "IK", out.Lines[0].RegionCode)
	assert.Equal(t, int64(10), out.Lines[0].UnitsToFill)
	assert.Equal(t, "10 kg", out.Lines[0].SKULabel)

	require.NotNil(t, out.Grid)
	require.Len(t, out.Grid.Columns, 1)
	require.Len(t, out.Grid.Rows, 1)
	assert.Equal(t, int64(10), out.Grid.Rows[0].Units["S1"])
	assert.InDelta(t, 4.0, out.Grid.Rows[0].MOS, 1e-9)

	expected := `
# HELP fillplan_runs_total Corridas del planificador completadas, por resultado.
# TYPE fillplan_runs_total counter
fillplan_runs_total{outcome="PLANNED"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "fillplan_runs_total"))
}

func TestCalculate_GuardarComoPlanner(t *testing.T) {
	f := newFixture(t, fillplan.Config{})
	req := request(100)
	req.Save = boolPtr(true)

	out, err := f.uc.Calculate(context.Background(), planner, req)
	require.NoError(t, err)

	assert.True(t, out.Saved)
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, 1, f.tx.calls)
	require.Len(t, f.runs.created, 1)

	run := f.runs.created[0]
	assert.Equal(t, out.RunID, run.ID)
	assert.Equal(t, "u-1", run.CreatedBy)
	assert.Len(t, run.Lines, 1)

	got, err := f.uc.GetRun(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.True(t, got.Saved)
	assert.Equal(t, entity.OutcomePlanned, got.Outcome)

	list, err := f.uc.ListRuns(context.Background(), "P1", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestCalculate_GuardarPorDefecto(t *testing.T) {
	f := newFixture(t, fillplan.Config{PersistDefault: true})

	out, err := f.uc.Calculate(context.Background(), fillplan.Actor{UserID: "a", Role: fillplan.RoleAdmin}, request(100))
	require.NoError(t, err)
	assert.True(t, out.Saved)

	req := request(100)
	req.Save = boolPtr(false)
	out, err = f.uc.Calculate(context.Background(), planner, req)
	require.NoError(t, err)
	assert.False(t, out.Saved, "save explícito gana sobre el valor por defecto")
}

func TestCalculate_ViewerNoPuedeGuardar(t *testing.T) {
	f := newFixture(t, fillplan.Config{})
	req := request(100)
	req.Save = boolPtr(true)

	_, err := f.uc.Calculate(context.Background(), fillplan.Actor{UserID: "v", Role: fillplan.RoleViewer}, req)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.runs.created)

	expected := `
# HELP fillplan_run_failures_total Corridas rechazadas, por motivo.
# TYPE fillplan_run_failures_total counter
fillplan_run_failures_total{reason="forbidden"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "fillplan_run_failures_total"))
}

func TestCalculate_Errores(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.FillPlanRequest)
		target error
	}{
		{"producto inexistente", func(r *dto.FillPlanRequest) { r.ProductID = "NOPE" }, domain.ErrNotFound},
		{"producto inactivo", func(r *dto.FillPlanRequest) { r.ProductID = "P2" }, domain.ErrInvalidInput},
		{"granel cero", func(r *dto.FillPlanRequest) { r.BulkBaseQty = decimal.Zero }, domain.ErrInvalidInput},
		{"sin producto", func(r *dto.FillPlanRequest) { r.ProductID = "" }, domain.ErrInvalidInput},
		{"urgente negativo", func(r *dto.FillPlanRequest) {
			r.Emergency = []dto.EmergencyLineRequest{{SKUID: "S1", QtyPacks: -2}}
		}, domain.ErrInvalidInput},
		{"SKU ajeno", func(r *dto.FillPlanRequest) {
			r.Emergency = []dto.EmergencyLineRequest{{SKUID: "S99", QtyPacks: 1}}
		}, domain.ErrUnknownSKU},
		{"urgentes exceden", func(r *dto.FillPlanRequest) {
			r.Emergency = []dto.EmergencyLineRequest{{SKUID: "S1", QtyPacks: 11}}
		}, domain.ErrInsufficientBulk},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, fillplan.Config{})
			req := request(100)
			tc.mutate(&req)

			out, err := f.uc.Calculate(context.Background(), planner, req)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestCalculate_UrgentesConsumenTodo(t *testing.T) {
	f := newFixture(t, fillplan.Config{})
	req := request(100)
	req.Emergency = []dto.EmergencyLineRequest{{SKUID: "S1", QtyPacks: 10}}

	out, err := f.uc.Calculate(context.Background(), planner, req)
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomeNothingLeft, out.Outcome)
	assert.Equal(t, fillplan.MsgNothingLeft, out.Message)
	assert.Empty(t, out.Lines)
	assert.Nil(t, out.Grid)
	require.Len(t, out.Emergency, 1)
	assert.True(t, out.Emergency[0].BaseQty.Equal(decimal.NewFromInt(100)))
}

func TestCalculate_LimiteDeLineasUrgentes(t *testing.T) {
	f := newFixture(t, fillplan.Config{MaxEmergency: 1})
	req := request(100)
	req.Emergency = []dto.EmergencyLineRequest{{SKUID: "S1", QtyPacks: 1}, {SKUID: "S1", QtyPacks: 1}}

	_, err := f.uc.Calculate(context.Background(), planner, req)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "emergency")
}

func TestCalculate_GranelFueraDeRango(t *testing.T) {
	cases := []struct {
		name string
		cfg  fillplan.Config
		bulk decimal.Decimal
	}{
		// 100 kg son 10 empaques de 10 kg.
		{"excede tope de empaques", fillplan.Config{MaxPacks: 9}, decimal.NewFromInt(100)},
		{"excede columna numérica", fillplan.Config{}, decimal.New(1, 12)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.cfg)
			req := request(0)
			req.BulkBaseQty = tc.bulk

			_, err := f.uc.Calculate(context.Background(), planner, req)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, ve.Fields, "bulk_base_qty")
			assert.Empty(t, f.runs.created)
		})
	}
}

func TestCalculate_GranelEnElTopeDeEmpaques(t *testing.T) {
	f := newFixture(t, fillplan.Config{MaxPacks: 10})

	out, err := f.uc.Calculate(context.Background(), planner, request(100))
	require.NoError(t, err)
	assert.Equal(t, entity.OutcomePlanned, out.Outcome)
}

func TestCalculate_GuardarSinUsuario(t *testing.T) {
	f := newFixture(t, fillplan.Config{})
	req := request(100)
	req.Save = boolPtr(true)

	_, err := f.uc.Calculate(context.Background(), fillplan.Actor{Role: fillplan.RolePlanner}, req)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, f.runs.created)
}

func TestCalculate_TimeoutDeCorrida(t *testing.T) {
	f := newFixture(t, fillplan.Config{RunTimeout: 20 * time.Millisecond})
	f.facts.block = true

	_, err := f.uc.Calculate(context.Background(), planner, request(100))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ──────────────────────────────────────────────────────────────────────────────
// Métricas por SKU y corridas
// ──────────────────────────────────────────────────────────────────────────────

func TestSKUMetrics_TablaPorBodegaYRegion(t *testing.T) {
	f := newFixture(t, fillplan.Config{})

	out, err := f.uc.SKUMetrics(context.Background(), "P1")
	require.NoError(t, err)

	require.Len(t, out.SKUs, 1)
	row := out.SKUs[0]
	assert.Equal(t, "10 kg", row.Label)
	assert.True(t, row.StockByDepot["HO_IK"].Equal(decimal.NewFromInt(6)))
	assert.True(t, row.StockByDepot["KKD"].Equal(decimal.NewFromInt(4)))
	assert.True(t, row.StockByDepot["HO_OK"].Equal(decimal.NewFromInt(20)))

	require.Len(t, row.Regions, 2)
	assert.Equal(t, "IK", row.Regions[0].RegionCode)
	require.NotNil(t, row.Regions[0].MOS)
	assert.InDelta(t, 2.0, *row.Regions[0].MOS, 1e-9)
	require.NotNil(t, out.LastStockUpdate)
	assert.Equal(t, 2024, out.LastStockUpdate.Year())
}

func TestGetRun_Inexistente(t *testing.T) {
	f := newFixture(t, fillplan.Config{})
	_, err := f.uc.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
