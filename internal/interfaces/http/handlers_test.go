package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
	"github.com/jhoicas/fillplan-api/internal/application/usecase"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	"github.com/jhoicas/fillplan-api/internal/domain/repository"
	apphttp "github.com/jhoicas/fillplan-api/internal/interfaces/http"
	"github.com/jhoicas/fillplan-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	product *entity.Product
	skus    []entity.SKU
	facts   *entity.FactSnapshot
	runs    []*entity.FillPlanRun
}

func (m *memStore) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if m.product.ID == id {
		return m.product, nil
	}
	return nil, nil
}

func (m *memStore) ListActive(_ context.Context) ([]*entity.Product, error) {
	return []*entity.Product{m.product}, nil
}

func (m *memStore) ListByProduct(_ context.Context, _ string) ([]entity.SKU, error) {
	return m.skus, nil
}

func (m *memStore) LoadFacts(_ context.Context, _ string) (*entity.FactSnapshot, error) {
	return m.facts, nil
}

type memRuns struct{ store *memStore }

func (r memRuns) Create(_ context.Context, run *entity.FillPlanRun) error {
	r.store.runs = append(r.store.runs, run)
	return nil
}

func (r memRuns) GetByID(_ context.Context, id string) (*entity.FillPlanRun, error) {
	for _, run := range r.store.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, nil
}

func (r memRuns) ListByProduct(_ context.Context, productID string, _, _ int) ([]*entity.FillPlanRun, error) {
	var out []*entity.FillPlanRun
	for _, run := range r.store.runs {
		if run.ProductID == productID {
			out = append(out, run)
		}
	}
	return out, nil
}

type memTx struct{ runs memRuns }

func (t memTx) RunFillPlan(_ context.Context, fn func(runs repository.FillPlanRepository) error) error {
	return fn(t.runs)
}

func newAPI(t *testing.T) (*fiber.App, *memStore) {
	t.Helper()
	store := &memStore{
		product: &entity.Product{ID: "P1", Name: "Turmeric Powder", ConversionToBase: decimal.NewFromInt(1), UOMBase: "kg", Status: entity.ProductStatusActive},
		skus:    []entity.SKU{{ID: "S1", ProductID: "P1", PackSize: decimal.NewFromInt(10), UOM: "kg", IsActive: true}},
		facts: &entity.FactSnapshot{
			Stock: []entity.StockFact{
				{SKUID: "S1", RegionCode: "IK", DepotCode: "HO_IK", StockUnits: decimal.NewFromInt(10)},
				{SKUID: "S1", RegionCode: "OK", DepotCode: "HO_OK", StockUnits: decimal.NewFromInt(20)},
			},
			Forecast: []entity.ForecastFact{
				{SKUID: "S1", RegionCode: "IK", MonthlyDemand: decimal.NewFromInt(5)},
				{SKUID: "S1", RegionCode: "OK", MonthlyDemand: decimal.NewFromInt(5)},
			},
		},
	}
	runs := memRuns{store: store}
	reg := prometheus.NewRegistry()

	fillPlanUC := fillplan.NewUseCase(fillplan.Deps{
		Products: store,
		SKUs:     store,
		Facts:    store,
		Runs:     runs,
		Tx:       memTx{runs: runs},
		Metrics:  fillplan.NewMetrics(reg),
	}, fillplan.Config{})

	app := fiber.New()
	app.Use(apphttp.AccessLog(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:  usecase.NewProductUseCase(store, store),
		FillPlanUC: fillPlanUC,
		JWTSecret:  testJWTSecret,
		Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path, role string, body map[string]any) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func jsonBody(t *testing.T, body map[string]any) io.Reader {
	t.Helper()
	if body == nil {
		return nil
	}
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func planBody(bulk string) map[string]any {
	return map[string]any{"product_id": "P1", "bulk_base_qty": bulk}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestFillPlan_Calcular(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodPost, "/api/fill-plans", "viewer", planBody("100"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.FillPlanResponse
	decode(t, resp, &out)
	assert.Equal(t, entity.OutcomePlanned, out.Outcome)
	assert.InDelta(t, 4.0, out.TargetMOS, 1e-9)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, int64(10), out.Lines[0].UnitsToFill)
	assert.False(t, out.Saved)
}

func TestFillPlan_GuardarYConsultar(t *testing.T) {
	app, store := newAPI(t)
	body := planBody("100")
	body["save"] = true

	resp := call(t, app, http.MethodPost, "/api/fill-plans", "planner", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.FillPlanResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.RunID)
	require.Len(t, store.runs, 1)

	resp = call(t, app, http.MethodGet, "/api/fill-plans/"+out.RunID, "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dto.FillPlanResponse
	decode(t, resp, &got)
	assert.Equal(t, out.RunID, got.RunID)
	assert.True(t, got.Saved)

	resp = call(t, app, http.MethodGet, "/api/products/P1/fill-plans?limit=5", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.FillPlanRunListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 5, list.Page.Limit)
}

func TestFillPlan_ViewerNoGuarda(t *testing.T) {
	app, _ := newAPI(t)
	body := planBody("100")
	body["save"] = true

	resp := call(t, app, http.MethodPost, "/api/fill-plans", "viewer", body)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFillPlan_Errores(t *testing.T) {
	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"granel cero", planBody("0"), http.StatusBadRequest, "VALIDATION"},
		{"granel fuera de rango", planBody("1000000000000"), http.StatusBadRequest, "VALIDATION"},
		{"producto inexistente", map[string]any{"product_id": "X", "bulk_base_qty": "10"}, http.StatusNotFound, "NOT_FOUND"},
		{"sku desconocido", map[string]any{
			"product_id": "P1", "bulk_base_qty": "100",
			"emergency": []map[string]any{{"sku_id": "S9", "qty_packs": 1}},
		}, http.StatusBadRequest, "UNKNOWN_SKU"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newAPI(t)
			resp := call(t, app, http.MethodPost, "/api/fill-plans", "planner", tc.body)
			require.Equal(t, tc.status, resp.StatusCode)
			var e dto.ErrorResponse
			decode(t, resp, &e)
			assert.Equal(t, tc.code, e.Code)
		})
	}
}

func TestFillPlan_GranelInsuficiente_409(t *testing.T) {
	app, _ := newAPI(t)
	body := planBody("100")
	body["emergency"] = []map[string]any{{"sku_id": "S1", "qty_packs": 11}}

	resp := call(t, app, http.MethodPost, "/api/fill-plans", "planner", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var out dto.InsufficientBulkResponse
	decode(t, resp, &out)
	assert.Equal(t, "INSUFFICIENT_BULK", out.Code)
	assert.Equal(t, fillplan.MsgInsufficientBulk, out.Message)
	assert.True(t, out.Shortfall.Equal(decimal.NewFromInt(10)))
	require.Len(t, out.Lines, 1)
}

func TestProducts_ResolverSKUsYMetricas(t *testing.T) {
	app, _ := newAPI(t)

	resp := call(t, app, http.MethodGet, "/api/products/resolve?name=turmeric%20powder", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	assert.Equal(t, "P1", p.ID)

	resp = call(t, app, http.MethodGet, "/api/products/P1/skus", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var skus dto.SKUListResponse
	decode(t, resp, &skus)
	require.Len(t, skus.Items, 1)

	resp = call(t, app, http.MethodGet, "/api/products/P1/metrics", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var m dto.ProductMetricsResponse
	decode(t, resp, &m)
	require.Len(t, m.SKUs, 1)
	require.Len(t, m.SKUs[0].Regions, 2)

	resp = call(t, app, http.MethodGet, "/api/products/NOPE/skus", "viewer", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	app, _ := newAPI(t)
	resp := call(t, app, http.MethodGet, "/api/products", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := newAPI(t)
	call(t, app, http.MethodPost, "/api/fill-plans", "viewer", planBody("100")).Body.Close()

	resp := call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(b), `fillplan_runs_total{outcome="PLANNED"} 1`))
}
