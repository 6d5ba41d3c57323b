package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmergencyLineRequest pedido urgente en empaques de un SKU.
type EmergencyLineRequest struct {
	SKUID    string `json:"sku_id" validate:"required"`
	QtyPacks int64  `json:"qty_packs" validate:"gte=0"`
}

// FillPlanRequest entrada para calcular un plan de llenado.
type FillPlanRequest struct {
	ProductID      string                 `json:"product_id" validate:"required,max=64"`
	BulkBaseQty    decimal.Decimal        `json:"bulk_base_qty" validate:"gt=0"`
	AllowOvershoot bool                   `json:"allow_overshoot"`
	Emergency      []EmergencyLineRequest `json:"emergency" validate:"omitempty,dive"`
	Save           *bool                  `json:"save,omitempty"` // nil = valor por defecto de configuración
}

// PlanLineResponse empaques de un SKU para una región.
type PlanLineResponse struct {
	RegionCode  string          `json:"region_code"`
	SKUID       string          `json:"sku_id"`
	SKULabel    string          `json:"sku_label,omitempty"`
	UnitsToFill int64           `json:"units_to_fill"`
	UsedBaseQty decimal.Decimal `json:"used_base_qty"`
	MOS         float64         `json:"mos"`
}

// RegionSummaryResponse MOS de una región antes y después del plan (nil si no hay pronóstico).
type RegionSummaryResponse struct {
	RegionCode   string          `json:"region_code"`
	StockBase    float64         `json:"stock_base"`
	ForecastBase float64         `json:"forecast_base"`
	MOSBefore    *float64        `json:"mos_before"`
	MOSAfter     *float64        `json:"mos_after"`
	PacksPlaced  int64           `json:"packs_placed"`
	UsedBaseQty  decimal.Decimal `json:"used_base_qty"`
}

// EmergencyLineResponse línea urgente descontada del granel.
type EmergencyLineResponse struct {
	SKUID    string          `json:"sku_id"`
	QtyPacks int64           `json:"qty_packs"`
	BaseQty  decimal.Decimal `json:"base_qty"`
}

// PlanGridColumn columna de la grilla región × SKU.
type PlanGridColumn struct {
	SKUID string `json:"sku_id"`
	Label string `json:"label"`
}

// PlanGridRow fila por región: empaques por SKU y MOS.
type PlanGridRow struct {
	RegionCode string           `json:"region_code"`
	Units      map[string]int64 `json:"units"`
	MOS        float64          `json:"mos"`
}

// PlanGrid vista pivote del plan: columnas por tamaño de empaque, filas por región.
type PlanGrid struct {
	Columns []PlanGridColumn `json:"columns"`
	Rows    []PlanGridRow    `json:"rows"`
}

// FillPlanResponse plan calculado (o corrida persistida) con la contabilidad del granel.
type FillPlanResponse struct {
	RunID              string                  `json:"run_id,omitempty"`
	ProductID          string                  `json:"product_id"`
	Outcome            string                  `json:"outcome"`
	Message            string                  `json:"message,omitempty"`
	AllowOvershoot     bool                    `json:"allow_overshoot"`
	TargetMOS          float64                 `json:"target_mos"`
	BulkBaseQty        decimal.Decimal         `json:"bulk_base_qty"`
	EmergencyBaseQty   decimal.Decimal         `json:"emergency_base_qty"`
	BulkAfterDeduction decimal.Decimal         `json:"bulk_after_deduction"`
	UsedBaseQty        decimal.Decimal         `json:"used_base_qty"`
	UnusedBaseQty      decimal.Decimal         `json:"unused_base_qty"`
	TrimmedPacks       int                     `json:"trimmed_packs"`
	Lines              []PlanLineResponse      `json:"lines"`
	Grid               *PlanGrid               `json:"grid,omitempty"`
	Regions            []RegionSummaryResponse `json:"regions,omitempty"`
	Emergency          []EmergencyLineResponse `json:"emergency,omitempty"`
	Saved              bool                    `json:"saved"`
	CreatedBy          string                  `json:"created_by,omitempty"`
	CreatedAt          *time.Time              `json:"created_at,omitempty"`
}

// FillPlanRunListResponse cabeceras de corridas persistidas.
type FillPlanRunListResponse struct {
	Items []FillPlanResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ShortfallLineResponse granel requerido por una línea urgente.
type ShortfallLineResponse struct {
	SKUID    string          `json:"sku_id"`
	QtyPacks int64           `json:"qty_packs"`
	Needed   decimal.Decimal `json:"needed"`
}

// InsufficientBulkResponse cuerpo 409 cuando los urgentes exceden el granel.
type InsufficientBulkResponse struct {
	Code      string                  `json:"code"`
	Message   string                  `json:"message"`
	Needed    decimal.Decimal         `json:"needed"`
	Available decimal.Decimal         `json:"available"`
	Shortfall decimal.Decimal         `json:"shortfall"`
	Lines     []ShortfallLineResponse `json:"lines"`
}

// RegionMetricResponse stock y pronóstico de un SKU en una región.
type RegionMetricResponse struct {
	RegionCode    string           `json:"region_code"`
	StockUnits    decimal.Decimal  `json:"stock_units"`
	ForecastUnits *decimal.Decimal `json:"forecast_units"` // nil = sin filas de pronóstico
	StockBase     float64          `json:"stock_base"`
	ForecastBase  float64          `json:"forecast_base"`
	MOS           *float64         `json:"mos"`
}

// SKUMetricsResponse fila de la tabla de métricas por SKU.
type SKUMetricsResponse struct {
	SKUID           string                      `json:"sku_id"`
	Label           string                      `json:"label"`
	PackSize        decimal.Decimal             `json:"pack_size"`
	BasePerPack     decimal.Decimal             `json:"base_per_pack"`
	StockByDepot    map[string]decimal.Decimal  `json:"stock_by_depot"`
	ForecastByDepot map[string]*decimal.Decimal `json:"forecast_by_depot,omitempty"`
	Regions         []RegionMetricResponse      `json:"regions"`
}

// ProductMetricsResponse tabla de métricas del producto.
type ProductMetricsResponse struct {
	Product         ProductResponse      `json:"product"`
	SKUs            []SKUMetricsResponse `json:"skus"`
	LastStockUpdate *time.Time           `json:"last_stock_update"`
}
