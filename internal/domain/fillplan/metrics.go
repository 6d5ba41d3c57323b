package fillplan

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fillplan-api/internal/domain/entity"
)

// RegionMetric stock, pronóstico y MOS de un SKU en una región.
// Las cantidades *Base están en unidades base; *Units en unidades de SKU.
type RegionMetric struct {
	StockUnits    decimal.Decimal
	ForecastUnits decimal.Decimal // promedio de filas consolidadas
	HasForecast   bool            // hubo al menos una fila consolidada
	StockBase     float64
	ForecastBase  float64
	MOS           float64
	HasMOS        bool // false si el pronóstico es cero o no existe
}

// SKUMetrics métricas canónicas de un SKU.
type SKUMetrics struct {
	SKU           entity.SKU
	BasePerPack   decimal.Decimal
	BasePerPackF  float64
	Regions       [numRegions]RegionMetric
	DepotStock    [numDepots]decimal.Decimal // unidades de SKU por bodega (visualización)
	DepotForecast [numDepots]decimal.Decimal // promedio de filas por bodega (visualización)
	HasDepotFcst  [numDepots]bool
}

// Region devuelve la métrica para el código de región, o false si no es una región de planificación.
func (m SKUMetrics) Region(code string) (RegionMetric, bool) {
	idx := regionIndex(code)
	if idx < 0 {
		return RegionMetric{}, false
	}
	return m.Regions[idx], true
}

// Metrics salida del resolvedor para un producto. SKUs conserva el orden de entrada.
type Metrics struct {
	Product entity.Product
	SKUs    []SKUMetrics
}

type meanAcc struct {
	sum   decimal.Decimal
	count int64
}

func (a *meanAcc) add(v decimal.Decimal) {
	a.sum = a.sum.Add(v)
	a.count++
}

func (a meanAcc) mean() (decimal.Decimal, bool) {
	if a.count == 0 {
		return decimal.Zero, false
	}
	return a.sum.Div(decimal.NewFromInt(a.count)), true
}

// ResolveMetrics normaliza las filas de stock y pronóstico en cantidades canónicas por SKU y región.
//
// Stock: suma de las bodegas mapeadas a cada región (IK = HO_IK + KKD, OK = HO_OK).
// Pronóstico: promedio de las filas consolidadas por región (sin bodega). Las filas por bodega se
// promedian aparte solo para visualización y nunca entran al promedio regional.
// Función pura: filas ausentes equivalen a cero y filas de SKUs ajenos al producto se ignoran.
func ResolveMetrics(product entity.Product, skus []entity.SKU, facts entity.FactSnapshot) *Metrics {
	out := &Metrics{Product: product, SKUs: make([]SKUMetrics, len(skus))}
	pos := make(map[string]int, len(skus))
	for i, s := range skus {
		bpp := s.BasePerPack(product)
		out.SKUs[i] = SKUMetrics{SKU: s, BasePerPack: bpp, BasePerPackF: bpp.InexactFloat64()}
		pos[s.ID] = i
	}

	regionStock := make([][numRegions]decimal.Decimal, len(skus))
	regionFcst := make([][numRegions]meanAcc, len(skus))
	depotFcst := make([][numDepots]meanAcc, len(skus))

	for _, f := range facts.Stock {
		i, ok := pos[f.SKUID]
		if !ok {
			continue
		}
		d := depotIndex(f.DepotCode)
		if d < 0 {
			continue
		}
		out.SKUs[i].DepotStock[d] = out.SKUs[i].DepotStock[d].Add(f.StockUnits)
		r := depotRegion[Depots[d]]
		regionStock[i][r] = regionStock[i][r].Add(f.StockUnits)
	}

	for _, f := range facts.Forecast {
		i, ok := pos[f.SKUID]
		if !ok {
			continue
		}
		if !f.IsRegionRollup() {
			if d := depotIndex(f.DepotCode); d >= 0 {
				depotFcst[i][d].add(f.MonthlyDemand)
			}
			continue
		}
		if r := regionIndex(f.RegionCode); r >= 0 {
			regionFcst[i][r].add(f.MonthlyDemand)
			continue
		}
		// Fila consolidada con código de bodega como región (ej. KKD): solo informativa.
		if d := depotIndex(f.RegionCode); d >= 0 {
			depotFcst[i][d].add(f.MonthlyDemand)
		}
	}

	for i := range out.SKUs {
		m := &out.SKUs[i]
		for r := 0; r < numRegions; r++ {
			rm := RegionMetric{StockUnits: regionStock[i][r]}
			rm.ForecastUnits, rm.HasForecast = regionFcst[i][r].mean()
			rm.StockBase = rm.StockUnits.Mul(m.BasePerPack).InexactFloat64()
			rm.ForecastBase = rm.ForecastUnits.Mul(m.BasePerPack).InexactFloat64()
			if rm.ForecastBase < Epsilon {
				rm.ForecastBase = 0
			} else {
				rm.MOS = rm.StockBase / rm.ForecastBase
				rm.HasMOS = true
			}
			m.Regions[r] = rm
		}
		for d := 0; d < numDepots; d++ {
			m.DepotForecast[d], m.HasDepotFcst[d] = depotFcst[i][d].mean()
		}
	}
	return out
}
