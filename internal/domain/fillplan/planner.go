// Package fillplan implementa el motor del plan de llenado: reparte un lote a granel de un
// producto en empaques enteros de sus SKUs entre las regiones, de modo que todas converjan
// al mismo MOS (meses de stock) objetivo.
//
// Flujo de una corrida:
//
//	hechos de stock/pronóstico → ResolveMetrics → DeductEmergency (urgentes)
//	  → greedy (un empaque por paso) → trim (si no se permite sobrepaso) → plan
//
// El motor es puro y síncrono: no hace I/O ni guarda estado entre corridas, por lo que
// corridas concurrentes no requieren coordinación.
package fillplan

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fillplan-api/internal/domain"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
)

// Input entrada de una corrida para un único producto y un único granel.
type Input struct {
	Product        entity.Product
	SKUs           []entity.SKU
	Facts          entity.FactSnapshot
	BulkBaseQty    decimal.Decimal
	AllowOvershoot bool
	Emergency      []entity.EmergencyDeduction
}

// RegionSummary MOS de una región antes y después del plan.
type RegionSummary struct {
	RegionCode   string
	StockBase    float64
	ForecastBase float64
	MOSBefore    float64
	MOSAfter     float64
	HasMOS       bool
	PacksPlaced  int64
	UsedBaseQty  decimal.Decimal
}

// Result plan calculado más la contabilidad del granel.
type Result struct {
	Outcome            string
	Lines              []entity.PlanLine
	TargetMOS          float64
	BulkBaseQty        decimal.Decimal
	EmergencyBaseQty   decimal.Decimal
	BulkAfterDeduction decimal.Decimal
	UsedBaseQty        decimal.Decimal
	UnusedBaseQty      decimal.Decimal // incluye lo devuelto por el recorte
	PacksPlaced        int64
	TrimmedPacks       int
	Emergency          []DeductedLine
	Regions            []RegionSummary
	Metrics            *Metrics
}

// Plan ejecuta la corrida completa. Errores posibles: *domain.ValidationError (granel no positivo,
// producto inválido), *domain.UnknownSKUError y *domain.InsufficientBulkError.
// Un plan vacío (urgentes consumen todo o nada que llenar) no es error: ver Result.Outcome.
func Plan(in Input) (*Result, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	skus := plannableSKUs(in.Product, in.SKUs)
	basePerPack := make(map[string]decimal.Decimal, len(skus))
	for _, s := range skus {
		if bpp := s.BasePerPack(in.Product); bpp.IsPositive() {
			basePerPack[s.ID] = bpp
		}
	}

	metrics := ResolveMetrics(in.Product, skus, in.Facts)

	ded, err := DeductEmergency(in.Product.ID, in.BulkBaseQty, in.Emergency, basePerPack)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Lines:              []entity.PlanLine{},
		BulkBaseQty:        in.BulkBaseQty,
		EmergencyBaseQty:   ded.Total,
		BulkAfterDeduction: ded.Remaining,
		UsedBaseQty:        decimal.Zero,
		UnusedBaseQty:      ded.Remaining,
		Emergency:          ded.Lines,
		Metrics:            metrics,
	}

	alloc := newAllocation(metrics, ded.Remaining.InexactFloat64())
	res.TargetMOS = alloc.target

	if ded.NothingLeft() {
		res.Outcome = entity.OutcomeNothingLeft
		res.Regions = summarize(alloc, metrics)
		return res, nil
	}

	alloc.greedy()
	if in.AllowOvershoot {
		alloc.spill()
	} else {
		res.TrimmedPacks = alloc.trim()
	}

	res.Lines = buildLines(alloc, metrics)
	for _, l := range res.Lines {
		res.UsedBaseQty = res.UsedBaseQty.Add(l.UsedBaseQty)
		res.PacksPlaced += l.UnitsToFill
	}
	res.UnusedBaseQty = ded.Remaining.Sub(res.UsedBaseQty)
	res.Regions = summarize(alloc, metrics)

	res.Outcome = entity.OutcomePlanned
	if len(res.Lines) == 0 {
		res.Outcome = entity.OutcomeNothingToFill
	}
	return res, nil
}

func validateInput(in Input) error {
	fields := map[string]string{}
	if in.Product.ID == "" {
		fields["product_id"] = "es requerido"
	}
	if !in.Product.ConversionToBase.IsPositive() {
		fields["conversion_to_base"] = "debe ser mayor que cero"
	}
	if !in.BulkBaseQty.IsPositive() {
		fields["bulk_base_qty"] = "debe ser mayor que cero"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// plannableSKUs SKUs activos del producto ordenados por tamaño de empaque.
func plannableSKUs(p entity.Product, skus []entity.SKU) []entity.SKU {
	out := make([]entity.SKU, 0, len(skus))
	for _, s := range skus {
		if !s.IsActive || (s.ProductID != "" && s.ProductID != p.ID) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PackSize.LessThan(out[j].PackSize)
	})
	return out
}

// buildLines líneas con empaques > 0, por región (IK, OK) y luego por tamaño de empaque.
// UsedBaseQty se recalcula como empaques × base por empaque, nunca acumulado.
func buildLines(a *allocation, m *Metrics) []entity.PlanLine {
	lines := []entity.PlanLine{}
	for r := 0; r < numRegions; r++ {
		for i := range a.cands {
			c := &a.cands[i]
			if c.region != r || c.units == 0 {
				continue
			}
			s := m.SKUs[c.sku]
			lines = append(lines, entity.PlanLine{
				RegionCode:  Regions[r],
				SKUID:       s.SKU.ID,
				UnitsToFill: c.units,
				UsedBaseQty: decimal.NewFromInt(c.units).Mul(s.BasePerPack),
				MOS:         a.target,
			})
		}
	}
	return lines
}

func summarize(a *allocation, m *Metrics) []RegionSummary {
	out := make([]RegionSummary, numRegions)
	var before [numRegions]float64
	for i := range a.cands {
		c := &a.cands[i]
		before[c.region] += c.baseStock
		out[c.region].PacksPlaced += c.units
		used := decimal.NewFromInt(c.units).Mul(m.SKUs[c.sku].BasePerPack)
		out[c.region].UsedBaseQty = out[c.region].UsedBaseQty.Add(used)
	}
	for r := 0; r < numRegions; r++ {
		out[r].RegionCode = Regions[r]
		out[r].StockBase = before[r]
		out[r].ForecastBase = a.regionForecast[r]
		if after, ok := a.regionMOS(r); ok {
			out[r].HasMOS = true
			out[r].MOSAfter = after
			out[r].MOSBefore = before[r] / a.regionForecast[r]
		}
	}
	return out
}
