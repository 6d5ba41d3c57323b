package fillplan

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	engine "github.com/jhoicas/fillplan-api/internal/domain/fillplan"
)

func outcomeMessage(outcome string) string {
	switch outcome {
	case entity.OutcomeNothingLeft:
		return MsgNothingLeft
	case entity.OutcomeNothingToFill:
		return MsgNothingToFill
	}
	return ""
}

func toFillPlanResponse(productID string, overshoot bool, res *engine.Result, skus []entity.SKU) *dto.FillPlanResponse {
	labels := make(map[string]string, len(skus))
	for _, s := range skus {
		labels[s.ID] = s.Label()
	}

	out := &dto.FillPlanResponse{
		ProductID:          productID,
		Outcome:            res.Outcome,
		Message:            outcomeMessage(res.Outcome),
		AllowOvershoot:     overshoot,
		TargetMOS:          res.TargetMOS,
		BulkBaseQty:        res.BulkBaseQty,
		EmergencyBaseQty:   res.EmergencyBaseQty,
		BulkAfterDeduction: res.BulkAfterDeduction,
		UsedBaseQty:        res.UsedBaseQty,
		UnusedBaseQty:      res.UnusedBaseQty,
		TrimmedPacks:       res.TrimmedPacks,
		Lines:              make([]dto.PlanLineResponse, 0, len(res.Lines)),
	}
	for _, l := range res.Lines {
		out.Lines = append(out.Lines, dto.PlanLineResponse{
			RegionCode:  l.RegionCode,
			SKUID:       l.SKUID,
			SKULabel:    labels[l.SKUID],
			UnitsToFill: l.UnitsToFill,
			UsedBaseQty: l.UsedBaseQty,
			MOS:         l.MOS,
		})
	}
	for _, r := range res.Regions {
		rs := dto.RegionSummaryResponse{
			RegionCode:   r.RegionCode,
			StockBase:    r.StockBase,
			ForecastBase: r.ForecastBase,
			PacksPlaced:  r.PacksPlaced,
			UsedBaseQty:  r.UsedBaseQty,
		}
		if r.HasMOS {
			before, after := r.MOSBefore, r.MOSAfter
			rs.MOSBefore, rs.MOSAfter = &before, &after
		}
		out.Regions = append(out.Regions, rs)
	}
	for _, e := range res.Emergency {
		out.Emergency = append(out.Emergency, dto.EmergencyLineResponse{SKUID: e.SKUID, QtyPacks: e.QtyPacks, BaseQty: e.BaseQty})
	}
	if len(res.Lines) > 0 {
		out.Grid = buildGrid(res, skus, labels)
	}
	return out
}

// buildGrid pivote región × SKU. Las columnas son los SKUs con empaques, por tamaño de empaque;
// la columna MOS de cada fila es el MOS alcanzado por la región.
func buildGrid(res *engine.Result, skus []entity.SKU, labels map[string]string) *dto.PlanGrid {
	used := map[string]bool{}
	rows := map[string]*dto.PlanGridRow{}
	var order []string
	for _, l := range res.Lines {
		used[l.SKUID] = true
		row, ok := rows[l.RegionCode]
		if !ok {
			row = &dto.PlanGridRow{RegionCode: l.RegionCode, Units: map[string]int64{}, MOS: l.MOS}
			rows[l.RegionCode] = row
			order = append(order, l.RegionCode)
		}
		row.Units[l.SKUID] = l.UnitsToFill
	}
	for _, r := range res.Regions {
		if row, ok := rows[r.RegionCode]; ok && r.HasMOS {
			row.MOS = r.MOSAfter
		}
	}

	grid := &dto.PlanGrid{}
	for _, s := range skus {
		if used[s.ID] {
			grid.Columns = append(grid.Columns, dto.PlanGridColumn{SKUID: s.ID, Label: labels[s.ID]})
		}
	}
	for _, code := range order {
		grid.Rows = append(grid.Rows, *rows[code])
	}
	return grid
}

func toRun(productID string, overshoot bool, res *engine.Result) *entity.FillPlanRun {
	return &entity.FillPlanRun{
		ProductID:          productID,
		BulkBaseQty:        res.BulkBaseQty,
		EmergencyBaseQty:   res.EmergencyBaseQty,
		BulkAfterDeduction: res.BulkAfterDeduction,
		AllowOvershoot:     overshoot,
		TargetMOS:          res.TargetMOS,
		UsedBaseQty:        res.UsedBaseQty,
		UnusedBaseQty:      res.UnusedBaseQty,
		TrimmedPacks:       res.TrimmedPacks,
		Outcome:            res.Outcome,
		Lines:              res.Lines,
	}
}

func runToResponse(run *entity.FillPlanRun) *dto.FillPlanResponse {
	createdAt := run.CreatedAt
	out := &dto.FillPlanResponse{
		RunID:              run.ID,
		ProductID:          run.ProductID,
		Outcome:            run.Outcome,
		Message:            outcomeMessage(run.Outcome),
		AllowOvershoot:     run.AllowOvershoot,
		TargetMOS:          run.TargetMOS,
		BulkBaseQty:        run.BulkBaseQty,
		EmergencyBaseQty:   run.EmergencyBaseQty,
		BulkAfterDeduction: run.BulkAfterDeduction,
		UsedBaseQty:        run.UsedBaseQty,
		UnusedBaseQty:      run.UnusedBaseQty,
		TrimmedPacks:       run.TrimmedPacks,
		Lines:              make([]dto.PlanLineResponse, 0, len(run.Lines)),
		Saved:              true,
		CreatedBy:          run.CreatedBy,
		CreatedAt:          &createdAt,
	}
	for _, l := range run.Lines {
		out.Lines = append(out.Lines, dto.PlanLineResponse{
			RegionCode:  l.RegionCode,
			SKUID:       l.SKUID,
			UnitsToFill: l.UnitsToFill,
			UsedBaseQty: l.UsedBaseQty,
			MOS:         l.MOS,
		})
	}
	return out
}

func toProductResponse(p entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		UOMBase:          p.UOMBase,
		ConversionToBase: p.ConversionToBase,
		Status:           p.Status,
	}
}

func toProductMetricsResponse(m *engine.Metrics, lastStock *time.Time) *dto.ProductMetricsResponse {
	out := &dto.ProductMetricsResponse{
		Product:         toProductResponse(m.Product),
		SKUs:            make([]dto.SKUMetricsResponse, 0, len(m.SKUs)),
		LastStockUpdate: lastStock,
	}
	for _, s := range m.SKUs {
		row := dto.SKUMetricsResponse{
			SKUID:           s.SKU.ID,
			Label:           s.SKU.Label(),
			PackSize:        s.SKU.PackSize,
			BasePerPack:     s.BasePerPack,
			StockByDepot:    make(map[string]decimal.Decimal, len(engine.Depots)),
			ForecastByDepot: map[string]*decimal.Decimal{},
			Regions:         make([]dto.RegionMetricResponse, 0, len(engine.Regions)),
		}
		for d, code := range engine.Depots {
			row.StockByDepot[code] = s.DepotStock[d]
			if s.HasDepotFcst[d] {
				v := s.DepotForecast[d].Round(2)
				row.ForecastByDepot[code] = &v
			}
		}
		for r, code := range engine.Regions {
			rm := s.Regions[r]
			resp := dto.RegionMetricResponse{
				RegionCode:   code,
				StockUnits:   rm.StockUnits,
				StockBase:    rm.StockBase,
				ForecastBase: rm.ForecastBase,
			}
			if rm.HasForecast {
				v := rm.ForecastUnits.Round(2)
				resp.ForecastUnits = &v
			}
			if rm.HasMOS {
				mos := rm.MOS
				resp.MOS = &mos
			}
			row.Regions = append(row.Regions, resp)
		}
		out.SKUs = append(out.SKUs, row)
	}
	return out
}
