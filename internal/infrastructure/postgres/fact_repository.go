package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	"github.com/jhoicas/fillplan-api/internal/domain/fillplan"
	"github.com/jhoicas/fillplan-api/internal/domain/repository"
)

var _ repository.FactRepository = (*FactRepo)(nil)

// factRegionCodes códigos de v_fill_inputs que alimentan el planificador. KKD aparece como
// region_code en la vista aunque sea una bodega.
var factRegionCodes = []string{fillplan.RegionPrimary, fillplan.DepotOverflow, fillplan.RegionSecondary}

// FactRepo lee stock y pronóstico desde la vista v_fill_inputs y la fecha del último snapshot.
type FactRepo struct {
	q Querier
}

// NewFactRepository construye el adaptador de hechos. Pasar pool o tx (Querier).
func NewFactRepository(q Querier) *FactRepo {
	return &FactRepo{q: q}
}

// LoadFacts cada fila de la vista aporta, si trae bodega, un StockFact por bodega y, si trae
// pronóstico, un ForecastFact consolidado por su region_code.
func (r *FactRepo) LoadFacts(ctx context.Context, productID string) (*entity.FactSnapshot, error) {
	query, args, err := psql.
		Select("sku_id", "region_code", "COALESCE(godown_code, '')", "stock_units", "forecast_units_pm").
		From("v_fill_inputs").
		Where(sq.Eq{"product_id": productID, "region_code": factRegionCodes}).
		OrderBy("sku_id", "region_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build facts query: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}
	defer rows.Close()

	snap := &entity.FactSnapshot{}
	skuIDs := map[string]struct{}{}
	for rows.Next() {
		var (
			skuID, region, godown string
			stockUnits, forecast  decimal.NullDecimal
		)
		if err := rows.Scan(&skuID, &region, &godown, &stockUnits, &forecast); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		skuIDs[skuID] = struct{}{}
		region = fillplan.NormalizeCode(region)
		godown = fillplan.NormalizeCode(godown)
		if godown != "" {
			units := decimal.Zero
			if stockUnits.Valid {
				units = stockUnits.Decimal
			}
			snap.Stock = append(snap.Stock, entity.StockFact{
				SKUID: skuID, RegionCode: region, DepotCode: godown, StockUnits: units,
			})
		}
		if forecast.Valid {
			snap.Forecast = append(snap.Forecast, entity.ForecastFact{
				SKUID: skuID, RegionCode: region, MonthlyDemand: forecast.Decimal,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load facts: %w", err)
	}

	if len(skuIDs) > 0 {
		ids := make([]string, 0, len(skuIDs))
		for id := range skuIDs {
			ids = append(ids, id)
		}
		last, err := r.lastStockDate(ctx, ids)
		if err != nil {
			return nil, err
		}
		snap.LastStockAt = last
	}
	return snap, nil
}

func (r *FactRepo) lastStockDate(ctx context.Context, skuIDs []string) (*time.Time, error) {
	query, args, err := psql.
		Select("as_of_date").
		From("sku_stock_snapshot").
		Where(sq.Eq{"sku_id": skuIDs}).
		OrderBy("as_of_date DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build snapshot query: %w", err)
	}
	var at time.Time
	if err := r.q.QueryRow(ctx, query, args...).Scan(&at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last stock snapshot: %w", err)
	}
	return &at, nil
}
