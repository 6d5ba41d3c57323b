package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fillplan-api/internal/domain"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	"github.com/jhoicas/fillplan-api/internal/domain/repository"
)

var _ repository.FillPlanRepository = (*FillPlanRepo)(nil)

// FillPlanRepo persiste corridas en fill_plan_runs + fill_plan_lines (usable con pool o tx).
// Create debe ejecutarse dentro de una tx (ver TxRunner.RunFillPlan) para que cabecera y líneas sean atómicas.
type FillPlanRepo struct {
	q Querier
}

// NewFillPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFillPlanRepository(q Querier) *FillPlanRepo {
	return &FillPlanRepo{q: q}
}

const runColumns = `id, product_id, bulk_base_qty, emergency_base_qty, bulk_after_deduction, allow_overshoot,
	target_mos, used_base_qty, unused_base_qty, trimmed_packs, outcome, COALESCE(created_by, ''), created_at`

// Create inserta la cabecera y todas las líneas de la corrida. Asigna ID si viene vacío.
func (r *FillPlanRepo) Create(ctx context.Context, run *entity.FillPlanRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	query := `
		INSERT INTO fill_plan_runs (id, product_id, bulk_base_qty, emergency_base_qty, bulk_after_deduction, allow_overshoot,
			target_mos, used_base_qty, unused_base_qty, trimmed_packs, outcome, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		run.ID, run.ProductID, run.BulkBaseQty, run.EmergencyBaseQty, run.BulkAfterDeduction, run.AllowOvershoot,
		run.TargetMOS, run.UsedBaseQty, run.UnusedBaseQty, run.TrimmedPacks, run.Outcome, nullIfEmpty(run.CreatedBy), run.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert fill plan run: %w", err)
	}

	if len(run.Lines) == 0 {
		return nil
	}
	ins := psql.Insert("fill_plan_lines").
		Columns("run_id", "line_no", "region_code", "sku_id", "units_to_fill", "used_base_qty", "mos")
	for i, l := range run.Lines {
		ins = ins.Values(run.ID, i+1, l.RegionCode, l.SKUID, l.UnitsToFill, l.UsedBaseQty, l.MOS)
	}
	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build fill plan lines insert: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert fill plan lines: %w", err)
	}
	return nil
}

// GetByID obtiene la corrida con sus líneas en el orden original.
func (r *FillPlanRepo) GetByID(ctx context.Context, id string) (*entity.FillPlanRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + runColumns + ` FROM fill_plan_runs WHERE id = $1`
	run, err := scanRun(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fill plan run: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT region_code, sku_id, units_to_fill, used_base_qty, mos
		FROM fill_plan_lines WHERE run_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list fill plan lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PlanLine
		if err := rows.Scan(&l.RegionCode, &l.SKUID, &l.UnitsToFill, &l.UsedBaseQty, &l.MOS); err != nil {
			return nil, fmt.Errorf("scan fill plan line: %w", err)
		}
		run.Lines = append(run.Lines, l)
	}
	return run, rows.Err()
}

// ListByProduct lista cabeceras (sin líneas) de un producto, más recientes primero.
func (r *FillPlanRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.FillPlanRun, error) {
	query := `SELECT ` + runColumns + ` FROM fill_plan_runs WHERE product_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list fill plan runs: %w", err)
	}
	defer rows.Close()
	var list []*entity.FillPlanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fill plan run: %w", err)
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

func scanRun(row pgx.Row) (*entity.FillPlanRun, error) {
	var run entity.FillPlanRun
	err := row.Scan(
		&run.ID, &run.ProductID, &run.BulkBaseQty, &run.EmergencyBaseQty, &run.BulkAfterDeduction, &run.AllowOvershoot,
		&run.TargetMOS, &run.UsedBaseQty, &run.UnusedBaseQty, &run.TrimmedPacks, &run.Outcome, &run.CreatedBy, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
