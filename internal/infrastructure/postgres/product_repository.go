package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	"github.com/jhoicas/fillplan-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.SKURepository     = (*SKURepo)(nil)
)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de lectura de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, item, conversion_to_base, COALESCE(uom_base, ''), status`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.ConversionToBase, &p.UOMBase, &p.Status); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID obtiene un producto por ID (cualquier estado).
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListActive lista los productos activos ordenados por nombre.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE status = $1 ORDER BY item`
	rows, err := r.q.Query(ctx, query, entity.ProductStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SKURepo implementación del puerto SKURepository sobre la tabla product_skus.
type SKURepo struct {
	q Querier
}

// NewSKURepository construye el adaptador de SKUs. Pasar pool o tx (Querier).
func NewSKURepository(q Querier) *SKURepo {
	return &SKURepo{q: q}
}

// ListByProduct lista los SKUs activos del producto por tamaño de empaque.
func (r *SKURepo) ListByProduct(ctx context.Context, productID string) ([]entity.SKU, error) {
	query, args, err := psql.
		Select("id", "product_id", "pack_size", "COALESCE(uom, '')", "is_active").
		From("product_skus").
		Where("product_id = ? AND is_active", productID).
		OrderBy("pack_size", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sku query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	defer rows.Close()
	var list []entity.SKU
	for rows.Next() {
		var s entity.SKU
		if err := rows.Scan(&s.ID, &s.ProductID, &s.PackSize, &s.UOM, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan sku: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
