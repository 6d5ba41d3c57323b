package repository

import (
	"context"

	"github.com/jhoicas/fillplan-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura de productos planificables (DIP).
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// ListActive lista los productos con estado Active ordenados por nombre.
	ListActive(ctx context.Context) ([]*entity.Product, error)
}

// SKURepository define el puerto de lectura de presentaciones de un producto.
type SKURepository interface {
	// ListByProduct lista los SKUs activos del producto ordenados por tamaño de empaque.
	ListByProduct(ctx context.Context, productID string) ([]entity.SKU, error)
}
