package usecase

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/fillplan-api/internal/application/dto"
	"github.com/jhoicas/fillplan-api/internal/application/validation"
	"github.com/jhoicas/fillplan-api/internal/domain"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
	"github.com/jhoicas/fillplan-api/internal/domain/repository"
)

// ProductUseCase consultas de productos planificables y sus presentaciones.
type ProductUseCase struct {
	products repository.ProductRepository
	skus     repository.SKURepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(products repository.ProductRepository, skus repository.SKURepository) *ProductUseCase {
	return &ProductUseCase{products: products, skus: skus}
}

// List devuelve los productos activos ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context) (*dto.ProductListResponse, error) {
	list, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{Items: make([]dto.ProductResponse, 0, len(list))}
	for _, p := range list {
		out.Items = append(out.Items, toProductResponse(p))
	}
	return out, nil
}

// Resolve busca un producto activo por nombre exacto, sin distinguir mayúsculas ni espacios en los extremos.
func (uc *ProductUseCase) Resolve(ctx context.Context, in dto.ResolveProductRequest) (*dto.ProductResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	list, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	// cases.Caser tiene estado: uno por llamada.
	fold := cases.Fold()
	want := fold.String(in.Name)
	for _, p := range list {
		if fold.String(strings.TrimSpace(p.Name)) == want {
			resp := toProductResponse(p)
			return &resp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListSKUs devuelve los SKUs activos del producto ordenados por tamaño de empaque.
func (uc *ProductUseCase) ListSKUs(ctx context.Context, productID string) (*dto.SKUListResponse, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	skus, err := uc.skus.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.SKUListResponse{
		Product: toProductResponse(product),
		Items:   make([]dto.SKUResponse, 0, len(skus)),
	}
	for _, s := range skus {
		if !s.IsActive {
			continue
		}
		out.Items = append(out.Items, dto.SKUResponse{
			ID:          s.ID,
			PackSize:    s.PackSize,
			UOM:         s.UOM,
			Label:       s.Label(),
			BasePerPack: s.BasePerPack(*product),
		})
	}
	return out, nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		UOMBase:          p.UOMBase,
		ConversionToBase: p.ConversionToBase,
		Status:           p.Status,
	}
}
