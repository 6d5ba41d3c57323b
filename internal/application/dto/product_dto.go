package dto

import "github.com/shopspring/decimal"

// ProductResponse producto planificable.
type ProductResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	UOMBase          string          `json:"uom_base"`
	ConversionToBase decimal.Decimal `json:"conversion_to_base"`
	Status           string          `json:"status"`
}

// ProductListResponse lista de productos activos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
}

// ResolveProductRequest búsqueda exacta por nombre (sin distinguir mayúsculas).
type ResolveProductRequest struct {
	Name string `query:"name" json:"name" validate:"required,max=200"`
}

// SKUResponse presentación de un producto.
type SKUResponse struct {
	ID          string          `json:"id"`
	PackSize    decimal.Decimal `json:"pack_size"`
	UOM         string          `json:"uom"`
	Label       string          `json:"label"`
	BasePerPack decimal.Decimal `json:"base_per_pack"`
}

// SKUListResponse SKUs activos ordenados por tamaño de empaque.
type SKUListResponse struct {
	Product ProductResponse `json:"product"`
	Items   []SKUResponse   `json:"items"`
}
