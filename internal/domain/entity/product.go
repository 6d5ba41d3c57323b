package entity

import (
	"github.com/shopspring/decimal"
)

// ProductStatusActive estado de los productos que pueden planificarse.
const ProductStatusActive = "Active"

// Product representa el producto fabricado a granel (un lote por corrida de planificación).
// ConversionToBase convierte unidades de SKU a la unidad base (ej. kg).
type Product struct {
	ID               string
	Name             string
	ConversionToBase decimal.Decimal
	UOMBase          string
	Status           string
}

// SKU representa una presentación (tamaño de empaque) de un producto.
type SKU struct {
	ID        string
	ProductID string
	PackSize  decimal.Decimal // cantidad por empaque en unidades del producto
	UOM       string
	IsActive  bool
}

// BasePerPack devuelve pack_size × conversion_to_base: unidades base por empaque.
func (s SKU) BasePerPack(p Product) decimal.Decimal {
	return s.PackSize.Mul(p.ConversionToBase)
}

// Label etiqueta legible del empaque, ej. "500 g".
func (s SKU) Label() string {
	return s.PackSize.String() + " " + s.UOM
}
