package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockFact existencia de un SKU en una bodega (unidades de SKU).
type StockFact struct {
	SKUID      string
	RegionCode string
	DepotCode  string
	StockUnits decimal.Decimal
}

// ForecastFact demanda mensual promedio de un SKU (unidades de SKU).
// DepotCode vacío = fila consolidada por región (autoritativa para MOS);
// con DepotCode es solo informativa.
type ForecastFact struct {
	SKUID         string
	RegionCode    string
	DepotCode     string
	MonthlyDemand decimal.Decimal
}

// IsRegionRollup indica si la fila es consolidada por región.
func (f ForecastFact) IsRegionRollup() bool {
	return f.DepotCode == ""
}

// FactSnapshot conjunto de hechos de stock y pronóstico para un producto.
type FactSnapshot struct {
	Stock       []StockFact
	Forecast    []ForecastFact
	LastStockAt *time.Time // fecha del último snapshot de stock, si existe
}
