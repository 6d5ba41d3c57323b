package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resultados posibles de una corrida del planificador.
const (
	OutcomePlanned       = "PLANNED"         // hay al menos una línea con empaques
	OutcomeNothingLeft   = "NOTHING_LEFT"    // los urgentes consumieron todo el granel
	OutcomeNothingToFill = "NOTHING_TO_FILL" // ningún candidato mejora el MOS
)

// EmergencyDeduction pedido urgente en empaques que se atiende del mismo granel antes de planificar.
type EmergencyDeduction struct {
	SKUID    string
	QtyPacks int64
}

// PlanLine línea del plan de llenado: empaques de un SKU para una región.
type PlanLine struct {
	RegionCode  string
	SKUID       string
	UnitsToFill int64
	UsedBaseQty decimal.Decimal // UnitsToFill × base_per_pack
	MOS         float64         // MOS objetivo global de la corrida
}

// FillPlanRun cabecera persistida de una corrida.
type FillPlanRun struct {
	ID                 string
	ProductID          string
	BulkBaseQty        decimal.Decimal
	EmergencyBaseQty   decimal.Decimal
	BulkAfterDeduction decimal.Decimal
	AllowOvershoot     bool
	TargetMOS          float64
	UsedBaseQty        decimal.Decimal
	UnusedBaseQty      decimal.Decimal
	TrimmedPacks       int
	Outcome            string
	CreatedBy          string
	CreatedAt          time.Time
	Lines              []PlanLine
}
