package fillplan

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/fillplan-api/internal/domain"
	"github.com/jhoicas/fillplan-api/internal/domain/entity"
)

var decimalEpsilon = decimal.New(1, -9)

// DeductedLine línea urgente ya convertida a unidades base.
type DeductedLine struct {
	SKUID    string
	QtyPacks int64
	BaseQty  decimal.Decimal
}

// Deduction resultado de descontar los urgentes del granel.
type Deduction struct {
	Lines     []DeductedLine
	Total     decimal.Decimal
	Remaining decimal.Decimal
}

// NothingLeft indica que los urgentes consumieron todo el granel.
func (d Deduction) NothingLeft() bool {
	return !d.Remaining.IsPositive()
}

// DeductEmergency descuenta del granel los pedidos urgentes (empaques × base por empaque).
// La verificación es atómica: si el total supera el granel (con tolerancia 1e-9) devuelve
// *domain.InsufficientBulkError y no descuenta nada. Las líneas con cero empaques se omiten.
func DeductEmergency(
	productID string,
	bulk decimal.Decimal,
	lines []entity.EmergencyDeduction,
	basePerPack map[string]decimal.Decimal,
) (Deduction, error) {
	out := Deduction{Total: decimal.Zero, Remaining: bulk}
	for _, l := range lines {
		if l.QtyPacks < 0 {
			return Deduction{}, domain.NewValidationError("emergency."+l.SKUID, "la cantidad no puede ser negativa")
		}
		if l.QtyPacks == 0 {
			continue
		}
		bpp, ok := basePerPack[l.SKUID]
		if !ok {
			return Deduction{}, &domain.UnknownSKUError{SKUID: l.SKUID, ProductID: productID}
		}
		needed := decimal.NewFromInt(l.QtyPacks).Mul(bpp)
		out.Lines = append(out.Lines, DeductedLine{SKUID: l.SKUID, QtyPacks: l.QtyPacks, BaseQty: needed})
		out.Total = out.Total.Add(needed)
	}

	if out.Total.GreaterThan(bulk.Add(decimalEpsilon)) {
		shortfall := make([]domain.ShortfallLine, 0, len(out.Lines))
		for _, l := range out.Lines {
			shortfall = append(shortfall, domain.ShortfallLine{SKUID: l.SKUID, QtyPacks: l.QtyPacks, Needed: l.BaseQty})
		}
		return Deduction{}, &domain.InsufficientBulkError{Needed: out.Total, Available: bulk, Lines: shortfall}
	}

	out.Remaining = bulk.Sub(out.Total)
	if out.Remaining.IsNegative() {
		// dentro de la tolerancia
		out.Remaining = decimal.Zero
	}
	return out, nil
}
